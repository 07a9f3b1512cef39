package artifact

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/aegisml/arxiv-trends-service/internal/domain"
	"github.com/aegisml/arxiv-trends-service/internal/observability"
)

// Store reads and writes the JSON documents in one artifact directory.
// Writes go through a temp file and rename, so an interrupted run
// leaves the previous document intact rather than a truncated one.
type Store struct {
	dir     string
	logger  zerolog.Logger
	metrics *observability.Metrics
}

// NewStore creates a store rooted at dir. The directory itself is
// created on first write. metrics may be nil.
func NewStore(dir string, logger zerolog.Logger, metrics *observability.Metrics) *Store {
	return &Store{
		dir:     dir,
		logger:  logger.With().Str("component", "artifact_store").Logger(),
		metrics: metrics,
	}
}

// Dir returns the artifact directory.
func (s *Store) Dir() string { return s.dir }

// Path returns the full path of a named document.
func (s *Store) Path(name string) string { return filepath.Join(s.dir, name) }

// List returns the names of the JSON documents currently in the
// artifact directory, sorted. A missing directory yields an empty list.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading artifact dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}

// LoadCounts reads counts.json. A document that does not exist yet
// comes back empty, with every section initialized.
func (s *Store) LoadCounts() (CountsDocument, error) {
	doc := NewCountsDocument()
	if err := s.read(CountsFile, &doc); err != nil {
		if errors.Is(err, domain.ErrArtifactNotFound) {
			return NewCountsDocument(), nil
		}
		return CountsDocument{}, err
	}
	return doc, nil
}

// SaveCounts writes counts.json.
func (s *Store) SaveCounts(doc CountsDocument) error {
	return s.write(CountsFile, doc)
}

// LoadRecords reads a record-list document such as papers.json. A
// document that does not exist yet comes back as an empty list.
func (s *Store) LoadRecords(name string) ([]domain.SimplifiedRecord, error) {
	var records []domain.SimplifiedRecord
	if err := s.read(name, &records); err != nil {
		if errors.Is(err, domain.ErrArtifactNotFound) {
			return []domain.SimplifiedRecord{}, nil
		}
		return nil, err
	}
	if records == nil {
		records = []domain.SimplifiedRecord{}
	}
	return records, nil
}

// SaveRecords writes a record-list document.
func (s *Store) SaveRecords(name string, records []domain.SimplifiedRecord) error {
	return s.write(name, records)
}

// SaveKeywords writes a keyword-ranking document. Rankings are always
// recomputed over the full corpus, so there is no load counterpart.
func (s *Store) SaveKeywords(name string, entries []domain.KeywordEntry) error {
	return s.write(name, entries)
}

// LoadMonthlyKeywords reads monthly_keywords.json. A document that does
// not exist yet comes back as an empty mapping.
func (s *Store) LoadMonthlyKeywords() (MonthlyKeywords, error) {
	keywords := make(MonthlyKeywords)
	if err := s.read(MonthlyKeywordsFile, &keywords); err != nil {
		if errors.Is(err, domain.ErrArtifactNotFound) {
			return make(MonthlyKeywords), nil
		}
		return nil, err
	}
	return keywords, nil
}

// SaveMonthlyKeywords writes monthly_keywords.json.
func (s *Store) SaveMonthlyKeywords(keywords MonthlyKeywords) error {
	return s.write(MonthlyKeywordsFile, keywords)
}

// LoadSafetyTrends reads safety_trends.json. A document that does not
// exist yet comes back with an empty monthly mapping.
func (s *Store) LoadSafetyTrends() (SafetyTrendsDocument, error) {
	doc := SafetyTrendsDocument{MonthlyCounts: make(map[string]int)}
	if err := s.read(SafetyTrendsFile, &doc); err != nil {
		if errors.Is(err, domain.ErrArtifactNotFound) {
			return SafetyTrendsDocument{MonthlyCounts: make(map[string]int)}, nil
		}
		return SafetyTrendsDocument{}, err
	}
	if doc.MonthlyCounts == nil {
		doc.MonthlyCounts = make(map[string]int)
	}
	return doc, nil
}

// SaveSafetyTrends writes safety_trends.json.
func (s *Store) SaveSafetyTrends(doc SafetyTrendsDocument) error {
	return s.write(SafetyTrendsFile, doc)
}

// SaveMetadata writes metadata.json.
func (s *Store) SaveMetadata(doc MetadataDocument) error {
	return s.write(MetadataFile, doc)
}

func (s *Store) read(name string, out any) error {
	data, err := os.ReadFile(s.Path(name))
	if errors.Is(err, os.ErrNotExist) {
		return domain.NewArtifactError(name, "read", domain.ErrArtifactNotFound)
	}
	if err != nil {
		return domain.NewArtifactError(name, "read", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return domain.NewArtifactError(name, "decode", err)
	}
	return nil
}

func (s *Store) write(name string, doc any) error {
	if err := s.writeFile(name, doc); err != nil {
		s.logger.Error().Err(err).Str("artifact", name).Msg("artifact write failed")
		if s.metrics != nil {
			s.metrics.RecordArtifactWriteFailed(name)
		}
		return err
	}

	if s.metrics != nil {
		s.metrics.RecordArtifactWrite(name)
	}
	s.logger.Debug().Str("artifact", name).Msg("artifact written")
	return nil
}

// writeFile marshals doc and replaces the named document atomically:
// the bytes land in a temp file in the same directory, which is synced
// and renamed over the target.
func (s *Store) writeFile(name string, doc any) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return domain.NewArtifactError(name, "write", fmt.Errorf("creating artifact dir: %w", err))
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return domain.NewArtifactError(name, "encode", err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(s.dir, "."+name+".tmp-*")
	if err != nil {
		return domain.NewArtifactError(name, "write", fmt.Errorf("creating temp file: %w", err))
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return domain.NewArtifactError(name, "write", fmt.Errorf("writing temp file: %w", err))
	}
	if err := tmp.Sync(); err != nil {
		return domain.NewArtifactError(name, "write", fmt.Errorf("syncing temp file: %w", err))
	}
	if err := tmp.Close(); err != nil {
		return domain.NewArtifactError(name, "write", fmt.Errorf("closing temp file: %w", err))
	}
	if err := os.Rename(tmpPath, s.Path(name)); err != nil {
		return domain.NewArtifactError(name, "write", fmt.Errorf("renaming temp file: %w", err))
	}
	committed = true
	return nil
}
