// Package publish replicates artifact documents into the serving
// directory consumed by the dashboard.
package publish

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// Publisher copies JSON documents from the data directory to the
// serving directory, byte for byte.
type Publisher struct {
	dataDir    string
	servingDir string
	logger     zerolog.Logger
}

// New creates a publisher between the two directories.
func New(dataDir, servingDir string, logger zerolog.Logger) *Publisher {
	return &Publisher{
		dataDir:    dataDir,
		servingDir: servingDir,
		logger:     logger.With().Str("component", "publisher").Logger(),
	}
}

// Publish copies every JSON document from the data directory into the
// serving directory, creating the serving directory if needed. One
// file's failure is logged and does not stop the others; the first
// error is returned after every file has been attempted. The returned
// names are the documents successfully copied.
func (p *Publisher) Publish() ([]string, error) {
	if err := os.MkdirAll(p.servingDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating serving dir: %w", err)
	}

	entries, err := os.ReadDir(p.dataDir)
	if err != nil {
		return nil, fmt.Errorf("reading data dir: %w", err)
	}

	var firstErr error
	copied := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".json" {
			continue
		}

		if err := copyFile(filepath.Join(p.dataDir, name), filepath.Join(p.servingDir, name)); err != nil {
			p.logger.Error().Err(err).Str("file", name).Msg("copying document failed")
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		copied = append(copied, name)
	}

	if len(copied) == 0 && firstErr == nil {
		p.logger.Warn().Str("data_dir", p.dataDir).Msg("no documents to publish")
	}
	p.logger.Info().
		Int("documents", len(copied)).
		Str("serving_dir", p.servingDir).
		Msg("publish complete")
	return copied, firstErr
}

// copyFile replicates src to dst through a temp file and rename so a
// concurrent reader never sees a partially copied document.
func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("reading %s: %w", filepath.Base(src), err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
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
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}
	committed = true
	return nil
}
