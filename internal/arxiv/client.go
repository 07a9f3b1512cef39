// Package arxiv provides a paginated, rate-limited client for the arXiv
// Atom API.
package arxiv

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aegisml/arxiv-trends-service/internal/domain"
	"github.com/aegisml/arxiv-trends-service/internal/observability"
)

const (
	// DefaultBaseURL is the default arXiv API base URL.
	DefaultBaseURL = "https://export.arxiv.org/api"

	// DefaultRequestInterval is the default pacing delay between requests,
	// per the arXiv API usage policy.
	DefaultRequestInterval = 3 * time.Second

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultPageSize is the default number of results per page.
	DefaultPageSize = 100

	// DefaultMaxRetries is the default number of retries for one page.
	DefaultMaxRetries = 5

	// sourceName identifies the source in errors and logs.
	sourceName = "arxiv"
)

// arxivIDRegex extracts the arXiv ID from the full entry URL, dropping the
// version suffix so the identifier stays stable across revisions.
// Matches patterns like "http://arxiv.org/abs/2301.12345v1" or
// "http://arxiv.org/abs/hep-th/9901001v1".
var arxivIDRegex = regexp.MustCompile(`arxiv\.org/abs/(.+?)(?:v\d+)?$`)

// Config holds configuration for the arXiv client.
type Config struct {
	// BaseURL is the arXiv API base URL.
	BaseURL string

	// Timeout is the request timeout.
	Timeout time.Duration

	// RequestInterval is the pacing delay between paginated requests.
	RequestInterval time.Duration

	// BurstSize is the maximum burst of requests allowed.
	BurstSize int

	// PageSize is the number of results requested per page.
	PageSize int

	// MaxRetries is the maximum number of retry attempts per page.
	MaxRetries int

	// RetryDelay is the base delay between retries.
	RetryDelay time.Duration

	// UserAgent is the User-Agent header sent with every request.
	UserAgent string
}

// applyDefaults sets default values for unset configuration fields.
func (c *Config) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.RequestInterval == 0 {
		c.RequestInterval = DefaultRequestInterval
	}
	if c.BurstSize == 0 {
		c.BurstSize = 1
	}
	if c.PageSize == 0 {
		c.PageSize = DefaultPageSize
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.RetryDelay == 0 {
		c.RetryDelay = DefaultRequestInterval
	}
}

// SearchQuery describes one windowed query against the arXiv API.
type SearchQuery struct {
	// Categories are ORed together as cat: filters. At least one is required.
	Categories []string

	// From and To bound the inclusive submitted-date range (date precision;
	// the time of day is widened to cover the whole day on both ends).
	From time.Time
	To   time.Time

	// MaxResults caps the total number of entries fetched across pages.
	// Zero means one page.
	MaxResults int
}

// Client fetches raw paper records from the arXiv API. It handles query
// construction, Atom parsing, pagination, retries, and rate limiting.
type Client struct {
	config     Config
	httpClient *HTTPClient
	logger     zerolog.Logger
	metrics    *observability.Metrics
}

// New creates a new arXiv client with the given configuration. A nil metrics
// is allowed and disables instrumentation.
func New(cfg Config, logger zerolog.Logger, metrics *observability.Metrics) *Client {
	cfg.applyDefaults()

	httpClient := NewHTTPClient(HTTPClientConfig{
		Timeout:         cfg.Timeout,
		RequestInterval: cfg.RequestInterval,
		BurstSize:       cfg.BurstSize,
		MaxRetries:      cfg.MaxRetries,
		RetryDelay:      cfg.RetryDelay,
		UserAgent:       cfg.UserAgent,
	}, metrics)

	return &Client{
		config:     cfg,
		httpClient: httpClient,
		logger:     logger.With().Str("component", "arxiv_client").Logger(),
		metrics:    metrics,
	}
}

// Search fetches all records matching the query, paging through results until
// MaxResults is reached or a page comes back short. A page failure after the
// first page stops pagination and returns the records fetched so far; a
// failure on the first page is returned as an error. Context cancellation
// always aborts with the context's error.
func (c *Client) Search(ctx context.Context, q SearchQuery) ([]domain.RawRecord, error) {
	if len(q.Categories) == 0 {
		return nil, domain.NewValidationError("categories", "at least one category is required")
	}

	maxResults := q.MaxResults
	if maxResults <= 0 {
		maxResults = c.config.PageSize
	}

	searchQuery := buildSearchQuery(q)
	logger := observability.WithSourceContext(c.logger, sourceName, searchQuery)
	logger.Info().Int("max_results", maxResults).Msg("starting arXiv search")

	startTime := time.Now()
	records := make([]domain.RawRecord, 0, c.config.PageSize)
	for offset := 0; offset < maxResults; {
		pageSize := c.config.PageSize
		if remaining := maxResults - offset; remaining < pageSize {
			pageSize = remaining
		}

		feed, err := c.fetchPage(ctx, searchQuery, offset, pageSize)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if len(records) == 0 {
				return nil, err
			}
			logger.Warn().Err(err).
				Int("fetched", len(records)).
				Msg("page fetch failed, stopping pagination")
			break
		}

		for i := range feed.Entries {
			records = append(records, entryToRaw(&feed.Entries[i]))
		}
		if c.metrics != nil {
			c.metrics.RecordPageFetched(len(feed.Entries))
		}
		logger.Debug().
			Int("start", offset).
			Int("entries", len(feed.Entries)).
			Int("total_results", feed.TotalResults).
			Msg("fetched page")

		if len(feed.Entries) < pageSize {
			break
		}
		offset += len(feed.Entries)
	}

	logger.Info().
		Int("records", len(records)).
		Dur("duration", time.Since(startTime)).
		Msg("arXiv search complete")
	return records, nil
}

// fetchPage retrieves a single page of search results.
func (c *Client) fetchPage(ctx context.Context, searchQuery string, start, pageSize int) (*Feed, error) {
	pageURL, err := c.buildPageURL(searchQuery, start, pageSize)
	if err != nil {
		return nil, fmt.Errorf("building page URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return nil, domain.NewSourceError(sourceName, resp.StatusCode, string(body), nil)
	}

	// Parse the Atom XML response (limit body to 10MB).
	var feed Feed
	if err := xml.NewDecoder(io.LimitReader(resp.Body, 10<<20)).Decode(&feed); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return &feed, nil
}

// buildPageURL constructs the arXiv search API URL for one page.
func (c *Client) buildPageURL(searchQuery string, start, pageSize int) (string, error) {
	baseURL, err := url.Parse(c.config.BaseURL)
	if err != nil {
		return "", fmt.Errorf("parsing base URL: %w", err)
	}

	baseURL.Path = strings.TrimRight(baseURL.Path, "/") + "/query"

	query := url.Values{}
	query.Set("search_query", searchQuery)
	query.Set("start", strconv.Itoa(start))
	query.Set("max_results", strconv.Itoa(pageSize))

	// Sort by submission date (newest first)
	query.Set("sortBy", "submittedDate")
	query.Set("sortOrder", "descending")

	baseURL.RawQuery = query.Encode()
	return baseURL.String(), nil
}

// buildSearchQuery constructs the arXiv query expression: category filters
// ORed together, ANDed with an inclusive submitted-date range covering whole
// days on both ends.
func buildSearchQuery(q SearchQuery) string {
	filters := make([]string, 0, len(q.Categories))
	for _, cat := range q.Categories {
		filters = append(filters, "cat:"+cat)
	}

	return fmt.Sprintf("(%s) AND submittedDate:[%s000000 TO %s235959]",
		strings.Join(filters, " OR "),
		q.From.Format("20060102"),
		q.To.Format("20060102"))
}

// entryToRaw converts an arXiv Atom entry to a raw record. Field cleanup is
// left to the normalizer; only structural extraction happens here.
func entryToRaw(entry *Entry) domain.RawRecord {
	raw := domain.RawRecord{
		ID:       extractArXivID(entry.ID),
		Title:    entry.Title,
		Abstract: entry.Summary,
	}

	if t, err := time.Parse(time.RFC3339, entry.Published); err == nil {
		raw.Published = t
	}
	if t, err := time.Parse(time.RFC3339, entry.Updated); err == nil {
		raw.Updated = t
	}

	authors := make([]string, 0, len(entry.Authors))
	for _, a := range entry.Authors {
		if name := strings.TrimSpace(a.Name); name != "" {
			authors = append(authors, name)
		}
	}
	raw.Authors = authors

	categories := make([]string, 0, len(entry.Categories))
	for _, cat := range entry.Categories {
		if cat.Term != "" {
			categories = append(categories, cat.Term)
		}
	}
	raw.Categories = categories
	raw.PrimaryCategory = entry.PrimaryCategory.Term

	return raw
}

// extractArXivID extracts the arXiv ID from the full entry URL.
// Input: "http://arxiv.org/abs/2301.12345v1" -> "2301.12345"
func extractArXivID(entryURL string) string {
	if matches := arxivIDRegex.FindStringSubmatch(entryURL); len(matches) >= 2 {
		return matches[1]
	}
	// Not an arxiv.org/abs URL; fall back to the trailing path segment and
	// let the normalizer decide whether it is usable.
	if i := strings.LastIndexByte(entryURL, '/'); i >= 0 {
		return strings.TrimSpace(entryURL[i+1:])
	}
	return strings.TrimSpace(entryURL)
}
