package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/rulesmith/internal/logging"
	"github.com/aretw0/rulesmith/pkg/domain"
	"github.com/aretw0/rulesmith/pkg/query"
	"golang.org/x/time/rate"
)

// PatternPath is the index service endpoint that executes a pattern query.
const PatternPath = "/api/execute/pattern"

// DefaultTimeout bounds a single search round trip.
const DefaultTimeout = 10 * time.Second

// Client is a ports.Searcher backed by the index service's REST API.
// It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout bounds each request. A non-positive d keeps the default.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.httpClient = &http.Client{Timeout: d}
		}
	}
}

// WithRateLimit caps outgoing requests to r per second with the given burst.
// A non-positive r disables limiting.
func WithRateLimit(r float64, burst int) ClientOption {
	return func(c *Client) {
		if r <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(r), burst)
	}
}

// WithClientLogger sets the logger used for request failures.
func WithClientLogger(l *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = l
	}
}

// NewClient creates a search client for the index service at baseURL
// (e.g. "http://localhost:9000").
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type scoreDocsResponse struct {
	TotalHits int        `json:"totalHits"`
	ScoreDocs []scoreDoc `json:"scoreDocs"`
}

type scoreDoc struct {
	OdinsonDoc    int          `json:"odinsonDoc"`
	DocumentID    string       `json:"documentId"`
	SentenceIndex int          `json:"sentenceIndex"`
	Matches       []spanResult `json:"matches"`
}

type spanResult struct {
	Span struct {
		Start int `json:"start"`
		End   int `json:"end"`
	} `json:"span"`
}

// Search sends the rendered pattern to the index and converts the score docs
// into a SearchResult. maxHits <= 0 leaves the hit count to the service.
func (c *Client) Search(ctx context.Context, pattern query.Pattern, maxHits int) (*domain.SearchResult, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	params := url.Values{}
	params.Set("odinsonQuery", pattern.String())
	if maxHits > 0 {
		params.Set("maxDocs", strconv.Itoa(maxHits))
	}
	endpoint := c.baseURL + PatternPath + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: request: %w", domain.ErrSearchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Warn("index rejected query",
			"status", resp.StatusCode,
			"pattern", pattern.String(),
			"body", strings.TrimSpace(string(body)))
		return nil, fmt.Errorf("%w: index returned status %d: %s", domain.ErrSearchFailed, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload scoreDocsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decode search response: %w", domain.ErrSearchFailed, err)
	}

	result := &domain.SearchResult{
		TotalHits: payload.TotalHits,
		Hits:      make([]domain.Hit, 0, len(payload.ScoreDocs)),
	}
	for _, sd := range payload.ScoreDocs {
		hit := domain.Hit{
			Locator: domain.Locator{
				DocID:         sd.DocumentID,
				SentenceIndex: sd.SentenceIndex,
				LuceneDoc:     sd.OdinsonDoc,
			},
			Matches: make([]domain.Match, 0, len(sd.Matches)),
		}
		for _, m := range sd.Matches {
			hit.Matches = append(hit.Matches, domain.Match{Start: m.Span.Start, End: m.Span.End})
		}
		result.Hits = append(result.Hits, hit)
	}
	return result, nil
}
