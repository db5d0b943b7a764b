// Package news fetches recent articles per topic from a news search service.
// It defines a common Searcher interface with NewsAPI and Google News RSS
// backends, and a Fetcher that applies the per-topic partial-failure policy.
package news

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Article is a single search hit. It is read-only once fetched.
type Article struct {
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Content     string    `json:"content,omitempty"`
	URL         string    `json:"url,omitempty"`
	Source      string    `json:"source,omitempty"`
	Author      string    `json:"author,omitempty"`
	Topic       string    `json:"topic,omitempty"` // query that produced the article
	PublishedAt time.Time `json:"published_at"`
}

// Query describes one search request.
type Query struct {
	Term     string
	From     time.Time // inclusive lower bound; zero means unbounded
	Language string // e.g. "en"
	SortBy   string // e.g. "publishedAt"
	PageSize int
}

// Searcher is implemented by every news backend.
type Searcher interface {
	// Name returns the human-readable backend name.
	Name() string

	// Search runs one query and returns articles in the service's order.
	Search(ctx context.Context, q Query) ([]Article, error)
}

// --- Sentinel errors ---

var (
	// ErrUnauthorized is returned when the service rejects the API key.
	ErrUnauthorized = errors.New("news: unauthorized")

	// ErrRateLimited is returned when the service reports an exhausted quota.
	ErrRateLimited = errors.New("news: rate limited")

	// ErrBadResponse is returned when a response cannot be decoded.
	ErrBadResponse = errors.New("news: malformed response")

	// ErrNoAPIKey is returned by constructors that need a key.
	ErrNoAPIKey = errors.New("news: API key not configured")
)

// HTTPError wraps a non-2xx response.
type HTTPError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d %s: %s", e.StatusCode, e.Status, e.Body)
}

// Unwrap maps well-known status codes onto the sentinel errors.
func (e *HTTPError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusTooManyRequests:
		return ErrRateLimited
	default:
		return nil
	}
}

// --- Shared HTTP helpers ---

// UserAgent is sent with every request.
const UserAgent = "newsbrief/1.0 (+https://github.com/seenimoa/newsbrief)"

// doGet performs a GET request and returns the open body for 2xx responses.
// The caller closes the returned ReadCloser.
func doGet(ctx context.Context, client *http.Client, url string, headers map[string]string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", UserAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP GET: %w", err)
	}

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &HTTPError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(body),
		}
	}

	return resp.Body, nil
}
