package news

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/seenimoa/newsbrief/pkg/utils"
)

// NewsAPIBaseURL is the public NewsAPI endpoint.
const NewsAPIBaseURL = "https://newsapi.org"

// NewsAPI searches the NewsAPI /v2/everything endpoint.
type NewsAPI struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewsAPIOption configures the NewsAPI client.
type NewsAPIOption func(*NewsAPI)

// WithNewsAPIBaseURL sets a custom base URL (e.g., for tests or proxies).
func WithNewsAPIBaseURL(u string) NewsAPIOption {
	return func(n *NewsAPI) {
		if u != "" {
			n.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithNewsAPIHTTPClient sets a custom HTTP client.
func WithNewsAPIHTTPClient(client *http.Client) NewsAPIOption {
	return func(n *NewsAPI) { n.client = client }
}

// NewNewsAPI creates a NewsAPI client.
func NewNewsAPI(apiKey string, opts ...NewsAPIOption) (*NewsAPI, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	n := &NewsAPI{
		apiKey:  apiKey,
		baseURL: NewsAPIBaseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(n)
	}
	return n, nil
}

// Name returns the backend name.
func (n *NewsAPI) Name() string { return "NewsAPI" }

// Search queries /v2/everything. Articles keep the response order.
func (n *NewsAPI) Search(ctx context.Context, q Query) ([]Article, error) {
	body, err := doGet(ctx, n.client, n.searchURL(q), map[string]string{
		"X-Api-Key": n.apiKey,
		"Accept":    "application/json",
	})
	if err != nil {
		return nil, fmt.Errorf("newsapi search %q: %w", q.Term, err)
	}
	defer body.Close()

	var raw newsAPIResponse
	if err := json.NewDecoder(body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("newsapi search %q: %w: %v", q.Term, ErrBadResponse, err)
	}
	if raw.Status != "ok" {
		return nil, fmt.Errorf("newsapi search %q: %w", q.Term, raw.err())
	}

	articles := make([]Article, 0, len(raw.Articles))
	for _, item := range raw.Articles {
		a := Article{
			Title:       item.Title,
			Description: item.Description,
			Content:     item.Content,
			URL:         item.URL,
			Source:      item.Source.Name,
			Author:      item.Author,
			Topic:       q.Term,
		}
		if ts, err := time.Parse(time.RFC3339, item.PublishedAt); err == nil {
			a.PublishedAt = ts
		}
		articles = append(articles, a)
	}
	return articles, nil
}

func (n *NewsAPI) searchURL(q Query) string {
	params := url.Values{}
	params.Set("q", q.Term)
	if !q.From.IsZero() {
		params.Set("from", utils.FormatDate(q.From))
	}
	if q.Language != "" {
		params.Set("language", q.Language)
	}
	if q.SortBy != "" {
		params.Set("sortBy", q.SortBy)
	}
	if q.PageSize > 0 {
		params.Set("pageSize", strconv.Itoa(q.PageSize))
	}
	return n.baseURL + "/v2/everything?" + params.Encode()
}

// ── Internal Types ──

type newsAPIResponse struct {
	Status       string           `json:"status"`
	Code         string           `json:"code"`
	Message      string           `json:"message"`
	TotalResults int              `json:"totalResults"`
	Articles     []newsAPIArticle `json:"articles"`
}

type newsAPIArticle struct {
	Source      newsAPISource `json:"source"`
	Author      string        `json:"author"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	URL         string        `json:"url"`
	URLToImage  string        `json:"urlToImage"`
	PublishedAt string        `json:"publishedAt"`
	Content     string        `json:"content"`
}

type newsAPISource struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// err converts an in-body error status into a Go error.
func (r *newsAPIResponse) err() error {
	switch r.Code {
	case "apiKeyDisabled", "apiKeyExhausted", "apiKeyInvalid", "apiKeyMissing":
		return fmt.Errorf("%w: %s", ErrUnauthorized, r.Message)
	case "rateLimited":
		return fmt.Errorf("%w: %s", ErrRateLimited, r.Message)
	}
	if r.Status == "" {
		return fmt.Errorf("%w: missing status", ErrBadResponse)
	}
	return fmt.Errorf("newsapi error %s: %s", r.Code, r.Message)
}
