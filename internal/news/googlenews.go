package news

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
)

// GoogleNewsBaseURL is the public Google News endpoint.
const GoogleNewsBaseURL = "https://news.google.com"

// GoogleNews searches the Google News RSS feed. It needs no API key.
type GoogleNews struct {
	baseURL string
	days    int
	client  *http.Client
	parser  *gofeed.Parser
}

// GoogleNewsOption configures the GoogleNews client.
type GoogleNewsOption func(*GoogleNews)

// WithGoogleNewsBaseURL sets a custom base URL (e.g., for tests).
func WithGoogleNewsBaseURL(u string) GoogleNewsOption {
	return func(g *GoogleNews) {
		if u != "" {
			g.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithGoogleNewsWindow sets the "when:Nd" search window in days.
func WithGoogleNewsWindow(days int) GoogleNewsOption {
	return func(g *GoogleNews) {
		if days > 0 {
			g.days = days
		}
	}
}

// WithGoogleNewsHTTPClient sets a custom HTTP client.
func WithGoogleNewsHTTPClient(client *http.Client) GoogleNewsOption {
	return func(g *GoogleNews) { g.client = client }
}

// NewGoogleNews creates a Google News RSS client.
func NewGoogleNews(opts ...GoogleNewsOption) *GoogleNews {
	g := &GoogleNews{
		baseURL: GoogleNewsBaseURL,
		days:    1,
		client:  &http.Client{Timeout: 30 * time.Second},
		parser:  gofeed.NewParser(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.parser.UserAgent = UserAgent
	g.parser.Client = g.client
	return g
}

// Name returns the backend name.
func (g *GoogleNews) Name() string { return "Google News" }

// Search fetches the RSS search feed for q.Term. Items published before
// q.From are dropped and at most q.PageSize items are kept.
func (g *GoogleNews) Search(ctx context.Context, q Query) ([]Article, error) {
	feed, err := g.parser.ParseURLWithContext(g.searchURL(q), ctx)
	if err != nil {
		var httpErr gofeed.HTTPError
		if errors.As(err, &httpErr) {
			return nil, fmt.Errorf("google news search %q: %w", q.Term, &HTTPError{
				StatusCode: httpErr.StatusCode,
				Status:     httpErr.Status,
			})
		}
		return nil, fmt.Errorf("google news search %q: %w", q.Term, err)
	}

	articles := make([]Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		if q.PageSize > 0 && len(articles) >= q.PageSize {
			break
		}
		title, source := splitTitle(item.Title)
		a := Article{
			Title:       title,
			Source:      source,
			Description: cleanHTML(item.Description),
			Content:     cleanHTML(item.Content),
			URL:         item.Link,
			Topic:       q.Term,
		}
		if item.PublishedParsed != nil {
			a.PublishedAt = *item.PublishedParsed
			if !q.From.IsZero() && a.PublishedAt.Before(q.From) {
				continue
			}
		}
		if len(item.Authors) > 0 && item.Authors[0] != nil {
			a.Author = item.Authors[0].Name
		}
		articles = append(articles, a)
	}

	return articles, nil
}

func (g *GoogleNews) searchURL(q Query) string {
	params := url.Values{}
	params.Set("q", fmt.Sprintf("%s when:%dd", q.Term, g.days))
	lang := q.Language
	if lang == "" {
		lang = "en"
	}
	params.Set("hl", lang+"-US")
	params.Set("gl", "US")
	params.Set("ceid", "US:"+lang)
	return g.baseURL + "/rss/search?" + params.Encode()
}

// --- Internal helpers ---

// splitTitle separates the " - Publisher" suffix Google News appends to
// every headline.
func splitTitle(title string) (string, string) {
	i := strings.LastIndex(title, " - ")
	if i <= 0 {
		return title, ""
	}
	return strings.TrimSpace(title[:i]), strings.TrimSpace(title[i+3:])
}

// cleanHTML strips HTML tags from a string using goquery.
func cleanHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return s
	}
	return strings.TrimSpace(doc.Text())
}
