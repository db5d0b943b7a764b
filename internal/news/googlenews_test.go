package news

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func rssItem(title, desc string, published time.Time) string {
	return fmt.Sprintf(`<item>
  <title>%s</title>
  <link>https://news.example.com/%d</link>
  <pubDate>%s</pubDate>
  <description><![CDATA[%s]]></description>
</item>`, title, published.Unix(), published.Format(time.RFC1123Z), desc)
}

func serveRSS(t *testing.T, items ...string) (*httptest.Server, *[]string) {
	t.Helper()
	var queries []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rss/search" {
			http.NotFound(w, r)
			return
		}
		queries = append(queries, r.URL.Query().Get("q"))
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>Search</title>%s</channel></rss>`, strings.Join(items, "\n"))
	}))
	t.Cleanup(srv.Close)
	return srv, &queries
}

func TestGoogleNews_Search(t *testing.T) {
	now := time.Now()
	srv, queries := serveRSS(t,
		rssItem("Go 1.26 released - The Go Blog", `<a href="https://go.dev">Go 1.26 released</a> <font color="#6f6f6f">The Go Blog</font>`, now.Add(-1*time.Hour)),
		rssItem("Old news - Archive", "old", now.Add(-96*time.Hour)),
		rssItem("Rust 2.0 rumours - Example Times", "rust", now.Add(-2*time.Hour)),
		rssItem("Zig hits 1.0 - Example Post", "zig", now.Add(-3*time.Hour)),
	)

	g := NewGoogleNews(WithGoogleNewsBaseURL(srv.URL), WithGoogleNewsHTTPClient(srv.Client()))
	articles, err := g.Search(context.Background(), Query{
		Term:     "programming",
		From:     now.Add(-24 * time.Hour),
		PageSize: 5,
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if len(*queries) != 1 || (*queries)[0] != "programming when:1d" {
		t.Fatalf("queries = %v", *queries)
	}
	if len(articles) != 3 {
		t.Fatalf("got %d articles, want 3 (old item dropped)", len(articles))
	}

	first := articles[0]
	if first.Title != "Go 1.26 released" || first.Source != "The Go Blog" {
		t.Errorf("title/source = %q/%q", first.Title, first.Source)
	}
	if strings.Contains(first.Description, "<a") || !strings.Contains(first.Description, "Go 1.26 released") {
		t.Errorf("description not cleaned: %q", first.Description)
	}
	if first.Topic != "programming" {
		t.Errorf("topic = %q", first.Topic)
	}
	if articles[1].Title != "Rust 2.0 rumours" || articles[2].Title != "Zig hits 1.0" {
		t.Errorf("order not preserved: %q, %q", articles[1].Title, articles[2].Title)
	}
}

func TestGoogleNews_PageSize(t *testing.T) {
	now := time.Now()
	srv, _ := serveRSS(t,
		rssItem("A - S", "a", now.Add(-1*time.Hour)),
		rssItem("B - S", "b", now.Add(-2*time.Hour)),
		rssItem("C - S", "c", now.Add(-3*time.Hour)),
	)

	g := NewGoogleNews(WithGoogleNewsBaseURL(srv.URL), WithGoogleNewsWindow(3))
	articles, err := g.Search(context.Background(), Query{Term: "go", PageSize: 2})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(articles) != 2 || articles[0].Title != "A" || articles[1].Title != "B" {
		t.Fatalf("unexpected articles: %+v", articles)
	}
	if !strings.Contains(g.searchURL(Query{Term: "go"}), "when%3A3d") {
		t.Errorf("window not applied: %s", g.searchURL(Query{Term: "go"}))
	}
}

func TestGoogleNews_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	g := NewGoogleNews(WithGoogleNewsBaseURL(srv.URL))
	_, err := g.Search(context.Background(), Query{Term: "go"})
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestSplitTitle(t *testing.T) {
	tests := []struct {
		in, title, source string
	}{
		{"Go 1.26 released - The Go Blog", "Go 1.26 released", "The Go Blog"},
		{"Left - right - Daily", "Left - right", "Daily"},
		{"No publisher", "No publisher", ""},
		{" - Leading", " - Leading", ""},
	}
	for _, tt := range tests {
		title, source := splitTitle(tt.in)
		if title != tt.title || source != tt.source {
			t.Errorf("splitTitle(%q) = %q, %q; want %q, %q", tt.in, title, source, tt.title, tt.source)
		}
	}
}

func TestCleanHTML(t *testing.T) {
	if got := cleanHTML(""); got != "" {
		t.Errorf("cleanHTML(\"\") = %q", got)
	}
	if got := cleanHTML("<p>Hello <b>world</b></p>"); got != "Hello world" {
		t.Errorf("cleanHTML = %q", got)
	}
}

func TestGoogleNews_FromKeepsZone(t *testing.T) {
	jst := time.FixedZone("JST", 9*3600)
	now := time.Date(2026, 10, 18, 1, 0, 0, 0, jst)
	srv, _ := serveRSS(t,
		rssItem("Yesterday in Tokyo - Example", "kept", time.Date(2026, 10, 17, 3, 0, 0, 0, jst)),
		rssItem("Two days ago - Example", "dropped", time.Date(2026, 10, 16, 23, 0, 0, 0, jst)),
	)

	f := NewFetcher(NewGoogleNews(WithGoogleNewsBaseURL(srv.URL)),
		WithClock(func() time.Time { return now }),
		WithLogger(slog.New(slog.DiscardHandler)),
	)
	res := f.Fetch(context.Background(), []string{"technology"}, 5)

	if len(res.Failed()) != 0 {
		t.Fatalf("unexpected failures: %+v", res.Failed())
	}
	if len(res.Articles) != 1 || res.Articles[0].Title != "Yesterday in Tokyo" {
		t.Fatalf("articles = %+v", res.Articles)
	}
}
