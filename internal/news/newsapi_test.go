package news

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestNewsAPI(t *testing.T, handler http.HandlerFunc) *NewsAPI {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	n, err := NewNewsAPI("test-key", WithNewsAPIBaseURL(srv.URL+"/"), WithNewsAPIHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("NewNewsAPI: %v", err)
	}
	return n
}

func TestNewNewsAPI_NoKey(t *testing.T) {
	_, err := NewNewsAPI("")
	if !errors.Is(err, ErrNoAPIKey) {
		t.Fatalf("expected ErrNoAPIKey, got %v", err)
	}
}

func TestNewsAPI_Search(t *testing.T) {
	n := newTestNewsAPI(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/everything" {
			t.Errorf("path = %s, want /v2/everything", r.URL.Path)
		}
		if got := r.Header.Get("X-Api-Key"); got != "test-key" {
			t.Errorf("X-Api-Key = %q", got)
		}
		q := r.URL.Query()
		want := map[string]string{
			"q":        "data science",
			"from":     "2026-10-17",
			"language": "en",
			"sortBy":   "publishedAt",
			"pageSize": "5",
		}
		for k, v := range want {
			if q.Get(k) != v {
				t.Errorf("query %s = %q, want %q", k, q.Get(k), v)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"status": "ok",
			"totalResults": 2,
			"articles": [
				{"source": {"id": null, "name": "Wired"}, "author": "A. Writer", "title": "Second newest",
				 "description": "desc B", "url": "https://example.com/b", "publishedAt": "2026-10-18T09:00:00Z", "content": "content B"},
				{"source": {"id": "ars", "name": "Ars Technica"}, "title": "Third newest",
				 "description": null, "url": "https://example.com/c", "publishedAt": "2026-10-18T08:00:00Z", "content": "content C"}
			]
		}`))
	})

	articles, err := n.Search(context.Background(), Query{
		Term: "data science", From: time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC), Language: "en", SortBy: "publishedAt", PageSize: 5,
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(articles) != 2 {
		t.Fatalf("got %d articles, want 2", len(articles))
	}
	if articles[0].Title != "Second newest" || articles[1].Title != "Third newest" {
		t.Errorf("response order not preserved: %q, %q", articles[0].Title, articles[1].Title)
	}
	if articles[0].Source != "Wired" || articles[0].Author != "A. Writer" {
		t.Errorf("source/author = %q/%q", articles[0].Source, articles[0].Author)
	}
	if articles[1].Description != "" || articles[1].Content != "content C" {
		t.Errorf("null description should decode to empty, got %q", articles[1].Description)
	}
	if articles[0].Topic != "data science" {
		t.Errorf("topic = %q", articles[0].Topic)
	}
	if articles[0].PublishedAt.IsZero() {
		t.Error("expected PublishedAt to be parsed")
	}
}

func TestNewsAPI_Unauthorized(t *testing.T) {
	n := newTestNewsAPI(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"status":"error","code":"apiKeyInvalid","message":"Your API key is invalid"}`))
	})

	_, err := n.Search(context.Background(), Query{Term: "golang"})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected *HTTPError with 401, got %v", err)
	}
}

func TestNewsAPI_RateLimited(t *testing.T) {
	n := newTestNewsAPI(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := n.Search(context.Background(), Query{Term: "golang"})
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestNewsAPI_ErrorStatusInBody(t *testing.T) {
	n := newTestNewsAPI(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"status":"error","code":"parameterInvalid","message":"bad from date"}`))
	})

	_, err := n.Search(context.Background(), Query{Term: "golang"})
	if err == nil {
		t.Fatal("expected error for status=error body")
	}
	if errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrRateLimited) {
		t.Fatalf("unexpected sentinel in %v", err)
	}
}

func TestNewsAPI_MalformedJSON(t *testing.T) {
	n := newTestNewsAPI(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"status": "ok", "articles": [`))
	})

	_, err := n.Search(context.Background(), Query{Term: "golang"})
	if !errors.Is(err, ErrBadResponse) {
		t.Fatalf("expected ErrBadResponse, got %v", err)
	}
}

func TestNewsAPI_ServerError(t *testing.T) {
	n := newTestNewsAPI(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	})

	_, err := n.Search(context.Background(), Query{Term: "golang"})
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected *HTTPError, got %v", err)
	}
	if httpErr.StatusCode != http.StatusBadGateway {
		t.Errorf("status = %d", httpErr.StatusCode)
	}
}
