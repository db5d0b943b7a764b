package news

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/seenimoa/newsbrief/internal/config"
)

// NewSearcherFromConfig builds the backend selected by news.provider.
func NewSearcherFromConfig(cfg config.NewsConfig) (Searcher, error) {
	client := &http.Client{Timeout: cfg.Timeout}

	switch cfg.Provider {
	case config.NewsProviderNewsAPI, "":
		n, err := NewNewsAPI(cfg.APIKey,
			WithNewsAPIBaseURL(cfg.BaseURL),
			WithNewsAPIHTTPClient(client),
		)
		if err != nil {
			return nil, err
		}
		return n, nil
	case config.NewsProviderGoogleNews:
		return NewGoogleNews(
			WithGoogleNewsBaseURL(cfg.BaseURL),
			WithGoogleNewsWindow(cfg.Days),
			WithGoogleNewsHTTPClient(client),
		), nil
	default:
		return nil, fmt.Errorf("unknown news provider %q", cfg.Provider)
	}
}

// NewFetcherFromConfig builds a Fetcher with the configured backend and
// query parameters. opts are applied after the configured ones.
func NewFetcherFromConfig(cfg config.NewsConfig, log *slog.Logger, opts ...FetcherOption) (*Fetcher, error) {
	s, err := NewSearcherFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	base := []FetcherOption{
		WithLanguage(cfg.Language),
		WithSortBy(cfg.SortBy),
		WithPageSize(cfg.PageSize),
		WithLookback(cfg.Days),
		WithLogger(log),
	}
	return NewFetcher(s, append(base, opts...)...), nil
}

// Searcher returns the backend the Fetcher queries.
func (f *Fetcher) Searcher() Searcher {
	return f.searcher
}
