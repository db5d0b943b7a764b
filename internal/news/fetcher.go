package news

import (
	"context"
	"log/slog"

	"github.com/seenimoa/newsbrief/pkg/utils"
)

// TopicResult is the outcome of one topic search.
type TopicResult struct {
	Topic string
	Count int
	Err   error
}

// FetchResult holds the concatenated articles of every topic, in topic
// order, plus one TopicResult per requested topic.
type FetchResult struct {
	Articles []Article
	Topics   []TopicResult
}

// Failed returns the topics whose search failed.
func (r FetchResult) Failed() []TopicResult {
	var out []TopicResult
	for _, t := range r.Topics {
		if t.Err != nil {
			out = append(out, t)
		}
	}
	return out
}

// Fetcher runs one search per topic against a Searcher.
type Fetcher struct {
	searcher Searcher
	language string
	sortBy   string
	pageSize int
	days     int
	clock    utils.Clock
	log      *slog.Logger
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithLanguage sets the query language (default "en").
func WithLanguage(lang string) FetcherOption {
	return func(f *Fetcher) {
		if lang != "" {
			f.language = lang
		}
	}
}

// WithSortBy sets the sort order (default "publishedAt").
func WithSortBy(sortBy string) FetcherOption {
	return func(f *Fetcher) {
		if sortBy != "" {
			f.sortBy = sortBy
		}
	}
}

// WithPageSize sets the default number of articles requested per topic.
func WithPageSize(n int) FetcherOption {
	return func(f *Fetcher) {
		if n > 0 {
			f.pageSize = n
		}
	}
}

// WithLookback sets how many days back the from-date lies (default 1).
func WithLookback(days int) FetcherOption {
	return func(f *Fetcher) {
		if days > 0 {
			f.days = days
		}
	}
}

// WithClock overrides the time source used for the from-date.
func WithClock(c utils.Clock) FetcherOption {
	return func(f *Fetcher) {
		if c != nil {
			f.clock = c
		}
	}
}

// WithLogger sets the logger used for per-topic warnings.
func WithLogger(log *slog.Logger) FetcherOption {
	return func(f *Fetcher) {
		if log != nil {
			f.log = log
		}
	}
}

// NewFetcher creates a Fetcher over s.
func NewFetcher(s Searcher, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		searcher: s,
		language: "en",
		sortBy:   "publishedAt",
		pageSize: 5,
		days:     1,
		clock:    utils.SystemClock,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch issues exactly one search per topic, in order. A failing topic
// contributes no articles and is recorded in the result; Fetch itself
// never fails. perTopic <= 0 uses the configured page size.
func (f *Fetcher) Fetch(ctx context.Context, topics []string, perTopic int) FetchResult {
	if perTopic <= 0 {
		perTopic = f.pageSize
	}

	res := FetchResult{Topics: make([]TopicResult, 0, len(topics))}
	for _, topic := range topics {
		q := Query{
			Term:     topic,
			From:     utils.DaysAgo(f.clock(), f.days),
			Language: f.language,
			SortBy:   f.sortBy,
			PageSize: perTopic,
		}

		articles, err := f.searcher.Search(ctx, q)
		if err != nil {
			f.log.Warn("news search failed",
				slog.String("topic", topic),
				slog.String("source", f.searcher.Name()),
				slog.String("error", err.Error()),
			)
			res.Topics = append(res.Topics, TopicResult{Topic: topic, Err: err})
			continue
		}

		f.log.Debug("news search complete",
			slog.String("topic", topic),
			slog.Int("articles", len(articles)),
		)
		res.Articles = append(res.Articles, articles...)
		res.Topics = append(res.Topics, TopicResult{Topic: topic, Count: len(articles)})
	}
	return res
}
