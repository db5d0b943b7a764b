// Package newsletter composes the plain-text daily briefing.
package newsletter

import (
	"context"
	"strings"
	"time"

	"github.com/seenimoa/newsbrief/internal/news"
	"github.com/seenimoa/newsbrief/internal/summarize"
	"github.com/seenimoa/newsbrief/pkg/utils"
)

// Text fragments of the rendered newsletter.
const (
	Banner         = "🗞️ Your AI Daily News Briefing 🗞️"
	generatedLabel = "Generated on: "
	entryMarker    = "📰 "
)

// DefaultMaxArticles is the number of articles included when unset.
const DefaultMaxArticles = 5

// Summarizer produces the summary text for one article.
type Summarizer interface {
	Summarize(ctx context.Context, a news.Article) summarize.Result
}

// Entry is one article as it appears in the newsletter.
type Entry struct {
	Article news.Article
	Summary summarize.Result
}

// Newsletter is a composed briefing.
type Newsletter struct {
	Text        string
	Entries     []Entry
	GeneratedAt time.Time
}

// Fallbacks returns the entries whose summary could not be generated.
func (n Newsletter) Fallbacks() []Entry {
	var out []Entry
	for _, e := range n.Entries {
		if e.Summary.Fallback {
			out = append(out, e)
		}
	}
	return out
}

// Composer renders newsletters.
type Composer struct {
	summarizer  Summarizer
	maxArticles int
	clock       utils.Clock
}

// Option configures a Composer.
type Option func(*Composer)

// WithMaxArticles caps how many articles are summarized and included.
func WithMaxArticles(n int) Option {
	return func(c *Composer) {
		if n > 0 {
			c.maxArticles = n
		}
	}
}

// WithClock sets the time source for the "Generated on" line.
func WithClock(clock utils.Clock) Option {
	return func(c *Composer) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// NewComposer creates a Composer.
func NewComposer(s Summarizer, opts ...Option) *Composer {
	c := &Composer{
		summarizer:  s,
		maxArticles: DefaultMaxArticles,
		clock:       utils.SystemClock,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compose summarizes the first N articles in order and renders the text.
// Articles beyond the cap are never summarized.
func (c *Composer) Compose(ctx context.Context, articles []news.Article) Newsletter {
	now := c.clock()

	var b strings.Builder
	b.WriteString(Banner + "\n\n")
	b.WriteString(generatedLabel + utils.FormatDateTime(now) + "\n\n")

	selected := articles[:min(len(articles), c.maxArticles)]
	entries := make([]Entry, 0, len(selected))
	for _, a := range selected {
		res := c.summarizer.Summarize(ctx, a)
		entries = append(entries, Entry{Article: a, Summary: res})

		b.WriteString(entryMarker + a.Title + "\n")
		b.WriteString(res.Text + "\n\n")
	}

	return Newsletter{Text: b.String(), Entries: entries, GeneratedAt: now}
}
