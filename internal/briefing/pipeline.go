// Package briefing runs the daily newsletter job once: fetch articles per
// topic, compose the newsletter, deliver it.
package briefing

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/seenimoa/newsbrief/internal/news"
	"github.com/seenimoa/newsbrief/internal/newsletter"
)

// Fetcher collects articles for a topic list.
type Fetcher interface {
	Fetch(ctx context.Context, topics []string, perTopic int) news.FetchResult
}

// Composer renders the newsletter text.
type Composer interface {
	Compose(ctx context.Context, articles []news.Article) newsletter.Newsletter
}

// Mailer delivers the newsletter body.
type Mailer interface {
	Send(ctx context.Context, body string) error
}

// Options configures a Pipeline.
type Options struct {
	Topics   []string
	PerTopic int
	DryRun   bool      // write the newsletter to Output instead of sending
	Output   io.Writer // dry-run destination, stdout when nil
	Logger   *slog.Logger
}

// Report describes what a run did. Failures at every stage are recorded
// here; Run itself never returns an error.
type Report struct {
	Topics     []news.TopicResult
	Fetched    int
	Newsletter newsletter.Newsletter
	DryRun     bool
	Sent       bool
	SendErr    error
	Err        error // unexpected failure (recovered panic)
	Duration   time.Duration
}

// FailedTopics returns the topics whose search failed.
func (r Report) FailedTopics() []news.TopicResult {
	return news.FetchResult{Topics: r.Topics}.Failed()
}

// Fallbacks returns the number of articles printed without a summary.
func (r Report) Fallbacks() int {
	return len(r.Newsletter.Fallbacks())
}

// Pipeline wires the fetch, compose and send stages.
type Pipeline struct {
	fetcher  Fetcher
	composer Composer
	mailer   Mailer
	opts     Options
	log      *slog.Logger
}

// New creates a Pipeline.
func New(f Fetcher, c Composer, m Mailer, opts Options) *Pipeline {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	return &Pipeline{fetcher: f, composer: c, mailer: m, opts: opts, log: log}
}

// Run executes one briefing. The newsletter is composed from whatever the
// fetch produced, even nothing, and delivery is always attempted.
func (p *Pipeline) Run(ctx context.Context) (report Report) {
	start := time.Now()
	report.DryRun = p.opts.DryRun

	defer func() {
		if r := recover(); r != nil {
			report.Err = fmt.Errorf("briefing: panic: %v", r)
			p.log.Error("briefing aborted", slog.String("error", report.Err.Error()))
		}
		report.Duration = time.Since(start)
	}()

	fetched := p.fetcher.Fetch(ctx, p.opts.Topics, p.opts.PerTopic)
	report.Topics = fetched.Topics
	report.Fetched = len(fetched.Articles)
	p.log.Info("articles fetched",
		slog.Int("articles", report.Fetched),
		slog.Int("topics", len(fetched.Topics)),
		slog.Int("failed_topics", len(fetched.Failed())),
	)

	report.Newsletter = p.composer.Compose(ctx, fetched.Articles)
	p.log.Info("newsletter composed",
		slog.Int("entries", len(report.Newsletter.Entries)),
		slog.Int("fallbacks", report.Fallbacks()),
	)

	if p.opts.DryRun {
		if _, err := io.WriteString(p.opts.Output, report.Newsletter.Text); err != nil {
			report.SendErr = fmt.Errorf("write newsletter: %w", err)
			p.log.Error("dry run output failed", slog.String("error", err.Error()))
		}
		return report
	}

	if err := p.mailer.Send(ctx, report.Newsletter.Text); err != nil {
		report.SendErr = err
		p.log.Error("newsletter delivery failed", slog.String("error", err.Error()))
		return report
	}
	report.Sent = true
	p.log.Info("newsletter sent")
	return report
}
