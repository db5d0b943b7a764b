package briefing

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/seenimoa/newsbrief/internal/config"
	"github.com/seenimoa/newsbrief/internal/llm"
	"github.com/seenimoa/newsbrief/internal/mailer"
	"github.com/seenimoa/newsbrief/internal/mailer/resend"
	"github.com/seenimoa/newsbrief/internal/mailer/smtp"
	"github.com/seenimoa/newsbrief/internal/news"
	"github.com/seenimoa/newsbrief/internal/newsletter"
	"github.com/seenimoa/newsbrief/internal/summarize"
	"github.com/seenimoa/newsbrief/pkg/utils"
)

// Components holds everything NewFromConfig built, so callers can probe
// individual services without running the pipeline.
type Components struct {
	Pipeline *Pipeline
	Router   *llm.Router
	Searcher news.Searcher
	Mailer   *mailer.Mailer
}

// NewFromConfig wires the production pipeline. Topics and PerTopic in opts
// override the configured values when set.
func NewFromConfig(ctx context.Context, cfg *config.Config, opts Options) (*Components, error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
		opts.Logger = log
	}

	loc, err := utils.LoadLocation(cfg.Newsletter.Timezone)
	if err != nil {
		log.Warn("unknown timezone, using local time",
			slog.String("timezone", cfg.Newsletter.Timezone),
			slog.String("error", err.Error()))
	}
	clock := utils.Clock(utils.SystemClock).In(loc)

	fetcher, err := news.NewFetcherFromConfig(cfg.News,
		log.With(slog.String("component", "news")),
		news.WithClock(clock),
	)
	if err != nil {
		return nil, fmt.Errorf("news: %w", err)
	}

	router, err := llm.NewRouterFromConfig(ctx, cfg.LLM, log.With(slog.String("component", "llm")))
	if err != nil {
		return nil, err
	}
	summarizer := summarize.New(router, summarize.Options{
		MaxTokens:     cfg.LLM.SummaryMaxTokens,
		MaxInputChars: cfg.LLM.MaxInputChars,
		Temperature:   cfg.LLM.Temperature,
		Logger:        log.With(slog.String("component", "summarize")),
	})
	composer := newsletter.NewComposer(summarizer,
		newsletter.WithMaxArticles(cfg.Newsletter.MaxArticles),
		newsletter.WithClock(clock),
	)

	sender, err := NewSenderFromConfig(cfg.Mail)
	if err != nil {
		return nil, err
	}
	m := mailer.New(sender, mailer.Config{
		From:     cfg.Mail.Sender,
		FromName: cfg.Mail.SenderName,
		To:       cfg.Mail.Recipient,
	}, mailer.WithClock(clock))

	if len(opts.Topics) == 0 {
		opts.Topics = cfg.Newsletter.Topics
	}
	if len(opts.Topics) == 0 {
		opts.Topics = config.DefaultTopics
	}

	return &Components{
		Pipeline: New(fetcher, composer, m, opts),
		Router:   router,
		Searcher: fetcher.Searcher(),
		Mailer:   m,
	}, nil
}

// NewSenderFromConfig builds the transport selected by mail.transport.
func NewSenderFromConfig(cfg config.MailConfig) (mailer.Sender, error) {
	switch cfg.Transport {
	case config.TransportSMTP, "":
		return smtp.New(smtp.Config{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.Sender,
			Password: cfg.Password,
			Timeout:  cfg.Timeout,
		}), nil
	case config.TransportResend:
		if cfg.ResendAPIKey == "" {
			return nil, fmt.Errorf("mail: resend transport requires an API key")
		}
		return resend.New(resend.Config{
			APIKey:      cfg.ResendAPIKey,
			SenderEmail: cfg.Sender,
			SenderName:  cfg.SenderName,
		}), nil
	default:
		return nil, fmt.Errorf("mail: unknown transport %q", cfg.Transport)
	}
}
