package mailer

import (
	"context"
	"errors"
	"strings"

	"github.com/seenimoa/newsbrief/pkg/utils"
)

// SubjectPrefix precedes the current date in every subject line.
const SubjectPrefix = "Daily News Briefing - "

// Config holds the addressing used for every briefing.
type Config struct {
	From     string
	FromName string
	To       string
}

// Mailer sends newsletter bodies through a Sender.
type Mailer struct {
	sender Sender
	config Config
	clock  utils.Clock
}

// Option configures a Mailer.
type Option func(*Mailer)

// WithClock sets the time source for the subject date.
func WithClock(clock utils.Clock) Option {
	return func(m *Mailer) {
		if clock != nil {
			m.clock = clock
		}
	}
}

// New creates a Mailer.
func New(sender Sender, cfg Config, opts ...Option) *Mailer {
	m := &Mailer{sender: sender, config: cfg, clock: utils.SystemClock}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Subject returns today's subject line.
func (m *Mailer) Subject() string {
	return SubjectPrefix + utils.FormatDate(m.clock())
}

// Build returns the exact message Send would deliver for body.
func (m *Mailer) Build(body string) (*Email, error) {
	if strings.TrimSpace(m.config.To) == "" {
		return nil, ErrNoRecipient
	}
	if strings.TrimSpace(m.config.From) == "" {
		return nil, ErrNoSender
	}
	if strings.TrimSpace(body) == "" {
		return nil, ErrNoContent
	}
	return &Email{
		From:    Recipient(m.config.FromName, m.config.From),
		To:      []string{m.config.To},
		Subject: m.Subject(),
		Text:    body,
	}, nil
}

// Send delivers body in a single attempt.
func (m *Mailer) Send(ctx context.Context, body string) error {
	email, err := m.Build(body)
	if err != nil {
		return err
	}
	if err := m.sender.Send(ctx, email); err != nil {
		return errors.Join(ErrSendFailed, err)
	}
	return nil
}
