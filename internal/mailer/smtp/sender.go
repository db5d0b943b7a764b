// Package smtp implements mailer.Sender over authenticated SMTP with
// STARTTLS, using go-mail.
package smtp

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	gomail "github.com/wneessen/go-mail"

	"github.com/seenimoa/newsbrief/internal/mailer"
)

// Config holds SMTP connection settings.
type Config struct {
	Host     string
	Port     int
	Username string // usually the sender address
	Password string
	Timeout  time.Duration

	// TLSConfig overrides the STARTTLS settings, e.g. for a relay signed by a
	// private CA. nil verifies Host against the system roots.
	TLSConfig *tls.Config
}

// Sender implements mailer.Sender for an SMTP submission server.
type Sender struct {
	config Config
}

// New creates a new SMTP sender.
func New(cfg Config) *Sender {
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Sender{config: cfg}
}

// Send connects, upgrades with STARTTLS, authenticates with PLAIN, submits
// the message and closes the connection. Port 465 uses implicit TLS.
func (s *Sender) Send(ctx context.Context, email *mailer.Email) error {
	msg, err := newMessage(email)
	if err != nil {
		return err
	}

	client, err := gomail.NewClient(s.config.Host, s.clientOptions()...)
	if err != nil {
		return fmt.Errorf("smtp: create client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp: send via %s:%d: %w", s.config.Host, s.config.Port, err)
	}
	return nil
}

func (s *Sender) clientOptions() []gomail.Option {
	opts := []gomail.Option{
		gomail.WithPort(s.config.Port),
		gomail.WithTimeout(s.config.Timeout),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.config.Username),
		gomail.WithPassword(s.config.Password),
	}
	if s.config.TLSConfig != nil {
		opts = append(opts, gomail.WithTLSConfig(s.config.TLSConfig))
	}
	if s.config.Port == 465 {
		opts = append(opts, gomail.WithSSL())
	} else {
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSMandatory))
	}
	return opts
}

// newMessage converts an Email into a go-mail message.
func newMessage(email *mailer.Email) (*gomail.Msg, error) {
	msg := gomail.NewMsg()
	if err := msg.From(email.From); err != nil {
		return nil, fmt.Errorf("smtp: invalid from address: %w", err)
	}
	if err := msg.To(email.To...); err != nil {
		return nil, fmt.Errorf("smtp: invalid recipient: %w", err)
	}
	if email.ReplyTo != "" {
		if err := msg.ReplyTo(email.ReplyTo); err != nil {
			return nil, fmt.Errorf("smtp: invalid reply-to: %w", err)
		}
	}
	for k, v := range email.Headers {
		msg.SetGenHeader(gomail.Header(k), v)
	}
	msg.Subject(email.Subject)
	msg.SetDate()
	msg.SetMessageID()
	msg.SetBodyString(gomail.TypeTextPlain, email.Text)
	if email.HTML != "" {
		msg.AddAlternativeString(gomail.TypeTextHTML, email.HTML)
	}
	return msg, nil
}
