package mailer

import (
	"context"
	"fmt"
)

// Sender delivers a fully-prepared Email.
type Sender interface {
	Send(ctx context.Context, email *Email) error
}

// Email represents a message ready for sending.
type Email struct {
	Headers map[string]string // Custom headers
	From    string            // RFC 5322 address, optionally "Name <addr>"
	To      []string          // Recipients (at least one required)
	ReplyTo string
	Subject string
	Text    string // Plain text body
	HTML    string // Optional HTML alternative
}

// Recipient formats a name and email into RFC 5322 address format.
// Returns "Name <email>" if name is provided, otherwise just email.
func Recipient(name, email string) string {
	if name == "" {
		return email
	}
	return fmt.Sprintf("%s <%s>", name, email)
}
