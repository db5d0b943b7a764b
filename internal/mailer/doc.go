// Package mailer delivers the composed briefing as a plain-text email.
//
// Mailer builds a validated Email from the newsletter body and hands it to
// a Sender. Two senders exist: smtp (STARTTLS + PLAIN auth through go-mail)
// and resend (Resend HTTP API). Both live in subpackages so the core has no
// transport dependencies.
//
//	m := mailer.New(smtp.New(cfg), mailer.Config{From: "me@example.com", To: "you@example.com"})
//	err := m.Send(ctx, body)
package mailer
