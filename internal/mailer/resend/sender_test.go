package resend

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/seenimoa/newsbrief/internal/mailer"
)

func TestSender_Request(t *testing.T) {
	t.Parallel()

	s := New(Config{APIKey: "re_test", SenderEmail: "bot@example.com", SenderName: "News Bot"})

	req := s.request(&mailer.Email{
		To:      []string{"reader@example.com"},
		Subject: "Daily News Briefing - 2026-10-18",
		Text:    "plain body",
	})
	assert.Equal(t, "News Bot <bot@example.com>", req.From)
	assert.Equal(t, []string{"reader@example.com"}, req.To)
	assert.Equal(t, "Daily News Briefing - 2026-10-18", req.Subject)
	assert.Equal(t, "plain body", req.Text)
	assert.Empty(t, req.Html)

	req = s.request(&mailer.Email{From: "other@example.com", To: []string{"x@example.com"}})
	assert.Equal(t, "other@example.com", req.From)
}
