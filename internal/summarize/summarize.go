// Package summarize turns a news article into a short LLM-written summary.
// Failures never escape as errors: the caller always gets printable text.
package summarize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/seenimoa/newsbrief/internal/llm"
	"github.com/seenimoa/newsbrief/internal/news"
	"github.com/seenimoa/newsbrief/pkg/utils"
)

// Prompt text sent with every request.
const (
	SystemPrompt = "You are a helpful assistant that summarizes news articles concisely."
	userTemplate = "Summarize this news article in 3-4 sentences:\n\nTitle: %s\n\nContent: %s"
	fallbackText = "Summary unavailable. Original title: %s"
)

// Defaults applied when Options leaves a field zero.
const (
	DefaultMaxTokens     = 150
	DefaultMaxInputChars = 1000
)

// ErrEmptySummary is returned when the model produced only whitespace.
var ErrEmptySummary = errors.New("summarize: empty summary")

// Result is the outcome of one summarization. Text is always printable.
type Result struct {
	Text     string
	Fallback bool  // Text is the fallback line, not a generated summary
	Err      error // cause of the fallback
}

// Options configures a Summarizer.
type Options struct {
	Model         string
	MaxTokens     int
	MaxInputChars int
	Temperature   float64
	Logger        *slog.Logger
}

// Summarizer asks an LLM provider for article summaries.
type Summarizer struct {
	provider llm.LLMProvider
	opts     Options
	log      *slog.Logger
}

// New creates a Summarizer backed by provider.
func New(provider llm.LLMProvider, opts Options) *Summarizer {
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = DefaultMaxTokens
	}
	if opts.MaxInputChars <= 0 {
		opts.MaxInputChars = DefaultMaxInputChars
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Summarizer{provider: provider, opts: opts, log: log}
}

// Summarize makes one request for a. On any failure, including an empty
// completion, the result carries the fallback text and the cause.
func (s *Summarizer) Summarize(ctx context.Context, a news.Article) Result {
	resp, err := s.provider.Chat(ctx, Messages(a, s.opts.MaxInputChars), &llm.ChatOptions{
		Model:       s.opts.Model,
		MaxTokens:   s.opts.MaxTokens,
		Temperature: s.opts.Temperature,
	})
	if err == nil {
		text := strings.TrimSpace(resp.Content)
		if text != "" {
			return Result{Text: text}
		}
		err = ErrEmptySummary
	}

	s.log.Warn("summarization failed",
		slog.String("title", a.Title),
		slog.String("error", err.Error()),
	)
	return Result{Text: Fallback(a.Title), Fallback: true, Err: err}
}

// Messages builds the chat request for a. The body is the description,
// else the content, truncated to maxChars characters.
func Messages(a news.Article, maxChars int) []llm.Message {
	body := utils.TruncateRunes(utils.FirstNonEmpty(a.Description, a.Content), maxChars)
	return []llm.Message{
		llm.SystemMessage(SystemPrompt),
		llm.UserMessage(fmt.Sprintf(userTemplate, a.Title, body)),
	}
}

// Fallback returns the placeholder used when no summary is available.
func Fallback(title string) string {
	return fmt.Sprintf(fallbackText, title)
}
