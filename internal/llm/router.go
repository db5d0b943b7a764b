package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/newsbrief/internal/config"
)

// Router sends requests to the primary provider and, when configured,
// walks a fallback chain. Each provider gets exactly one attempt.
type Router struct {
	mu        sync.RWMutex
	providers map[string]LLMProvider
	primary   string
	fallbacks []string
	log       *slog.Logger
}

// RouterOption configures the router.
type RouterOption func(*Router)

// WithFallbacks sets the fallback provider chain.
func WithFallbacks(providers ...string) RouterOption {
	return func(r *Router) { r.fallbacks = providers }
}

// WithRouterLogger sets the logger used for fallback warnings.
func WithRouterLogger(log *slog.Logger) RouterOption {
	return func(r *Router) {
		if log != nil {
			r.log = log
		}
	}
}

// NewRouter creates a new LLM router with the given primary provider.
func NewRouter(primary string, opts ...RouterOption) *Router {
	r := &Router{
		providers: make(map[string]LLMProvider),
		primary:   primary,
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RegisterProvider adds a provider to the router.
func (r *Router) RegisterProvider(provider LLMProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[provider.Name()] = provider
}

// GetProvider returns a registered provider by name.
func (r *Router) GetProvider(name string) (LLMProvider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[name]
	return p, ok
}

// Primary returns the primary provider.
func (r *Router) Primary() (LLMProvider, error) {
	p, ok := r.GetProvider(r.primary)
	if !ok {
		return nil, fmt.Errorf("%w: primary provider %q not registered", ErrNoProviders, r.primary)
	}
	return p, nil
}

// Chat routes a chat request through the provider chain.
func (r *Router) Chat(ctx context.Context, messages []Message, opts *ChatOptions) (*Response, error) {
	chain := r.providerChain()

	var lastErr error
	tried := 0
	for _, providerName := range chain {
		provider, ok := r.GetProvider(providerName)
		if !ok {
			continue
		}
		tried++

		resp, err := provider.Chat(ctx, messages, opts)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if isFatal(err) {
			return nil, err
		}
		r.log.Warn("llm provider failed",
			slog.String("provider", providerName),
			slog.String("error", err.Error()),
		)
	}

	if tried == 0 {
		return nil, ErrNoProviders
	}
	if tried == 1 {
		return nil, lastErr
	}
	return nil, fmt.Errorf("llm/router: all providers failed, last error: %w", lastErr)
}

// HealthCheck pings all registered providers concurrently.
func (r *Router) HealthCheck(ctx context.Context) map[string]error {
	r.mu.RLock()
	providers := make(map[string]LLMProvider, len(r.providers))
	for k, v := range r.providers {
		providers[k] = v
	}
	r.mu.RUnlock()

	results := make(map[string]error, len(providers))
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)

	for name, provider := range providers {
		g.Go(func() error {
			pingCtx, cancel := context.WithTimeout(gctx, 10*time.Second)
			defer cancel()
			err := provider.Ping(pingCtx)
			mu.Lock()
			results[name] = err
			mu.Unlock()
			return nil // a failed ping must not cancel the others
		})
	}

	_ = g.Wait()
	return results
}

// Name returns the name of the primary provider (satisfies LLMProvider).
func (r *Router) Name() string {
	return "router/" + r.primary
}

// Models returns the union of models from all registered providers (satisfies LLMProvider).
func (r *Router) Models() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var all []string
	seen := make(map[string]bool)
	for _, name := range r.sortedNames() {
		for _, m := range r.providers[name].Models() {
			if !seen[m] {
				seen[m] = true
				all = append(all, m)
			}
		}
	}
	return all
}

// Ping checks the primary provider's health (satisfies LLMProvider).
func (r *Router) Ping(ctx context.Context) error {
	p, err := r.Primary()
	if err != nil {
		return err
	}
	return p.Ping(ctx)
}

// ProviderNames returns the names of all registered providers, sorted.
func (r *Router) ProviderNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sortedNames()
}

// ── Internal Helpers ──

// sortedNames must be called with mu held.
func (r *Router) sortedNames() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Router) providerChain() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	chain := []string{r.primary}
	for _, fb := range r.fallbacks {
		if fb != r.primary {
			chain = append(chain, fb)
		}
	}
	return chain
}

// isFatal reports errors that another provider cannot fix.
func isFatal(err error) bool {
	return errors.Is(err, ErrNoAPIKey) ||
		errors.Is(err, ErrInvalidModel) ||
		errors.Is(err, ErrContextLength) ||
		errors.Is(err, context.Canceled)
}

// NewRouterFromConfig creates a Router from the LLM configuration. The
// primary provider must be constructible; fallbacks come only from
// cfg.Fallbacks, and ones that cannot be built are skipped with a warning.
func NewRouterFromConfig(ctx context.Context, cfg config.LLMConfig, log *slog.Logger) (*Router, error) {
	if log == nil {
		log = slog.Default()
	}
	router := NewRouter(cfg.Primary,
		WithFallbacks(cfg.Fallbacks...),
		WithRouterLogger(log),
	)

	primary, err := NewProvider(ctx, cfg.Primary, cfg)
	if err != nil {
		return nil, fmt.Errorf("llm: primary provider %q: %w", cfg.Primary, err)
	}
	router.RegisterProvider(primary)

	for _, name := range cfg.Fallbacks {
		if name == cfg.Primary {
			continue
		}
		p, err := NewProvider(ctx, name, cfg)
		if err != nil {
			log.Warn("skipping llm fallback", slog.String("provider", name), slog.String("error", err.Error()))
			continue
		}
		router.RegisterProvider(p)
	}

	return router, nil
}

// NewProvider builds a single named provider from cfg.
func NewProvider(ctx context.Context, name string, cfg config.LLMConfig) (LLMProvider, error) {
	client := &http.Client{Timeout: cfg.Timeout}
	if cfg.Timeout <= 0 {
		client.Timeout = 60 * time.Second
	}
	model := modelFor(name, cfg)

	switch name {
	case ProviderOpenAI:
		p, err := NewOpenAIProvider(cfg.OpenAIKey,
			WithOpenAIBaseURL(cfg.OpenAIBaseURL),
			WithOpenAIModel(model),
			WithOpenAIHTTPClient(client),
		)
		if err != nil {
			return nil, err
		}
		return p, nil
	case ProviderOllama:
		p, err := NewOllamaProvider(cfg.OllamaURL,
			WithOllamaModel(model),
			WithOllamaHTTPClient(client),
		)
		if err != nil {
			return nil, err
		}
		return p, nil
	case ProviderGemini:
		p, err := NewGeminiProvider(ctx, cfg.GeminiKey,
			WithGeminiModel(model),
			WithGeminiHTTPClient(client),
		)
		if err != nil {
			return nil, err
		}
		return p, nil
	case ProviderAnthropic:
		p, err := NewAnthropicProvider(cfg.AnthropicKey,
			WithAnthropicModel(model),
			WithAnthropicHTTPClient(client),
		)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown provider %q", name)
	}
}

// modelFor returns cfg.Model when it belongs to the named provider, or ""
// to keep that provider's default.
func modelFor(name string, cfg config.LLMConfig) string {
	m := cfg.Model
	switch {
	case m == "":
		return ""
	case strings.HasPrefix(m, "gemini"):
		if name == ProviderGemini {
			return m
		}
	case strings.HasPrefix(m, "claude"):
		if name == ProviderAnthropic {
			return m
		}
	case strings.HasPrefix(m, "gpt-"):
		if name == ProviderOpenAI {
			return m
		}
	case name == cfg.Primary && (name == ProviderOpenAI || name == ProviderOllama):
		return m
	}
	return ""
}
