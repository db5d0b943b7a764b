package config

// Package config handles configuration loading for newsbrief.
// It supports YAML config files, a .env file, and environment variable overrides.

import (
	"errors"
	"fmt"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	News       NewsConfig       `mapstructure:"news"       yaml:"news"`
	LLM        LLMConfig        `mapstructure:"llm"        yaml:"llm"`
	Mail       MailConfig       `mapstructure:"mail"       yaml:"mail"`
	Newsletter NewsletterConfig `mapstructure:"newsletter" yaml:"newsletter"`
	Logging    LoggingConfig    `mapstructure:"logging"    yaml:"logging"`
	Sentry     SentryConfig     `mapstructure:"sentry"     yaml:"sentry"`
}

// NewsConfig holds news search service settings.
type NewsConfig struct {
	Provider string        `mapstructure:"provider"  yaml:"provider"` // "newsapi" or "googlenews"
	APIKey   string        `mapstructure:"api_key"   yaml:"api_key"`
	BaseURL  string        `mapstructure:"base_url"  yaml:"base_url"`
	Language string        `mapstructure:"language"  yaml:"language"`
	SortBy   string        `mapstructure:"sort_by"   yaml:"sort_by"`
	PageSize int           `mapstructure:"page_size" yaml:"page_size"` // articles requested per topic
	Days     int           `mapstructure:"days"      yaml:"days"`      // search window
	Timeout  time.Duration `mapstructure:"timeout"   yaml:"timeout"`
}

// LLMConfig holds LLM provider configuration.
type LLMConfig struct {
	Primary          string        `mapstructure:"primary"            yaml:"primary"` // "openai", "ollama", "gemini", "anthropic"
	OpenAIKey        string        `mapstructure:"openai_key"         yaml:"openai_key"`
	OpenAIBaseURL    string        `mapstructure:"openai_base_url"    yaml:"openai_base_url"`
	OllamaURL        string        `mapstructure:"ollama_url"         yaml:"ollama_url"`
	GeminiKey        string        `mapstructure:"gemini_key"         yaml:"gemini_key"`
	AnthropicKey     string        `mapstructure:"anthropic_key"      yaml:"anthropic_key"`
	Model            string        `mapstructure:"model"              yaml:"model"`
	Fallbacks        []string      `mapstructure:"fallbacks"          yaml:"fallbacks"`
	Temperature      float64       `mapstructure:"temperature"        yaml:"temperature"`
	SummaryMaxTokens int           `mapstructure:"summary_max_tokens" yaml:"summary_max_tokens"`
	MaxInputChars    int           `mapstructure:"max_input_chars"    yaml:"max_input_chars"`
	Timeout          time.Duration `mapstructure:"timeout"            yaml:"timeout"`
}

// MailConfig holds outbound mail settings.
type MailConfig struct {
	Transport    string        `mapstructure:"transport"      yaml:"transport"` // "smtp" or "resend"
	SMTPHost     string        `mapstructure:"smtp_host"      yaml:"smtp_host"`
	SMTPPort     int           `mapstructure:"smtp_port"      yaml:"smtp_port"`
	Sender       string        `mapstructure:"sender"         yaml:"sender"`
	SenderName   string        `mapstructure:"sender_name"    yaml:"sender_name"`
	Password     string        `mapstructure:"password"       yaml:"password"`
	Recipient    string        `mapstructure:"recipient"      yaml:"recipient"`
	ResendAPIKey string        `mapstructure:"resend_api_key" yaml:"resend_api_key"`
	Timeout      time.Duration `mapstructure:"timeout"        yaml:"timeout"`
}

// NewsletterConfig holds composition settings.
type NewsletterConfig struct {
	Topics      []string `mapstructure:"topics"       yaml:"topics"`
	MaxArticles int      `mapstructure:"max_articles" yaml:"max_articles"`
	Timezone    string   `mapstructure:"timezone"     yaml:"timezone"` // IANA name, empty = local
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "text" or "json"
}

// SentryConfig holds optional error reporting settings.
type SentryConfig struct {
	DSN         string `mapstructure:"dsn"         yaml:"dsn"`
	Environment string `mapstructure:"environment" yaml:"environment"`
}

// Provider and transport names accepted by Validate.
const (
	NewsProviderNewsAPI    = "newsapi"
	NewsProviderGoogleNews = "googlenews"

	TransportSMTP   = "smtp"
	TransportResend = "resend"
)

// DefaultTopics is the topic list searched when none is configured.
var DefaultTopics = []string{"technology", "data science", "programming", "cybersecurity"}

// envPrefix is prepended to every derived environment variable name.
const envPrefix = "NEWSBRIEF"

// legacyEnv maps config keys to the bare environment names used by existing
// deployments. The prefixed name always takes precedence.
var legacyEnv = map[string]string{
	"news.api_key":   "NEWS_API_KEY",
	"llm.openai_key": "OPENAI_API_KEY",
	"mail.smtp_host": "SMTP_SERVER",
	"mail.smtp_port": "SMTP_PORT",
	"mail.sender":    "SENDER_EMAIL",
	"mail.password":  "SENDER_PASSWORD",
	"mail.recipient": "RECIPIENT_EMAIL",
}

// LoadEnvFile loads KEY=VALUE pairs from path into the process environment
// without overriding variables that are already set. A missing file is not
// an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("error loading env file %s: %w", path, err)
	}
	return nil
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.newsbrief/config.yaml (home directory)
//  3. /etc/newsbrief/config.yaml (system)
//
// Environment variables override config file values.
// Format: NEWSBRIEF_<SECTION>_<KEY>, e.g., NEWSBRIEF_MAIL_SMTP_HOST
func Load() (*Config, error) {
	v := newViper()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".newsbrief"))
	v.AddConfigPath("/etc/newsbrief")

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return unmarshal(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	return unmarshal(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, legacy := range legacyEnv {
		// BindEnv only fails when called without arguments.
		_ = v.BindEnv(key, envName(key), legacy)
	}
	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	cfg.normalize()
	return &cfg, nil
}

// envName returns the prefixed environment variable for a config key.
func envName(key string) string {
	return envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// News defaults
	v.SetDefault("news.provider", NewsProviderNewsAPI)
	v.SetDefault("news.api_key", "")
	v.SetDefault("news.base_url", "")
	v.SetDefault("news.language", "en")
	v.SetDefault("news.sort_by", "publishedAt")
	v.SetDefault("news.page_size", 5)
	v.SetDefault("news.days", 1)
	v.SetDefault("news.timeout", 30*time.Second)

	// LLM defaults
	v.SetDefault("llm.primary", "openai")
	v.SetDefault("llm.openai_key", "")
	v.SetDefault("llm.openai_base_url", "")
	v.SetDefault("llm.ollama_url", "")
	v.SetDefault("llm.gemini_key", "")
	v.SetDefault("llm.anthropic_key", "")
	v.SetDefault("llm.model", "gpt-3.5-turbo")
	v.SetDefault("llm.fallbacks", []string{})
	v.SetDefault("llm.temperature", 0.0)
	v.SetDefault("llm.summary_max_tokens", 150)
	v.SetDefault("llm.max_input_chars", 1000)
	v.SetDefault("llm.timeout", 60*time.Second)

	// Mail defaults
	v.SetDefault("mail.transport", TransportSMTP)
	v.SetDefault("mail.smtp_host", "")
	v.SetDefault("mail.smtp_port", 587)
	v.SetDefault("mail.sender", "")
	v.SetDefault("mail.sender_name", "")
	v.SetDefault("mail.password", "")
	v.SetDefault("mail.recipient", "")
	v.SetDefault("mail.resend_api_key", "")
	v.SetDefault("mail.timeout", 30*time.Second)

	// Newsletter defaults
	v.SetDefault("newsletter.topics", DefaultTopics)
	v.SetDefault("newsletter.max_articles", 5)
	v.SetDefault("newsletter.timezone", "")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	// Sentry defaults
	v.SetDefault("sentry.dsn", "")
	v.SetDefault("sentry.environment", "production")
}

// SetTopics replaces the topic list, trimming entries and dropping empty ones.
func (c *Config) SetTopics(topics []string) {
	clean := make([]string, 0, len(topics))
	for _, t := range topics {
		if t = strings.TrimSpace(t); t != "" {
			clean = append(clean, t)
		}
	}
	c.Newsletter.Topics = clean
}

// normalize trims list entries and lower-cases provider names.
func (c *Config) normalize() {
	c.SetTopics(c.Newsletter.Topics)
	c.News.Provider = strings.ToLower(strings.TrimSpace(c.News.Provider))
	c.Mail.Transport = strings.ToLower(strings.TrimSpace(c.Mail.Transport))
	c.LLM.Primary = strings.ToLower(strings.TrimSpace(c.LLM.Primary))
}

// Validate reports every missing or invalid value needed for a run.
func (c *Config) Validate() error {
	var errs []error

	switch c.News.Provider {
	case NewsProviderNewsAPI:
		if c.News.APIKey == "" {
			errs = append(errs, errors.New("news.api_key is required (NEWS_API_KEY)"))
		}
	case NewsProviderGoogleNews:
	default:
		errs = append(errs, fmt.Errorf("news.provider %q is not supported", c.News.Provider))
	}
	if c.News.PageSize <= 0 {
		errs = append(errs, fmt.Errorf("news.page_size must be positive, got %d", c.News.PageSize))
	}

	switch c.LLM.Primary {
	case "openai":
		if c.LLM.OpenAIKey == "" {
			errs = append(errs, errors.New("llm.openai_key is required (OPENAI_API_KEY)"))
		}
	case "gemini":
		if c.LLM.GeminiKey == "" {
			errs = append(errs, errors.New("llm.gemini_key is required"))
		}
	case "anthropic":
		if c.LLM.AnthropicKey == "" {
			errs = append(errs, errors.New("llm.anthropic_key is required"))
		}
	case "ollama":
	default:
		errs = append(errs, fmt.Errorf("llm.primary %q is not supported", c.LLM.Primary))
	}

	if err := validAddress("mail.sender", c.Mail.Sender, "SENDER_EMAIL"); err != nil {
		errs = append(errs, err)
	}
	if err := validAddress("mail.recipient", c.Mail.Recipient, "RECIPIENT_EMAIL"); err != nil {
		errs = append(errs, err)
	}
	switch c.Mail.Transport {
	case TransportSMTP:
		if c.Mail.SMTPHost == "" {
			errs = append(errs, errors.New("mail.smtp_host is required (SMTP_SERVER)"))
		}
		if c.Mail.SMTPPort <= 0 || c.Mail.SMTPPort > 65535 {
			errs = append(errs, fmt.Errorf("mail.smtp_port %d is out of range (SMTP_PORT)", c.Mail.SMTPPort))
		}
		if c.Mail.Password == "" {
			errs = append(errs, errors.New("mail.password is required (SENDER_PASSWORD)"))
		}
	case TransportResend:
		if c.Mail.ResendAPIKey == "" {
			errs = append(errs, errors.New("mail.resend_api_key is required"))
		}
	default:
		errs = append(errs, fmt.Errorf("mail.transport %q is not supported", c.Mail.Transport))
	}

	if len(c.Newsletter.Topics) == 0 {
		errs = append(errs, errors.New("newsletter.topics must not be empty"))
	}
	if c.Newsletter.MaxArticles <= 0 {
		errs = append(errs, fmt.Errorf("newsletter.max_articles must be positive, got %d", c.Newsletter.MaxArticles))
	}

	return errors.Join(errs...)
}

func validAddress(key, value, legacy string) error {
	if value == "" {
		return fmt.Errorf("%s is required (%s)", key, legacy)
	}
	if _, err := mail.ParseAddress(value); err != nil {
		return fmt.Errorf("%s %q is not a valid address: %w", key, value, err)
	}
	return nil
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
