package config

import (
	"os"

	"github.com/seenimoa/newsbrief/pkg/utils"
)

// APIKeySource represents where a credential comes from.
type APIKeySource string

const (
	KeySourceEnv    APIKeySource = "env"
	KeySourceConfig APIKeySource = "config"
	KeySourceNone   APIKeySource = "none"
)

// KeyStatus represents the status of a credential.
type KeyStatus struct {
	Name   string       `json:"name"`
	Source APIKeySource `json:"source"`
	IsSet  bool         `json:"is_set"`
	Masked string       `json:"masked,omitempty"` // e.g., "sk-...abc"
}

// CheckAPIKeys returns the status of every credential newsbrief can use.
func CheckAPIKeys(cfg *Config) []KeyStatus {
	return []KeyStatus{
		checkKey("News API Key", cfg.News.APIKey, "news.api_key"),
		checkKey("OpenAI API Key", cfg.LLM.OpenAIKey, "llm.openai_key"),
		checkKey("Gemini API Key", cfg.LLM.GeminiKey, "llm.gemini_key"),
		checkKey("Anthropic API Key", cfg.LLM.AnthropicKey, "llm.anthropic_key"),
		checkKey("SMTP Password", cfg.Mail.Password, "mail.password"),
		checkKey("Resend API Key", cfg.Mail.ResendAPIKey, "mail.resend_api_key"),
		checkKey("Sentry DSN", cfg.Sentry.DSN, "sentry.dsn"),
	}
}

// checkKey checks if a key is set and where it came from.
func checkKey(name, value, key string) KeyStatus {
	status := KeyStatus{
		Name:  name,
		IsSet: value != "",
	}

	if value == "" {
		status.Source = KeySourceNone
		return status
	}

	status.Source = KeySourceConfig
	if os.Getenv(envName(key)) != "" {
		status.Source = KeySourceEnv
	} else if legacy, ok := legacyEnv[key]; ok && os.Getenv(legacy) != "" {
		status.Source = KeySourceEnv
	}
	status.Masked = utils.MaskSecret(value)

	return status
}
