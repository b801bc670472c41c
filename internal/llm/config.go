package llm

import (
	"fmt"
	"os"
	"time"
)

// Config selects and configures the provider used for grading.
type Config struct {
	// Provider is "gemini", "openai", "anthropic" or "mock".
	Provider string

	Gemini    ProviderConfig
	OpenAI    ProviderConfig
	Anthropic ProviderConfig
	Retry     RetryConfig

	// Timeout bounds one Generate call including retries.
	Timeout time.Duration
}

// ProviderConfig holds the credentials and model of one provider.
type ProviderConfig struct {
	APIKey string
	Model  string

	// BaseURL overrides the API endpoint. Used for OpenAI-compatible
	// gateways and for tests.
	BaseURL string
}

// RetryConfig configures backoff for transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns Gemini with a short timeout. Recall grading is
// interactive, so retries are kept brief.
func DefaultConfig() Config {
	return Config{
		Provider:  "gemini",
		Gemini:    ProviderConfig{Model: "gemini-flash"},
		OpenAI:    ProviderConfig{Model: "gpt-4o-mini"},
		Anthropic: ProviderConfig{Model: "claude-haiku"},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 500 * time.Millisecond,
			MaxWait:     4 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 20 * time.Second,
	}
}

// ConfigFromEnv reads STUDYGUIDE_LLM_PROVIDER and the per-provider
// STUDYGUIDE_<NAME>_API_KEY / _MODEL / _BASE_URL variables.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	if p := os.Getenv("STUDYGUIDE_LLM_PROVIDER"); p != "" {
		cfg.Provider = p
	}
	readProviderEnv("GEMINI", &cfg.Gemini)
	readProviderEnv("OPENAI", &cfg.OpenAI)
	readProviderEnv("ANTHROPIC", &cfg.Anthropic)
	return cfg
}

func readProviderEnv(name string, pc *ProviderConfig) {
	if k := os.Getenv("STUDYGUIDE_" + name + "_API_KEY"); k != "" {
		pc.APIKey = k
	}
	if m := os.Getenv("STUDYGUIDE_" + name + "_MODEL"); m != "" {
		pc.Model = m
	}
	if u := os.Getenv("STUDYGUIDE_" + name + "_BASE_URL"); u != "" {
		pc.BaseURL = u
	}
}

// DiscoverConfig falls back to the vendors' own key variables, in the
// order GEMINI_API_KEY, OPENAI_API_KEY, ANTHROPIC_API_KEY. It returns false
// when none is set.
func DiscoverConfig() (Config, bool) {
	cfg := DefaultConfig()
	for _, c := range []struct {
		env      string
		provider string
		pc       *ProviderConfig
	}{
		{"GEMINI_API_KEY", "gemini", &cfg.Gemini},
		{"OPENAI_API_KEY", "openai", &cfg.OpenAI},
		{"ANTHROPIC_API_KEY", "anthropic", &cfg.Anthropic},
	} {
		if k := os.Getenv(c.env); k != "" {
			cfg.Provider = c.provider
			c.pc.APIKey = k
			return cfg, true
		}
	}
	return Config{}, false
}

// Resolve returns the explicit STUDYGUIDE_ configuration when it is valid,
// otherwise the discovered one. ok is false when no provider is usable.
func Resolve() (Config, bool) {
	if cfg := ConfigFromEnv(); cfg.Validate() == nil {
		return cfg, true
	}
	return DiscoverConfig()
}

// Validate checks that the selected provider has an API key.
func (c Config) Validate() error {
	var key string
	switch c.Provider {
	case "gemini":
		key = c.Gemini.APIKey
	case "openai":
		key = c.OpenAI.APIKey
	case "anthropic":
		key = c.Anthropic.APIKey
	case "mock":
		return nil
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if key == "" {
		return fmt.Errorf("an API key is required for the %s provider", c.Provider)
	}
	return nil
}
