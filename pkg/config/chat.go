package config

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ChatConfig holds the chat completion defaults and fallback rules.
type ChatConfig struct {
	DefaultModel     string              `yaml:"default_model,omitempty"`
	Temperature      float64             `yaml:"temperature,omitempty"`
	MaxTokens        int                 `yaml:"max_tokens,omitempty"`
	MaxContextTokens int                 `yaml:"max_context_tokens,omitempty"`
	CacheTTLMinutes  int                 `yaml:"cache_ttl_minutes,omitempty"`
	Fallbacks        map[string][]string `yaml:"fallbacks,omitempty"`
}

// LoadChatConfig reads chat configuration from a YAML file.
func LoadChatConfig(path string) (*ChatConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg ChatConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyChatDefaults(&cfg)
	return &cfg, nil
}

// DefaultChatConfig returns the default chat configuration.
func DefaultChatConfig() *ChatConfig {
	cfg := &ChatConfig{}
	applyChatDefaults(cfg)
	return cfg
}

func applyChatDefaults(cfg *ChatConfig) {
	if cfg == nil {
		return
	}
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = "claude-sonnet-4-20250514"
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.7
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 1024
	}
	if cfg.MaxContextTokens == 0 {
		cfg.MaxContextTokens = 800
	}
	if cfg.CacheTTLMinutes == 0 {
		cfg.CacheTTLMinutes = 5
	}
}

// defaultAlternates lists the preferred substitute per provider, used
// when no explicit fallback chain covers a model.
var defaultAlternates = map[string]string{
	"anthropic": "claude-sonnet-4-20250514",
	"openai":    "gpt-5.2-instant",
	"google":    "gemini-2.0-pro",
}

// crossProviderOrder fixes the order fallbacks cross provider
// boundaries in.
var crossProviderOrder = []string{"anthropic", "openai", "google"}

// FallbackChain returns the ordered list of models to attempt for the
// preferred model: the preferred model first, then its configured
// fallbacks, then one substitute per remaining provider. The result
// never repeats a model.
func (c *ChatConfig) FallbackChain(model string) []string {
	chain := []string{model}
	seen := map[string]bool{model: true}

	add := func(m string) {
		if m != "" && !seen[m] {
			seen[m] = true
			chain = append(chain, m)
		}
	}

	if c != nil {
		for _, m := range c.Fallbacks[model] {
			add(m)
		}
	}

	home := ModelProvider(model)
	for _, provider := range crossProviderOrder {
		if provider == home {
			continue
		}
		add(defaultAlternates[provider])
	}

	return chain
}

// SupportsTools reports whether a model family handles tool
// invocation. Models from unrecognized families are assumed not to.
func SupportsTools(model string) bool {
	return ModelProvider(model) != ""
}

// ModelProvider guesses the provider owning a model from its name.
// Unknown families return "".
func ModelProvider(model string) string {
	switch {
	case strings.HasPrefix(model, "claude"):
		return "anthropic"
	case strings.HasPrefix(model, "gpt"), strings.HasPrefix(model, "o1"), strings.HasPrefix(model, "o3"):
		return "openai"
	case strings.HasPrefix(model, "gemini"):
		return "google"
	default:
		return ""
	}
}
