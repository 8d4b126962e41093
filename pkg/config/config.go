package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	AnthropicAPIKey string
	OpenAIAPIKey    string
	GoogleAPIKey    string
	DatabasePath    string
	ChatConfig      *ChatConfig
	ConfigDir       string
}

// FileConfig represents the structure of ~/.agentgate/config.yaml
type FileConfig struct {
	APIKeys  APIKeysConfig  `yaml:"api_keys"`
	Database DatabaseConfig `yaml:"database"`
}

// APIKeysConfig holds API key configuration from file.
type APIKeysConfig struct {
	Anthropic string `yaml:"anthropic"`
	OpenAI    string `yaml:"openai"`
	Google    string `yaml:"google"`
}

// DatabaseConfig holds storage configuration from file.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// Load reads configuration from config files and environment variables.
// Environment variables take precedence over file configuration.
func Load() (*Config, error) {
	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}

	// Load file config first
	fileConfig := loadFileConfig(filepath.Join(configDir, "config.yaml"))

	// Build config with env vars taking precedence over file
	cfg := &Config{
		AnthropicAPIKey: getEnvOrDefault("ANTHROPIC_API_KEY", fileConfig.APIKeys.Anthropic),
		OpenAIAPIKey:    getEnvOrDefault("OPENAI_API_KEY", fileConfig.APIKeys.OpenAI),
		GoogleAPIKey:    getEnvOrDefault("GOOGLE_API_KEY", fileConfig.APIKeys.Google),
		DatabasePath:    getEnvOrDefault("AGENTGATE_DB", fileConfig.Database.Path),
		ConfigDir:       configDir,
	}
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = filepath.Join(configDir, "agentgate.db")
	}

	// Load chat config
	chatPath := filepath.Join(configDir, "chat.yaml")
	if _, err := os.Stat(chatPath); err == nil {
		chat, err := LoadChatConfig(chatPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load chat config: %w", err)
		}
		cfg.ChatConfig = chat
	} else {
		cfg.ChatConfig = DefaultChatConfig()
	}

	return cfg, nil
}

// LoadWithChatFile loads config with a specific chat config file.
func LoadWithChatFile(chatPath string) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	chat, err := LoadChatConfig(chatPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load chat config from %s: %w", chatPath, err)
	}
	cfg.ChatConfig = chat

	return cfg, nil
}

// HasProvider returns true if the API key for the given provider is configured.
func (c *Config) HasProvider(name string) bool {
	switch name {
	case "anthropic":
		return c.AnthropicAPIKey != ""
	case "openai":
		return c.OpenAIAPIKey != ""
	case "google":
		return c.GoogleAPIKey != ""
	default:
		return false
	}
}

// loadFileConfig reads the config file, returning empty config if not found.
func loadFileConfig(path string) *FileConfig {
	cfg := &FileConfig{}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg // Return empty config if file doesn't exist
	}

	_ = yaml.Unmarshal(data, cfg) // Ignore parse errors, use defaults
	return cfg
}

// getEnvOrDefault returns the environment variable value if set,
// otherwise returns the default value.
func getEnvOrDefault(envVar, defaultValue string) string {
	if val := os.Getenv(envVar); val != "" {
		return val
	}
	return defaultValue
}

func getConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	configDir := filepath.Join(home, ".agentgate")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", err
	}
	return configDir, nil
}
