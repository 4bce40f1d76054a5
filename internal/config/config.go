// Package config builds the immutable runtime configuration once at startup.
//
// Precedence, lowest first: built-in defaults, optional YAML file,
// environment variables. Command-line flags are applied on top by main.
package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
	ProviderEcho   = "echo"
)

// Config is passed by value to the components that need it.
type Config struct {
	Addr      string `yaml:"addr"`
	StaticDir string `yaml:"static_dir"`

	LogLevel string `yaml:"log_level"`
	LogJSON  bool   `yaml:"log_json"`
	LogFile  string `yaml:"log_file"`

	Provider        string        `yaml:"provider"`
	Model           string        `yaml:"model"`
	BaseURL         string        `yaml:"base_url"`
	OllamaURL       string        `yaml:"ollama_url"`
	ProviderTimeout time.Duration `yaml:"provider_timeout"`

	// APIKey is only ever read from the environment or the parameter store.
	APIKey      string `yaml:"-"`
	APIKeyParam string `yaml:"api_key_param"`
}

func Defaults() Config {
	return Config{
		Addr:      "0.0.0.0:8000",
		StaticDir: "web/static",
		LogLevel:  "info",
		Provider:  ProviderOpenAI,
		OllamaURL: "http://localhost:11434",
	}
}

// Load applies the YAML file at path (if any) and then the environment.
func Load(path string) (Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.Addr = getEnv("ADDR", cfg.Addr)
	cfg.StaticDir = getEnv("STATIC_DIR", cfg.StaticDir)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogJSON = getEnvBool("LOG_JSON", cfg.LogJSON)
	cfg.LogFile = getEnv("LOG_FILE", cfg.LogFile)
	cfg.Provider = strings.ToLower(getEnv("VOICECHAT_PROVIDER", cfg.Provider))
	cfg.Model = getEnv("VOICECHAT_MODEL", cfg.Model)
	cfg.BaseURL = getEnv("VOICECHAT_BASE_URL", cfg.BaseURL)
	cfg.OllamaURL = getEnv("OLLAMA_BASE_URL", cfg.OllamaURL)
	cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	cfg.APIKeyParam = getEnv("OPENAI_API_KEY_PARAM", cfg.APIKeyParam)

	if v := os.Getenv("VOICECHAT_PROVIDER_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("VOICECHAT_PROVIDER_TIMEOUT: %w", err)
		}
		cfg.ProviderTimeout = d
	}

	return cfg, nil
}

// Validate checks structural settings only. A missing API key is not an
// error here; it surfaces on the first completion call instead.
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderOpenAI, ProviderOllama, ProviderEcho:
	default:
		return fmt.Errorf("unsupported provider %q", c.Provider)
	}
	if c.ProviderTimeout < 0 {
		return fmt.Errorf("provider timeout must not be negative, got %s", c.ProviderTimeout)
	}
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("listen address must not be empty")
	}
	return nil
}

// ModelName returns the configured model or the fixed default for the provider.
func (c Config) ModelName() string {
	if c.Model != "" {
		return c.Model
	}
	switch c.Provider {
	case ProviderOllama:
		return "llama3.2"
	case ProviderEcho:
		return "echo"
	default:
		return "gpt-3.5-turbo"
	}
}

// KeyFetcher is satisfied by *paramstore.Client.
type KeyFetcher interface {
	APIKey(ctx context.Context, name string) (string, error)
}

// WithStoredAPIKey fills APIKey from the parameter store when the environment
// left it empty. Lookup failures are logged and the config is returned as is.
func (c Config) WithStoredAPIKey(ctx context.Context, fetcher KeyFetcher, log *slog.Logger) Config {
	if c.APIKey != "" || c.APIKeyParam == "" || fetcher == nil {
		return c
	}
	key, err := fetcher.APIKey(ctx, c.APIKeyParam)
	if err != nil {
		log.Warn("api key lookup failed; completions will fail until configured", "param", c.APIKeyParam, "err", err)
		return c
	}
	c.APIKey = key
	return c
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	default:
		return def
	}
}
