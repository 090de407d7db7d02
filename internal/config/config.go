// Package config loads service and CLI configuration from a YAML file,
// environment variables and defaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. RESUME_TAILOR_SERVER_ADDR
const EnvPrefix = "RESUME_TAILOR"

// Config is the full application configuration
type Config struct {
	LLM          LLMConfig          `mapstructure:"llm"`
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Regeneration RegenerationConfig `mapstructure:"regeneration"`
	Enrichment   EnrichmentConfig   `mapstructure:"enrichment"`
	Log          LogConfig          `mapstructure:"log"`
}

// LLMConfig selects the provider and its models
type LLMConfig struct {
	Provider      string  `mapstructure:"provider"`
	APIKey        string  `mapstructure:"api-key"`
	GeminiAPIKey  string  `mapstructure:"gemini-api-key"`
	OpenAIAPIKey  string  `mapstructure:"openai-api-key"`
	ModelLite     string  `mapstructure:"model-lite"`
	ModelStandard string  `mapstructure:"model-standard"`
	ModelAdvanced string  `mapstructure:"model-advanced"`
	Temperature   float32 `mapstructure:"temperature"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	AllowedOrigins  []string      `mapstructure:"allowed-origins"`
	ReadTimeout     time.Duration `mapstructure:"read-timeout"`
	WriteTimeout    time.Duration `mapstructure:"write-timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown-timeout"`
}

// DatabaseConfig configures persistence. An empty URL keeps everything in memory.
type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

// RegenerationConfig tunes the regeneration fan-out
type RegenerationConfig struct {
	MaxInFlight    int           `mapstructure:"max-in-flight"`
	ItemTimeout    time.Duration `mapstructure:"item-timeout"`
	MaxAttempts    int           `mapstructure:"max-attempts"`
	InitialBackoff time.Duration `mapstructure:"initial-backoff"`
	MaxBackoff     time.Duration `mapstructure:"max-backoff"`
	OutputLanguage string        `mapstructure:"output-language"`
}

// EnrichmentConfig tunes weakness analysis
type EnrichmentConfig struct {
	MaxQuestions int `mapstructure:"max-questions"`
}

// LogConfig selects the logger format
type LogConfig struct {
	JSON  bool `mapstructure:"json"`
	Debug bool `mapstructure:"debug"`
}

// SetDefaults registers every key with its default so environment
// overrides apply even when no file is present
func SetDefaults(v *viper.Viper) {
	v.SetDefault("llm.provider", string(llm.ProviderGemini))
	v.SetDefault("llm.api-key", "")
	v.SetDefault("llm.gemini-api-key", "")
	v.SetDefault("llm.openai-api-key", "")
	v.SetDefault("llm.model-lite", "")
	v.SetDefault("llm.model-standard", "")
	v.SetDefault("llm.model-advanced", "")
	v.SetDefault("llm.temperature", 0.1)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.allowed-origins", []string{"http://localhost:3000"})
	v.SetDefault("server.read-timeout", "30s")
	v.SetDefault("server.write-timeout", "5m")
	v.SetDefault("server.shutdown-timeout", "15s")

	v.SetDefault("database.url", "")

	v.SetDefault("regeneration.max-in-flight", 4)
	v.SetDefault("regeneration.item-timeout", "90s")
	v.SetDefault("regeneration.max-attempts", 3)
	v.SetDefault("regeneration.initial-backoff", "500ms")
	v.SetDefault("regeneration.max-backoff", "8s")
	v.SetDefault("regeneration.output-language", "English")

	v.SetDefault("enrichment.max-questions", 6)

	v.SetDefault("log.json", false)
	v.SetDefault("log.debug", false)
}

// Load reads configuration into v. path may be empty, in which case
// resume-tailor.yaml in the working directory is used if it exists.
func Load(v *viper.Viper, path string) (*Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	bindings := map[string][]string{
		"llm.gemini-api-key": {EnvPrefix + "_LLM_GEMINI_API_KEY", "GEMINI_API_KEY"},
		"llm.openai-api-key": {EnvPrefix + "_LLM_OPENAI_API_KEY", "OPENAI_API_KEY"},
		"database.url":       {EnvPrefix + "_DATABASE_URL", "DATABASE_URL"},
	}
	for key, envs := range bindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("binding %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("resume-tailor")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return &cfg, nil
}

// Validate checks value ranges. A missing API key is not an error here:
// the diff endpoints work without a provider.
func (c *Config) Validate() error {
	if llm.DefaultConfigFor(llm.Provider(c.LLM.Provider)) == nil {
		return fmt.Errorf("config error: unknown llm.provider %q", c.LLM.Provider)
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("config error: 'llm.temperature' must be between 0 and 2")
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("config error: 'server.addr' is required")
	}
	if c.Regeneration.MaxInFlight < 1 {
		return fmt.Errorf("config error: 'regeneration.max-in-flight' must be at least 1")
	}
	if c.Regeneration.MaxAttempts < 1 {
		return fmt.Errorf("config error: 'regeneration.max-attempts' must be at least 1")
	}
	if c.Regeneration.ItemTimeout < 0 {
		return fmt.Errorf("config error: 'regeneration.item-timeout' must be non-negative")
	}
	if c.Regeneration.InitialBackoff <= 0 || c.Regeneration.MaxBackoff < c.Regeneration.InitialBackoff {
		return fmt.Errorf("config error: backoff must be positive with max-backoff >= initial-backoff")
	}
	if c.Enrichment.MaxQuestions < 1 {
		return fmt.Errorf("config error: 'enrichment.max-questions' must be at least 1")
	}
	return nil
}

// ProviderAPIKey returns the explicit key, else the provider's own variable
func (c LLMConfig) ProviderAPIKey() string {
	if c.APIKey != "" {
		return c.APIKey
	}
	switch llm.Provider(c.Provider) {
	case llm.ProviderOpenAI:
		return c.OpenAIAPIKey
	default:
		return c.GeminiAPIKey
	}
}

// ClientConfig returns the provider defaults with any configured model overrides
func (c LLMConfig) ClientConfig() *llm.Config {
	cfg := llm.DefaultConfigFor(llm.Provider(c.Provider))
	if cfg == nil {
		cfg = llm.DefaultConfig()
	}
	cfg = cfg.WithModels(map[llm.ModelTier]string{
		llm.TierLite:     c.ModelLite,
		llm.TierStandard: c.ModelStandard,
		llm.TierAdvanced: c.ModelAdvanced,
	})
	cfg.Temperature = c.Temperature
	return cfg
}
