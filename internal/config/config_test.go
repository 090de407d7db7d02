package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"GEMINI_API_KEY", "OPENAI_API_KEY", "DATABASE_URL"} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 4, cfg.Regeneration.MaxInFlight)
	assert.Equal(t, 90*time.Second, cfg.Regeneration.ItemTimeout)
	assert.Equal(t, 500*time.Millisecond, cfg.Regeneration.InitialBackoff)
	assert.Equal(t, 6, cfg.Enrichment.MaxQuestions)
	assert.Empty(t, cfg.Database.URL)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_YAMLFile(t *testing.T) {
	clearEnv(t)
	content := `
llm:
  provider: openai
  model-advanced: gpt-4.1
server:
  addr: ":9000"
  allowed-origins: ["https://app.example.com"]
regeneration:
  max-in-flight: 2
  item-timeout: 2m
log:
  json: true
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, []string{"https://app.example.com"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 2, cfg.Regeneration.MaxInFlight)
	assert.Equal(t, 2*time.Minute, cfg.Regeneration.ItemTimeout)
	assert.Equal(t, 3, cfg.Regeneration.MaxAttempts)
	assert.True(t, cfg.Log.JSON)

	client := cfg.LLM.ClientConfig()
	assert.Equal(t, llm.ProviderOpenAI, client.Provider)
	assert.Equal(t, "gpt-4.1", client.GetModel(llm.TierAdvanced))
	assert.Equal(t, "gpt-4o-mini", client.GetModel(llm.TierLite))
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("RESUME_TAILOR_SERVER_ADDR", ":7070")
	t.Setenv("RESUME_TAILOR_REGENERATION_MAX_IN_FLIGHT", "8")
	t.Setenv("GEMINI_API_KEY", "gemini-key")
	t.Setenv("OPENAI_API_KEY", "openai-key")
	t.Setenv("DATABASE_URL", "postgres://localhost/resumes")

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, 8, cfg.Regeneration.MaxInFlight)
	assert.Equal(t, "postgres://localhost/resumes", cfg.Database.URL)
	assert.Equal(t, "gemini-key", cfg.LLM.ProviderAPIKey())

	cfg.LLM.Provider = "openai"
	assert.Equal(t, "openai-key", cfg.LLM.ProviderAPIKey())

	cfg.LLM.APIKey = "explicit"
	assert.Equal(t, "explicit", cfg.LLM.ProviderAPIKey())
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config")
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0644))

	_, err := Load(viper.New(), path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		v := viper.New()
		SetDefaults(v)
		var cfg Config
		require.NoError(t, v.Unmarshal(&cfg))
		return &cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "unknown provider", mutate: func(c *Config) { c.LLM.Provider = "llama" }, wantErr: "unknown llm.provider"},
		{name: "temperature", mutate: func(c *Config) { c.LLM.Temperature = 3 }, wantErr: "temperature"},
		{name: "empty addr", mutate: func(c *Config) { c.Server.Addr = "" }, wantErr: "server.addr"},
		{name: "in flight", mutate: func(c *Config) { c.Regeneration.MaxInFlight = 0 }, wantErr: "max-in-flight"},
		{name: "attempts", mutate: func(c *Config) { c.Regeneration.MaxAttempts = 0 }, wantErr: "max-attempts"},
		{name: "timeout", mutate: func(c *Config) { c.Regeneration.ItemTimeout = -time.Second }, wantErr: "item-timeout"},
		{name: "backoff", mutate: func(c *Config) { c.Regeneration.MaxBackoff = time.Millisecond }, wantErr: "backoff"},
		{name: "questions", mutate: func(c *Config) { c.Enrichment.MaxQuestions = 0 }, wantErr: "max-questions"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
