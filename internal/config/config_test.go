package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsAreValid(t *testing.T) {
	cfg := NewDefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "vademecum", cfg.OpenSearch.Index)
	assert.Equal(t, 512, cfg.OpenSearch.ScrollSize)
	assert.Equal(t, 14*24*time.Hour, cfg.Redis.SessionTTL)
	assert.Equal(t, 0.2, cfg.LLM.Temperature)
	assert.Equal(t, 220, cfg.LLM.MaxTokens)
	assert.Equal(t, 60*time.Minute, cfg.Auth.AccessExpiry)
	assert.Equal(t, 256, cfg.Engine.ExactFetchLimit)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.Server.Port = -1 }},
		{"no addresses", func(c *Config) { c.OpenSearch.Addresses = nil }},
		{"no index", func(c *Config) { c.OpenSearch.Index = "" }},
		{"zero scroll size", func(c *Config) { c.OpenSearch.ScrollSize = 0 }},
		{"empty secret", func(c *Config) { c.Auth.Secret = "" }},
		{"brokers without topic", func(c *Config) {
			c.Kafka.Brokers = []string{"localhost:9092"}
			c.Kafka.Topic = ""
		}},
		{"zero fetch limit", func(c *Config) { c.Engine.ExactFetchLimit = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 9090
  mode: debug
opensearch:
  addresses: ["http://search:9200"]
  index: vademecum_test
auth:
  secret: test-secret
llm:
  model: gpt-4o
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.Mode)
	assert.Equal(t, []string{"http://search:9200"}, cfg.OpenSearch.Addresses)
	assert.Equal(t, "vademecum_test", cfg.OpenSearch.Index)
	assert.Equal(t, "test-secret", cfg.Auth.Secret)
	assert.Equal(t, "gpt-4o", cfg.LLM.Model)
	// Unset fields must still receive defaults.
	assert.Equal(t, 512, cfg.OpenSearch.ScrollSize)
	assert.Equal(t, 14*24*time.Hour, cfg.Redis.SessionTTL)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadFromEnvOverride(t *testing.T) {
	t.Setenv("VADE_SERVER_PORT", "7070")
	t.Setenv("VADE_OPENSEARCH_INDEX", "vademecum_env")
	t.Setenv("VADE_AUTH_SECRET", "env-secret")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "vademecum_env", cfg.OpenSearch.Index)
	assert.Equal(t, "env-secret", cfg.Auth.Secret)
}

func TestMustLoadPanics(t *testing.T) {
	assert.Panics(t, func() { MustLoad(filepath.Join(t.TempDir(), "absent.yaml")) })
}
