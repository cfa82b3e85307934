package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

const envPrefix = "VADE"

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads configuration from the given file path, merges environment
// variables prefixed with VADE_ (e.g. VADE_SERVER_PORT overrides
// server.port), applies defaults, and validates the result.
//
// Supported formats: YAML, JSON, TOML (decided by file extension).
func Load(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
	}
	return finish(v)
}

// LoadFromEnv builds a configuration from environment variables and defaults
// alone. Useful for containerised deployments that ship no config file.
func LoadFromEnv() (*Config, error) {
	v := newViper()

	// AutomaticEnv only resolves keys viper already knows about, so register
	// every key from a fully defaulted config first.
	for key, val := range flatten("", structToMap(NewDefaultConfig())) {
		v.SetDefault(key, val)
	}
	return finish(v)
}

// Watch re-reads the config file on change and invokes onChange with the
// freshly loaded configuration. Invalid updates are reported to onError and
// the previous configuration stays in effect.
func Watch(path string, onChange func(*Config), onError func(error)) error {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("config: failed to read %s: %w", path, err)
	}

	v.OnConfigChange(func(fsnotify.Event) {
		cfg, err := finish(v)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		onChange(cfg)
	})
	v.WatchConfig()
	return nil
}

// MustLoad is Load that panics on failure. Intended for main() wiring where
// a broken configuration should abort startup immediately.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

func finish(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal: %w", err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: invalid configuration: %w", err)
	}
	return cfg, nil
}

func structToMap(c *Config) map[string]interface{} {
	return map[string]interface{}{
		"server": map[string]interface{}{
			"port":             c.Server.Port,
			"mode":             c.Server.Mode,
			"read_timeout":     c.Server.ReadTimeout,
			"write_timeout":    c.Server.WriteTimeout,
			"shutdown_timeout": c.Server.ShutdownTimeout,
		},
		"opensearch": map[string]interface{}{
			"addresses":            c.OpenSearch.Addresses,
			"user":                 c.OpenSearch.User,
			"password":             c.OpenSearch.Password,
			"insecure_skip_verify": c.OpenSearch.InsecureSkipVerify,
			"index":                c.OpenSearch.Index,
			"scroll_size":          c.OpenSearch.ScrollSize,
			"scroll_keep_alive":    c.OpenSearch.ScrollKeepAlive,
			"search_timeout":       c.OpenSearch.SearchTimeout,
		},
		"redis": map[string]interface{}{
			"addr":          c.Redis.Addr,
			"password":      c.Redis.Password,
			"db":            c.Redis.DB,
			"dial_timeout":  c.Redis.DialTimeout,
			"read_timeout":  c.Redis.ReadTimeout,
			"write_timeout": c.Redis.WriteTimeout,
			"session_ttl":   c.Redis.SessionTTL,
		},
		"kafka": map[string]interface{}{
			"brokers":       c.Kafka.Brokers,
			"topic":         c.Kafka.Topic,
			"write_timeout": c.Kafka.WriteTimeout,
		},
		"minio": map[string]interface{}{
			"endpoint":   c.MinIO.Endpoint,
			"access_key": c.MinIO.AccessKey,
			"secret_key": c.MinIO.SecretKey,
			"bucket":     c.MinIO.Bucket,
			"use_ssl":    c.MinIO.UseSSL,
		},
		"llm": map[string]interface{}{
			"api_key":     c.LLM.APIKey,
			"model":       c.LLM.Model,
			"base_url":    c.LLM.BaseURL,
			"temperature": c.LLM.Temperature,
			"max_tokens":  c.LLM.MaxTokens,
			"timeout":     c.LLM.Timeout,
		},
		"auth": map[string]interface{}{
			"secret":         c.Auth.Secret,
			"access_expiry":  c.Auth.AccessExpiry,
			"refresh_expiry": c.Auth.RefreshExpiry,
		},
		"engine": map[string]interface{}{
			"default_timezone":  c.Engine.DefaultTimezone,
			"exact_fetch_limit": c.Engine.ExactFetchLimit,
			"broad_fetch_limit": c.Engine.BroadFetchLimit,
		},
		"log": map[string]interface{}{
			"level":        c.Log.Level,
			"format":       c.Log.Format,
			"output_paths": c.Log.OutputPaths,
		},
	}
}

func flatten(prefix string, in map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{})
	for k, v := range in {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if nested, ok := v.(map[string]interface{}); ok {
			for nk, nv := range flatten(key, nested) {
				out[nk] = nv
			}
			continue
		}
		out[key] = v
	}
	return out
}
