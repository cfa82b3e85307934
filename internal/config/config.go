// Package config defines all configuration structures for the vademecum
// answer service. No I/O or parsing logic lives here, only plain data types
// and validation.
package config

import (
	"fmt"
	"time"

	"github.com/mediclic/vademecum-ai/internal/infrastructure/monitoring/logging"
)

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// OpenSearchConfig holds document-store connection parameters.
type OpenSearchConfig struct {
	Addresses          []string      `mapstructure:"addresses"`
	User               string        `mapstructure:"user"`
	Password           string        `mapstructure:"password"`
	InsecureSkipVerify bool          `mapstructure:"insecure_skip_verify"`
	Index              string        `mapstructure:"index"`
	ScrollSize         int           `mapstructure:"scroll_size"`
	ScrollKeepAlive    time.Duration `mapstructure:"scroll_keep_alive"`
	SearchTimeout      time.Duration `mapstructure:"search_timeout"`
}

// RedisConfig holds session-store connection parameters.
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	SessionTTL   time.Duration `mapstructure:"session_ttl"`
}

// KafkaConfig holds the analytics event-producer parameters. An empty broker
// list disables event emission entirely.
type KafkaConfig struct {
	Brokers      []string      `mapstructure:"brokers"`
	Topic        string        `mapstructure:"topic"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// MinIOConfig holds the object-storage parameters used by the ingest command
// to pull vademecum dumps.
type MinIOConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

// LLMConfig holds the text-rewriting function parameters. An empty API key
// disables the rewriter; the composer then always uses its deterministic
// templates.
type LLMConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"`
	BaseURL     string        `mapstructure:"base_url"`
	Temperature float64       `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// AuthConfig holds HS256 token-issuance parameters.
type AuthConfig struct {
	Secret        string        `mapstructure:"secret"`
	AccessExpiry  time.Duration `mapstructure:"access_expiry"`
	RefreshExpiry time.Duration `mapstructure:"refresh_expiry"`
}

// EngineConfig holds answer-engine tunables that are deployment concerns
// rather than calibration constants (those live in internal/domain/match).
type EngineConfig struct {
	// DefaultTimezone selects the local hour for time-of-day greetings.
	DefaultTimezone string `mapstructure:"default_timezone"`

	// ExactFetchLimit bounds each exact name+section store pass.
	ExactFetchLimit int `mapstructure:"exact_fetch_limit"`

	// BroadFetchLimit bounds the broad metadata-first pass.
	BroadFetchLimit int `mapstructure:"broad_fetch_limit"`
}

// Config is the root configuration for every entry point.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	OpenSearch OpenSearchConfig `mapstructure:"opensearch"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Kafka      KafkaConfig      `mapstructure:"kafka"`
	MinIO      MinIOConfig      `mapstructure:"minio"`
	LLM        LLMConfig        `mapstructure:"llm"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Engine     EngineConfig     `mapstructure:"engine"`
	Log        logging.Config   `mapstructure:"log"`
}

// Validate checks cross-field consistency. Defaults are expected to have
// been applied first.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in (0, 65535], got %d", c.Server.Port)
	}
	if len(c.OpenSearch.Addresses) == 0 {
		return fmt.Errorf("opensearch.addresses must not be empty")
	}
	if c.OpenSearch.Index == "" {
		return fmt.Errorf("opensearch.index must not be empty")
	}
	if c.OpenSearch.ScrollSize <= 0 {
		return fmt.Errorf("opensearch.scroll_size must be positive")
	}
	if c.Auth.Secret == "" {
		return fmt.Errorf("auth.secret must not be empty")
	}
	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		return fmt.Errorf("kafka.topic required when brokers are configured")
	}
	if c.Engine.ExactFetchLimit <= 0 || c.Engine.BroadFetchLimit <= 0 {
		return fmt.Errorf("engine fetch limits must be positive")
	}
	return nil
}
