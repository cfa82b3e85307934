package config

import "time"

// ApplyDefaults fills zero-valued fields with sensible production defaults.
// Called by the loader after unmarshalling so a minimal config file (or none
// at all, with env overrides) still yields a runnable configuration.
func (c *Config) ApplyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.Mode == "" {
		c.Server.Mode = "release"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}

	if len(c.OpenSearch.Addresses) == 0 {
		c.OpenSearch.Addresses = []string{"http://localhost:9200"}
	}
	if c.OpenSearch.Index == "" {
		c.OpenSearch.Index = "vademecum"
	}
	if c.OpenSearch.ScrollSize == 0 {
		c.OpenSearch.ScrollSize = 512
	}
	if c.OpenSearch.ScrollKeepAlive == 0 {
		c.OpenSearch.ScrollKeepAlive = 2 * time.Minute
	}
	if c.OpenSearch.SearchTimeout == 0 {
		c.OpenSearch.SearchTimeout = 10 * time.Second
	}

	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}
	if c.Redis.DialTimeout == 0 {
		c.Redis.DialTimeout = 5 * time.Second
	}
	if c.Redis.ReadTimeout == 0 {
		c.Redis.ReadTimeout = 3 * time.Second
	}
	if c.Redis.WriteTimeout == 0 {
		c.Redis.WriteTimeout = 3 * time.Second
	}
	if c.Redis.SessionTTL == 0 {
		c.Redis.SessionTTL = 14 * 24 * time.Hour
	}

	if c.Kafka.Topic == "" {
		c.Kafka.Topic = "vademecum.resolutions"
	}
	if c.Kafka.WriteTimeout == 0 {
		c.Kafka.WriteTimeout = 5 * time.Second
	}

	if c.MinIO.Bucket == "" {
		c.MinIO.Bucket = "vademecum-dumps"
	}

	if c.LLM.Model == "" {
		c.LLM.Model = "gpt-4o-mini"
	}
	if c.LLM.Temperature == 0 {
		c.LLM.Temperature = 0.2
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = 220
	}
	if c.LLM.Timeout == 0 {
		c.LLM.Timeout = 12 * time.Second
	}

	if c.Auth.Secret == "" {
		c.Auth.Secret = "change-me"
	}
	if c.Auth.AccessExpiry == 0 {
		c.Auth.AccessExpiry = 60 * time.Minute
	}
	if c.Auth.RefreshExpiry == 0 {
		c.Auth.RefreshExpiry = 15 * 24 * time.Hour
	}

	if c.Engine.DefaultTimezone == "" {
		c.Engine.DefaultTimezone = "America/Santiago"
	}
	if c.Engine.ExactFetchLimit == 0 {
		c.Engine.ExactFetchLimit = 256
	}
	if c.Engine.BroadFetchLimit == 0 {
		c.Engine.BroadFetchLimit = 512
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if len(c.Log.OutputPaths) == 0 {
		c.Log.OutputPaths = []string{"stdout"}
	}
}

// NewDefaultConfig returns a Config with every default applied. Used by tests
// and by commands that run without a config file.
func NewDefaultConfig() *Config {
	c := &Config{}
	c.ApplyDefaults()
	return c
}
