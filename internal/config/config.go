package config

import "time"

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`
	LogFormat         string        `mapstructure:"log_format" yaml:"log_format"`

	DatabasePath  string `mapstructure:"database_path" yaml:"database_path"`
	UploadDir     string `mapstructure:"upload_dir" yaml:"upload_dir"`
	UploadBaseURL string `mapstructure:"upload_base_url" yaml:"upload_base_url"`
	// MaxUploadBytes caps a single image upload.
	MaxUploadBytes int64 `mapstructure:"max_upload_bytes" yaml:"max_upload_bytes"`

	// MaxMessageBytes caps a single inbound websocket frame.
	MaxMessageBytes    int64 `mapstructure:"max_message_bytes" yaml:"max_message_bytes"`
	ClientBuffer       int   `mapstructure:"client_buffer" yaml:"client_buffer"`
	RateLimitPerMinute int   `mapstructure:"rate_limit_per_minute" yaml:"rate_limit_per_minute"`

	// RedisURL enables the post cache when set, e.g. redis://localhost:6379/0.
	RedisURL     string        `mapstructure:"redis_url" yaml:"redis_url"`
	PostCacheTTL time.Duration `mapstructure:"post_cache_ttl" yaml:"post_cache_ttl"`

	MetricsEnabled bool `mapstructure:"metrics_enabled" yaml:"metrics_enabled"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:               ":8080",
		ReadHeaderTimeout:  5 * time.Second,
		ShutdownTimeout:    5 * time.Second,
		LogLevel:           "info",
		LogFormat:          "console",
		DatabasePath:       "geodrop.db",
		UploadDir:          "uploads",
		UploadBaseURL:      "/uploads",
		MaxUploadBytes:     10 << 20,
		MaxMessageBytes:    64 << 10,
		ClientBuffer:       32,
		RateLimitPerMinute: 600,
		PostCacheTTL:       5 * time.Minute,
		MetricsEnabled:     true,
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.Addr != "" {
		c.Addr = other.Addr
	}
	if other.ReadHeaderTimeout != 0 {
		c.ReadHeaderTimeout = other.ReadHeaderTimeout
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.LogFormat != "" {
		c.LogFormat = other.LogFormat
	}
	if other.DatabasePath != "" {
		c.DatabasePath = other.DatabasePath
	}
	if other.UploadDir != "" {
		c.UploadDir = other.UploadDir
	}
	if other.UploadBaseURL != "" {
		c.UploadBaseURL = other.UploadBaseURL
	}
	if other.MaxUploadBytes != 0 {
		c.MaxUploadBytes = other.MaxUploadBytes
	}
	if other.MaxMessageBytes != 0 {
		c.MaxMessageBytes = other.MaxMessageBytes
	}
	if other.ClientBuffer != 0 {
		c.ClientBuffer = other.ClientBuffer
	}
	if other.RateLimitPerMinute != 0 {
		c.RateLimitPerMinute = other.RateLimitPerMinute
	}
	if other.RedisURL != "" {
		c.RedisURL = other.RedisURL
	}
	if other.PostCacheTTL != 0 {
		c.PostCacheTTL = other.PostCacheTTL
	}
}
