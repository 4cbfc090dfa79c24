package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// DefaultEngineURL is the public Piston v2 endpoint.
const DefaultEngineURL = "https://emkc.org/api/v2/piston"

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr" validate:"required"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout" validate:"gt=0"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" validate:"gt=0"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level" validate:"oneof=debug info warn warning error"`

	// WebSocket
	MaxMessageBytes int64    `mapstructure:"max_message_bytes" yaml:"max_message_bytes" validate:"min=1024"`
	AllowedOrigins  []string `mapstructure:"allowed_origins" yaml:"allowed_origins" validate:"dive,required"`
	EventsPerMinute int      `mapstructure:"events_per_minute" yaml:"events_per_minute" validate:"gte=0"`

	// Rooms
	ChatHistoryLimit  int           `mapstructure:"chat_history_limit" yaml:"chat_history_limit" validate:"min=1"`
	RoomIdleTTL       time.Duration `mapstructure:"room_idle_ttl" yaml:"room_idle_ttl" validate:"gte=0"`
	RoomSweepInterval time.Duration `mapstructure:"room_sweep_interval" yaml:"room_sweep_interval" validate:"gt=0"`

	// Execution
	EngineURL             string        `mapstructure:"engine_url" yaml:"engine_url" validate:"required,url"`
	RuntimeCacheTTL       time.Duration `mapstructure:"runtime_cache_ttl" yaml:"runtime_cache_ttl" validate:"gt=0"`
	RuntimeRefreshTimeout time.Duration `mapstructure:"runtime_refresh_timeout" yaml:"runtime_refresh_timeout" validate:"gt=0"`
	ExecuteTimeout        time.Duration `mapstructure:"execute_timeout" yaml:"execute_timeout" validate:"gt=0"`
	AuditDBPath           string        `mapstructure:"audit_db_path" yaml:"audit_db_path"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:                  ":5050",
		ReadHeaderTimeout:     5 * time.Second,
		ShutdownTimeout:       5 * time.Second,
		LogLevel:              "info",
		MaxMessageBytes:       1 << 20,
		AllowedOrigins:        []string{"http://localhost:5173"},
		EventsPerMinute:       600,
		ChatHistoryLimit:      50,
		RoomIdleTTL:           30 * time.Minute,
		RoomSweepInterval:     time.Minute,
		EngineURL:             DefaultEngineURL,
		RuntimeCacheTTL:       600 * time.Second,
		RuntimeRefreshTimeout: 10 * time.Second,
		ExecuteTimeout:        25 * time.Second,
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
	if other.MaxMessageBytes != 0 {
		c.MaxMessageBytes = other.MaxMessageBytes
	}
	if len(other.AllowedOrigins) > 0 {
		c.AllowedOrigins = other.AllowedOrigins
	}
	if other.EventsPerMinute != 0 {
		c.EventsPerMinute = other.EventsPerMinute
	}
	if other.ChatHistoryLimit != 0 {
		c.ChatHistoryLimit = other.ChatHistoryLimit
	}
	if other.RoomIdleTTL != 0 {
		c.RoomIdleTTL = other.RoomIdleTTL
	}
	if other.RoomSweepInterval != 0 {
		c.RoomSweepInterval = other.RoomSweepInterval
	}
	if other.EngineURL != "" {
		c.EngineURL = other.EngineURL
	}
	if other.RuntimeCacheTTL != 0 {
		c.RuntimeCacheTTL = other.RuntimeCacheTTL
	}
	if other.RuntimeRefreshTimeout != 0 {
		c.RuntimeRefreshTimeout = other.RuntimeRefreshTimeout
	}
	if other.ExecuteTimeout != 0 {
		c.ExecuteTimeout = other.ExecuteTimeout
	}
	if other.AuditDBPath != "" {
		c.AuditDBPath = other.AuditDBPath
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
