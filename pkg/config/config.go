package config

// Relay definition relay_service YAML structure
type Relay struct {
	Port string `mapstructure:"port"`

	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	History   HistoryConfig   `mapstructure:"history"`
	EventLog  EventLogConfig  `mapstructure:"event_log"`
	Redis     RedisConfig     `mapstructure:"redis"`
}

// RateLimitConfig sliding window admission control setting
type RateLimitConfig struct {
	WindowMs int `mapstructure:"window_ms"`
	Max      int `mapstructure:"max"`
}

// HistoryConfig per-room message retention setting
type HistoryConfig struct {
	MaxPerRoom int `mapstructure:"max_per_room"`
}

// EventLogConfig bounded event log setting
type EventLogConfig struct {
	MaxEntries int `mapstructure:"max_entries"`
}

// RedisConfig optional cross-instance fan-out bridge setting
type RedisConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
	DB      int    `mapstructure:"redis_db"`
	Channel string `mapstructure:"channel"`
}
