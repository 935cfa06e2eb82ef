package config

import "time"

// LoggerConfig controls the slog handler.
type LoggerConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Port              int           `mapstructure:"port"                validate:"required,min=1,max=65535"`
	AllowedOrigins    []string      `mapstructure:"allowed_origins"     validate:"required,min=1,dive,required"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" validate:"min=1s"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"    validate:"min=1s,max=5m"`
}

// GeminiConfig configures the completion gateway. Models are tried in order.
type GeminiConfig struct {
	APIKey            string        `mapstructure:"api_key"            validate:"required"`
	Models            []string      `mapstructure:"models"             validate:"required,min=1,dive,required"`
	SystemInstruction string        `mapstructure:"system_instruction" validate:"required"`
	Temperature       float32       `mapstructure:"temperature"        validate:"min=0,max=2"`
	ModelTimeout      time.Duration `mapstructure:"model_timeout"      validate:"min=1s,max=10m"`
	// BreakerFailures consecutive failures open a model's breaker. Zero
	// disables breaking.
	BreakerFailures   int           `mapstructure:"breaker_failures"   validate:"min=0"`
	BreakerCooldown   time.Duration `mapstructure:"breaker_cooldown"   validate:"min=0"`
}

// ChatConfig configures the chat history store and the realtime channel.
type ChatConfig struct {
	HistoryLimit      int           `mapstructure:"history_limit"       validate:"min=1,max=10000"`
	TTL               time.Duration `mapstructure:"ttl"                 validate:"min=1m"`
	DefaultNickname   string        `mapstructure:"default_nickname"    validate:"required"`
	AvatarURLTemplate string        `mapstructure:"avatar_url_template" validate:"required,contains=%s"`
	SendBuffer        int           `mapstructure:"send_buffer"         validate:"min=1"`
	WriteWait         time.Duration `mapstructure:"write_wait"          validate:"min=1s"`
	PongWait          time.Duration `mapstructure:"pong_wait"           validate:"min=1s"`
	MaxMessageSize    int64         `mapstructure:"max_message_size"    validate:"min=512"`
}

// PingInterval is how often the server pings a websocket client. It must be
// shorter than PongWait.
func (c ChatConfig) PingInterval() time.Duration {
	return c.PongWait * 9 / 10
}

// DirectoryConfig configures the professional directory.
type DirectoryConfig struct {
	TTL time.Duration `mapstructure:"ttl" validate:"min=1m"`
}

// DatabaseConfig selects the directory backend. An empty Path keeps the
// directory in memory.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// SchedulerConfig lists the periodic tasks by name.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks" validate:"dive"`
}

// TaskConfig is a single scheduled task entry.
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule" validate:"required_if=Enabled true"`
}
