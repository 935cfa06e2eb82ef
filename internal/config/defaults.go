package config

import (
	"time"

	"github.com/spf13/viper"
)

// Default values for configuration.
const (
	DefaultLogLevel = "info"

	DefaultServerPort              = 3000
	DefaultServerReadHeaderTimeout = 10 * time.Second
	DefaultServerShutdownTimeout   = 10 * time.Second

	DefaultGeminiTemperature  = float32(0.7)
	DefaultGeminiModelTimeout = 30 * time.Second
	DefaultBreakerFailures    = 5
	DefaultBreakerCooldown    = time.Minute
	DefaultSystemInstruction  = "Você é o Consultor Técnico Elite do ConstruFácil. Responda de forma curta, direta e técnica sobre engenharia civil. Use formatação bonita."

	DefaultChatHistoryLimit   = 100
	DefaultChatTTL            = 24 * time.Hour
	DefaultChatNickname       = "Anônimo"
	DefaultAvatarURLTemplate  = "https://api.dicebear.com/7.x/avataaars/svg?seed=%s"
	DefaultChatSendBuffer     = 256
	DefaultChatWriteWait      = 10 * time.Second
	DefaultChatPongWait       = 60 * time.Second
	DefaultChatMaxMessageSize = 8192

	DefaultDirectoryTTL = 30 * 24 * time.Hour

	// Both eviction passes run every 30 minutes.
	DefaultEvictionSchedule = "*/30 * * * *"

	DefaultSQLMaintenanceSchedule = "0 4 * * *"
)

// Task names known to the scheduler.
const (
	TaskChatEviction      = "chat_eviction"
	TaskDirectoryEviction = "directory_eviction"
	TaskSQLMaintenance    = "sql_maintenance"
)

// KnownTasks lists every task name the scheduler accepts.
var KnownTasks = []string{TaskChatEviction, TaskDirectoryEviction, TaskSQLMaintenance}

// DefaultGeminiModels is ordered cheapest/fastest first, most capable last.
var DefaultGeminiModels = []string{
	"gemini-2.5-flash-lite",
	"gemini-2.5-flash",
	"gemini-2.5-pro",
}

// DefaultAllowedOrigins permits any origin, as the mobile client is served
// from arbitrary hosts.
var DefaultAllowedOrigins = []string{"*"}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", DefaultLogLevel)
	v.SetDefault("logger.json", false)

	v.SetDefault("server.port", DefaultServerPort)
	v.SetDefault("server.allowed_origins", DefaultAllowedOrigins)
	v.SetDefault("server.read_header_timeout", DefaultServerReadHeaderTimeout)
	v.SetDefault("server.shutdown_timeout", DefaultServerShutdownTimeout)

	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.models", DefaultGeminiModels)
	v.SetDefault("gemini.system_instruction", DefaultSystemInstruction)
	v.SetDefault("gemini.temperature", DefaultGeminiTemperature)
	v.SetDefault("gemini.model_timeout", DefaultGeminiModelTimeout)
	v.SetDefault("gemini.breaker_failures", DefaultBreakerFailures)
	v.SetDefault("gemini.breaker_cooldown", DefaultBreakerCooldown)

	v.SetDefault("chat.history_limit", DefaultChatHistoryLimit)
	v.SetDefault("chat.ttl", DefaultChatTTL)
	v.SetDefault("chat.default_nickname", DefaultChatNickname)
	v.SetDefault("chat.avatar_url_template", DefaultAvatarURLTemplate)
	v.SetDefault("chat.send_buffer", DefaultChatSendBuffer)
	v.SetDefault("chat.write_wait", DefaultChatWriteWait)
	v.SetDefault("chat.pong_wait", DefaultChatPongWait)
	v.SetDefault("chat.max_message_size", DefaultChatMaxMessageSize)

	v.SetDefault("directory.ttl", DefaultDirectoryTTL)

	v.SetDefault("database.path", "")

	v.SetDefault("scheduler.tasks", map[string]any{
		TaskChatEviction:      map[string]any{"enabled": true, "schedule": DefaultEvictionSchedule},
		TaskDirectoryEviction: map[string]any{"enabled": true, "schedule": DefaultEvictionSchedule},
		TaskSQLMaintenance:    map[string]any{"enabled": false, "schedule": DefaultSQLMaintenanceSchedule},
	})
}
