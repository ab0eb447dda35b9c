package config

import (
	"log"
	"os"
	"time"

	"github.com/code-100-precent/LingRx/pkg/logger"
	"github.com/code-100-precent/LingRx/pkg/utils"
	"github.com/spf13/cast"
)

// Config represents the process configuration
type Config struct {
	ServerName     string `env:"SERVER_NAME"`
	Addr           string `env:"ADDR"`
	Mode           string `env:"MODE"`
	APIPrefix      string `env:"API_PREFIX"`
	DBDriver       string `env:"DB_DRIVER"`
	DSN            string `env:"DSN"`
	Log            logger.LogConfig
	Runtime        RuntimeConfig
	Redis          RedisConfig
	MetricsEnabled bool   `env:"METRICS_ENABLED"`
	MetricsPath    string `env:"METRICS_PATH"`
}

// RuntimeConfig tunes the stream runtime
type RuntimeConfig struct {
	LoopQueueSize  int           `env:"LOOP_QUEUE_SIZE"`
	SSEHeartbeat   time.Duration `env:"SSE_HEARTBEAT"`
	TickInterval   time.Duration `env:"TICK_INTERVAL"`
	DebounceWindow time.Duration `env:"DEBOUNCE_WINDOW"`
	// ReportCron schedules the periodic readings report; "off" disables it
	ReportCron string `env:"REPORT_CRON"`
}

// RedisConfig configures the optional redis pub/sub source
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB"`
	Channel  string `env:"REDIS_CHANNEL"`
}

// GlobalConfig is the global configuration instance
var GlobalConfig *Config

// Load loads configuration from environment variables
func Load() error {
	env := os.Getenv("APP_ENV")
	if err := utils.LoadEnv(env); err != nil {
		log.Printf("Note: .env file not found or failed to load: %v (using default values)", err)
	}

	GlobalConfig = &Config{
		ServerName: getStringOrDefault("SERVER_NAME", "LingRx"),
		Addr:       getStringOrDefault("ADDR", ":7072"),
		Mode:       getStringOrDefault("MODE", "development"),
		APIPrefix:  getStringOrDefault("API_PREFIX", "/api"),
		DBDriver:   getStringOrDefault("DB_DRIVER", "sqlite"),
		DSN:        getStringOrDefault("DSN", "file::memory:"),
		Log: logger.LogConfig{
			Level:      getStringOrDefault("LOG_LEVEL", "info"),
			Filename:   getStringOrDefault("LOG_FILENAME", "./logs/app.log"),
			MaxSize:    getIntOrDefault("LOG_MAX_SIZE", 100),
			MaxAge:     getIntOrDefault("LOG_MAX_AGE", 30),
			MaxBackups: getIntOrDefault("LOG_MAX_BACKUPS", 5),
			Daily:      getBoolOrDefault("LOG_DAILY", true),
		},
		Runtime: RuntimeConfig{
			LoopQueueSize:  getIntOrDefault("LOOP_QUEUE_SIZE", 256),
			SSEHeartbeat:   getDurationOrDefault("SSE_HEARTBEAT", 15*time.Second),
			TickInterval:   getDurationOrDefault("TICK_INTERVAL", time.Second),
			DebounceWindow: getDurationOrDefault("DEBOUNCE_WINDOW", 300*time.Millisecond),
			ReportCron:     getStringOrDefault("REPORT_CRON", "*/5 * * * *"),
		},
		Redis: RedisConfig{
			Addr:     getStringOrDefault("REDIS_ADDR", ""),
			Password: getStringOrDefault("REDIS_PASSWORD", ""),
			DB:       cast.ToInt(utils.GetEnv("REDIS_DB")),
			Channel:  getStringOrDefault("REDIS_CHANNEL", "lingrx:readings"),
		},
		MetricsEnabled: getBoolOrDefault("METRICS_ENABLED", true),
		MetricsPath:    getStringOrDefault("METRICS_PATH", "/metrics"),
	}
	return nil
}

// IsProduction reports whether MODE is production
func (c *Config) IsProduction() bool {
	return c.Mode == "production" || c.Mode == "prod"
}

func getStringOrDefault(key, defaultValue string) string {
	value := utils.GetEnv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	value := utils.GetEnv(key)
	if value == "" {
		return defaultValue
	}
	b, err := cast.ToBoolE(value)
	if err != nil {
		return defaultValue
	}
	return b
}

func getIntOrDefault(key string, defaultValue int) int {
	value := int(utils.GetIntEnv(key))
	if value == 0 {
		return defaultValue
	}
	return value
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := utils.GetEnv(key)
	if value == "" {
		return defaultValue
	}
	d, err := cast.ToDurationE(value)
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}
