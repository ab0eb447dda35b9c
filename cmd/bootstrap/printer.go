package bootstrap

import (
	"fmt"
	"os"
	"strings"

	"github.com/code-100-precent/LingRx/pkg/config"
	"github.com/code-100-precent/LingRx/pkg/logger"
	"go.uber.org/zap"
)

// LogConfigInfo prints the loaded configuration
func LogConfigInfo() {
	cfg := config.GlobalConfig
	logger.Info("system config load finished")
	logger.Info("base config",
		zap.String("server_name", cfg.ServerName),
		zap.String("mode", cfg.Mode),
		zap.String("addr", cfg.Addr),
		zap.String("api_prefix", cfg.APIPrefix),
		zap.String("db_driver", cfg.DBDriver),
	)
	logger.Info("runtime config",
		zap.Int("loop_queue_size", cfg.Runtime.LoopQueueSize),
		zap.Duration("sse_heartbeat", cfg.Runtime.SSEHeartbeat),
		zap.Duration("tick_interval", cfg.Runtime.TickInterval),
		zap.Duration("debounce_window", cfg.Runtime.DebounceWindow),
		zap.String("report_cron", cfg.Runtime.ReportCron),
	)
	logger.Info("redis config",
		zap.String("redis_addr", cfg.Redis.Addr),
		zap.Int("redis_db", cfg.Redis.DB),
		zap.String("redis_channel", cfg.Redis.Channel),
	)
	logger.Info("log config",
		zap.String("log_level", cfg.Log.Level),
		zap.String("log_filename", cfg.Log.Filename),
		zap.Int("log_max_size", cfg.Log.MaxSize),
		zap.Int("log_max_age", cfg.Log.MaxAge),
		zap.Int("log_max_backups", cfg.Log.MaxBackups),
	)
	logger.Info("metrics config",
		zap.Bool("metrics_enabled", cfg.MetricsEnabled),
		zap.String("metrics_path", cfg.MetricsPath),
	)
}

// PrintBannerFromFile prints a file line by line in rotating colors
func PrintBannerFromFile(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return err
	}

	colors := []string{
		"\x1b[38;5;39m",
		"\x1b[38;5;45m",
		"\x1b[38;5;51m",
		"\x1b[38;5;87m",
	}
	for i, line := range strings.Split(string(data), "\n") {
		fmt.Println(colors[i%len(colors)] + line + "\x1b[0m")
	}
	return nil
}
