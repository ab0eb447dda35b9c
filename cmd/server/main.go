package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/code-100-precent/LingRx/cmd/bootstrap"
	"github.com/code-100-precent/LingRx/internal/handlers"
	"github.com/code-100-precent/LingRx/pkg/config"
	"github.com/code-100-precent/LingRx/pkg/logger"
	"github.com/code-100-precent/LingRx/pkg/metrics"
	"github.com/code-100-precent/LingRx/pkg/middleware"
	"github.com/code-100-precent/LingRx/pkg/reactive"
	"github.com/code-100-precent/LingRx/pkg/scheduler"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	// 1. Parse command line parameters
	mode := flag.String("mode", "", "running environment (development, test, production)")
	addr := flag.String("addr", "", "HTTP serve address, overrides ADDR")
	dbDriver := flag.String("db-driver", "", "database driver (sqlite, mysql, pg), overrides DB_DRIVER")
	dsn := flag.String("dsn", "", "database source name, overrides DSN")
	initSQL := flag.String("init-sql", "", "path to database init .sql script (optional)")
	banner := flag.String("banner", "banner.txt", "banner file printed at startup")
	flag.Parse()

	if err := bootstrap.PrintBannerFromFile(*banner); err != nil && !errors.Is(err, os.ErrNotExist) {
		panic("print banner: " + err.Error())
	}

	// 2. Load configuration
	if *mode != "" {
		os.Setenv("APP_ENV", *mode)
	}
	if err := config.Load(); err != nil {
		panic("config load failed: " + err.Error())
	}
	cfg := config.GlobalConfig
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *dbDriver != "" {
		cfg.DBDriver = *dbDriver
	}
	if *dsn != "" {
		cfg.DSN = *dsn
	}

	// 3. Logger
	if err := logger.Init(&cfg.Log, cfg.Mode); err != nil {
		panic(err)
	}
	defer logger.Sync()
	bootstrap.LogConfigInfo()

	// 4. Scheduler: every pipeline in the process runs on this loop
	loop := scheduler.NewLoop(cfg.Runtime.LoopQueueSize)
	defer loop.Close()
	scheduler.SetDefault(loop)

	// 5. Database
	db, err := bootstrap.SetupDatabase(os.Stdout, &bootstrap.Options{
		InitSQLPath: *initSQL,
		AutoMigrate: true,
		SeedNonProd: true,
	})
	if err != nil {
		logger.Error("database setup failed", zap.Error(err))
		return
	}

	// 6. Optional redis fan-out
	rdb := connectRedis(cfg.Redis)
	if rdb != nil {
		defer rdb.Close()
	}

	// 7. Metrics
	var recorder reactive.Recorder
	if cfg.MetricsEnabled {
		m, err := metrics.NewStreamMetrics(prometheus.DefaultRegisterer)
		if err != nil {
			logger.Error("metrics registration failed", zap.Error(err))
			return
		}
		recorder = m
	}

	// 8. Routes
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	requests := reactive.NewEmitter[reactive.RequestEvent]()
	r := gin.New()
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(
		middleware.RequestID(),
		middleware.Recovery(logger.Lg),
		middleware.Logger(logger.Lg, cfg.MetricsPath, "/health"),
		middleware.Cors(),
		reactive.RequestEvents(requests),
	)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "pending_tasks": loop.Len()})
	})
	if cfg.MetricsEnabled {
		r.GET(cfg.MetricsPath, gin.WrapH(promhttp.Handler()))
	}

	h := handlers.NewHandlers(db, handlers.Options{
		Scheduler:      loop,
		Redis:          rdb,
		RedisChannel:   cfg.Redis.Channel,
		Recorder:       recorder,
		Requests:       requests,
		SSEHeartbeat:   cfg.Runtime.SSEHeartbeat,
		TickInterval:   cfg.Runtime.TickInterval,
		DebounceWindow: cfg.Runtime.DebounceWindow,
	})
	h.Register(r, cfg.APIPrefix)

	// 9. Periodic report
	var reportSub *reactive.Subscription
	if cfg.Runtime.ReportCron != "off" {
		report := h.Report(cfg.Runtime.ReportCron)
		err := loop.Do(func() {
			reportSub = report.Subscribe(reactive.Observer[handlers.ReadingReport]{
				Next: func(rep handlers.ReadingReport) {
					logger.Info("readings report",
						zap.Time("at", rep.At),
						zap.Int64("readings", rep.Readings),
						zap.Int64("sensors", rep.Sensors),
					)
				},
				Error: func(err error) {
					logger.Error("readings report stopped", zap.Error(err))
				},
			})
		})
		if err != nil {
			logger.Error("readings report not started", zap.Error(err))
		}
	}

	// 10. Serve until interrupted. WriteTimeout stays 0 so SSE streams are not cut.
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server run failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP server shutdown failed", zap.Error(err))
	}
	if reportSub != nil {
		_ = loop.Do(reportSub.Unsubscribe)
	}
}

// connectRedis returns a client when REDIS_ADDR is set and reachable
func connectRedis(cfg config.RedisConfig) *redis.Client {
	if cfg.Addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unreachable, live readings stay in-process",
			zap.String("addr", cfg.Addr), zap.Error(err))
		_ = client.Close()
		return nil
	}
	logger.Info("redis connected", zap.String("addr", cfg.Addr), zap.String("channel", cfg.Channel))
	return client
}
