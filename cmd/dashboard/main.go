package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"streamdash/internal/core/domain"
	"streamdash/internal/core/ports"
	"streamdash/internal/core/services"
	httphandlers "streamdash/internal/handlers/http"
	"streamdash/internal/infrastructure/middleware"
	"streamdash/internal/infrastructure/monitoring"
	"streamdash/internal/infrastructure/realtime"
	repositories "streamdash/internal/infrastructure/repositories"
	"streamdash/pkg/config"
	"streamdash/pkg/logger"
	"streamdash/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	startTime := time.Now()

	configPaths := []string{
		"configs/config.yaml",
		"./configs/config.yaml",
		"config.yaml",
	}

	var cfg *config.Config
	var err error
	for _, path := range configPaths {
		cfg, err = config.Load(path)
		if err == nil {
			break
		}
	}
	if err != nil {
		cfg = config.DefaultConfig()
	}

	zapLogger := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLogger.Sync()
	log := zapLogger.Sugar()

	tracerProvider, err := tracing.Init(tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.Tracing.ServiceName,
		JaegerURL:   cfg.Tracing.JaegerURL,
		Environment: cfg.Tracing.Environment,
		SampleRate:  cfg.Tracing.SampleRate,
	})
	if err != nil {
		log.Fatalw("Failed to initialize tracing", "error", err)
	}

	repoFactory, err := repositories.NewRepositoryFactory(cfg, log)
	if err != nil {
		log.Fatalw("Failed to create repository factory", "error", err)
	}
	defer repoFactory.Close()

	channelRepo := repoFactory.CreateChannelRepository()
	userRepo := repoFactory.CreateUserRepository()

	collector := monitoring.NewPrometheusCollector()

	bus := realtime.NewEventBus(collector, log)
	statsService := services.NewStatsService()
	subManager := realtime.NewSubscriptionManager(
		bus,
		statsService,
		cfg.Realtime.StatsInterval.Std(),
		cfg.Realtime.ChannelsInterval.Std(),
		log,
	)

	authService := services.NewAuthService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL.Std())
	channelService := services.NewChannelService(channelRepo, bus, statsService, log)
	userService := services.NewUserService(userRepo, bus, log)
	analyticsService := services.NewAnalyticsService(cfg.Analytics.OverviewCacheTTL.Std())

	seedAdmin(cfg, userService, log)

	wsServer := realtime.NewWebSocketServer(bus, subManager, authService, realtime.Config{
		RequireAuth:  cfg.Realtime.RequireAuth,
		PingInterval: cfg.Realtime.PingInterval.Std(),
		PongTimeout:  cfg.Realtime.PongTimeout.Std(),
		WriteTimeout: cfg.Realtime.WriteTimeout.Std(),
		SendBuffer:   cfg.Realtime.SendBuffer,
	}, log)

	channelHandler := httphandlers.NewChannelHandler(channelService)
	userHandler := httphandlers.NewUserHandler(userService)
	authHandler := httphandlers.NewAuthHandler(userService, authService)
	analyticsHandler := httphandlers.NewAnalyticsHandler(analyticsService)

	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.MetricsMiddleware(collector))
	router.Use(middleware.NewHTTPRateLimitMiddleware(cfg))
	if cfg.Tracing.Enabled {
		router.Use(middleware.TracingMiddleware())
	}

	api := router.Group(cfg.Server.APIPrefix)

	channels := api.Group("/channels")
	channels.Use(middleware.ErrorHandlerMiddleware(log, true))
	var mutationGuard []gin.HandlerFunc
	if cfg.Auth.ProtectChannels {
		mutationGuard = []gin.HandlerFunc{
			middleware.AuthMiddleware(authService),
			middleware.RequireRole(domain.RoleAdmin),
		}
	}
	channelHandler.RegisterRoutes(channels, mutationGuard...)

	analytics := api.Group("/analytics")
	analytics.Use(middleware.ErrorHandlerMiddleware(log, true))
	analyticsHandler.RegisterRoutes(analytics)

	users := api.Group("/users")
	users.Use(middleware.ErrorHandlerMiddleware(log, false))
	users.Use(middleware.AuthMiddleware(authService))
	userHandler.RegisterRoutes(users)

	auth := api.Group("/auth")
	auth.Use(middleware.ErrorHandlerMiddleware(log, false))
	authHandler.RegisterRoutes(auth)

	router.GET("/ws", gin.WrapF(wsServer.HandleWebSocket))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, monitoring.SnapshotProcessHealth(startTime))
	})

	healthChecker := monitoring.NewHealthChecker()
	healthChecker.AddCheck("repositories", repoFactory.HealthCheck, 2*time.Second)
	router.GET("/ready", func(c *gin.Context) {
		status := healthChecker.CheckAll(c.Request.Context())
		code := http.StatusOK
		if status.Status != "healthy" {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, status)
	})

	if cfg.Monitoring.PrometheusEnabled {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
		log.Info("Prometheus metrics enabled")
	}

	// Registry size gauges refresh in the background.
	gaugeCtx, gaugeCancel := context.WithCancel(context.Background())
	defer gaugeCancel()
	go refreshRegistryGauges(gaugeCtx, collector, channelService, userService, log)

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout.Std(),
		WriteTimeout: cfg.Server.WriteTimeout.Std(),
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Infof("Starting StreamDash server on %s", cfg.Server.Address)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		log.Fatalw("Server failed", "error", err)
	case sig := <-sigChan:
		log.Infow("Received shutdown signal", "signal", sig)
	}

	log.Info("Shutting down StreamDash server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Std())
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Error during server shutdown", "error", err)
		if closeErr := srv.Close(); closeErr != nil {
			log.Errorw("Error force closing server", "error", closeErr)
		}
	} else {
		log.Info("Server shutdown gracefully")
	}

	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Error shutting down tracer", "error", err)
	}

	if err := repoFactory.Close(); err != nil {
		log.Errorw("Error closing repository factory", "error", err)
	}

	log.Info("StreamDash server stopped")
}

// seedAdmin makes sure a fresh process has a usable admin account.
func seedAdmin(cfg *config.Config, users ports.UserService, log *zap.SugaredLogger) {
	if !cfg.Auth.SeedAdmin.Enabled {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	admin, err := users.Create(ctx,
		cfg.Auth.SeedAdmin.Username,
		cfg.Auth.SeedAdmin.Email,
		cfg.Auth.SeedAdmin.Password,
		domain.RoleAdmin,
		"👑",
	)
	if err != nil {
		// Duplicate on restart against Redis is expected.
		log.Warnw("Admin account not seeded", "error", err)
		return
	}
	log.Infow("Seeded admin account", "user_id", admin.ID, "username", admin.Username)
}

func refreshRegistryGauges(
	ctx context.Context,
	collector *monitoring.PrometheusCollector,
	channels ports.ChannelService,
	users ports.UserService,
	log *zap.SugaredLogger,
) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, total, err := channels.List(ctx, domain.ChannelFilter{}, 1, 1); err == nil {
				collector.SetChannelCount(total)
			} else {
				log.Debugw("Channel gauge refresh failed", "error", err)
			}
			if _, total, err := users.List(ctx, domain.UserFilter{}, 1, 1); err == nil {
				collector.SetUserCount(total)
			} else {
				log.Debugw("User gauge refresh failed", "error", err)
			}
		}
	}
}
