package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"roomcast/internal/core/services"
	httphandlers "roomcast/internal/handlers/http"
	"roomcast/internal/infrastructure/chat"
	"roomcast/internal/infrastructure/middleware"
	"roomcast/internal/infrastructure/monitoring"
	redisrepo "roomcast/internal/infrastructure/repositories/redis"
	"roomcast/internal/infrastructure/repositories/sqlite"
	"roomcast/pkg/config"
	"roomcast/pkg/logger"
	"roomcast/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	startTime := time.Now()

	// Try multiple config paths
	configPaths := []string{
		"configs/config.yaml",
		"./configs/config.yaml",
		"/etc/roomcast/config.yaml",
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
		// Fallback to defaults if config cannot be loaded
		cfg = config.DefaultConfig()
	}

	// Initialize logger
	zapLogger := logger.New(cfg.Logging.Level)
	defer zapLogger.Sync()

	log := zapLogger.Sugar()

	if err := cfg.Validate(); err != nil {
		log.Fatalw("invalid configuration", "error", err)
	}

	// Initialize tracing
	tracerProvider, err := tracing.Init(tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: "roomcast",
		JaegerURL:   cfg.Tracing.JaegerURL,
		SampleRate:  cfg.Tracing.SampleRate,
	})
	if err != nil {
		log.Fatalw("failed to initialize tracing", "error", err)
	}

	// Initialize storage
	store, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalw("failed to open sqlite store", "error", err)
	}
	defer store.Close()

	redisClient, err := redisrepo.NewRedisClient(
		cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.PoolSize, log)
	if err != nil {
		log.Fatalw("failed to connect to redis", "error", err)
	}
	defer redisrepo.CloseRedisClient(redisClient)

	credentialsRepo := sqlite.NewSqliteCredentialsRepository(store)
	chatRepo := sqlite.NewSqliteChatRepository(store)
	tokenRepo := redisrepo.NewRedisTokenRepository(redisClient)

	// Initialize services
	codec, err := services.NewTokenCodec(cfg.Auth.EdDSAPrivateKeyPEM, cfg.Auth.EdDSAPublicKeyPEM)
	if err != nil {
		log.Fatalw("failed to load signing keys", "error", err)
	}
	hasher := services.NewPasswordHasher(cfg.Auth.HashWorkers)
	defer hasher.Close()

	authService := services.NewAuthService(
		credentialsRepo, tokenRepo, codec, hasher,
		cfg.AccessTokenTTL(), cfg.RefreshTokenTTL(), cfg.RefreshRecordTTL(), log)
	chatService := services.NewChatService(chatRepo, log)

	// Initialize monitoring
	var prometheusCollector *monitoring.PrometheusCollector
	if cfg.Monitoring.PrometheusEnabled {
		prometheusCollector = monitoring.NewPrometheusCollector()
	}

	healthChecker := monitoring.NewHealthChecker()
	healthChecker.AddCheck("sqlite", func(ctx context.Context) error {
		return store.DB().PingContext(ctx)
	}, 2*time.Second)
	healthChecker.AddCheck("redis", func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	}, 2*time.Second)

	// Initialize the websocket chat plane
	registry := chat.NewRegistry(cfg.Chat.RoomBufferSize, prometheusCollector)
	chatServer := chat.NewServer(registry, authService, chatService, chat.SessionConfig{
		BufferSize:      cfg.Chat.SessionBufferSize,
		ReadTimeout:     cfg.Chat.ReadTimeout,
		WriteTimeout:    cfg.Chat.WriteTimeout,
		PingInterval:    cfg.Chat.PingInterval,
		MaxMessageBytes: cfg.Chat.MaxMessageBytes,
	}, prometheusCollector, log)

	// Configure Gin
	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.NewHTTPRateLimitMiddleware(cfg))
	if cfg.Tracing.Enabled {
		router.Use(middleware.TracingMiddleware())
	}
	router.Use(middleware.ErrorHandlerMiddleware(log))

	httphandlers.NewAuthHandler(authService, prometheusCollector).SetupRoutes(router)
	httphandlers.NewChatHandler(chatService, authService).SetupRoutes(router)
	router.GET("/ws/:room", chatServer.HandleConnection)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"uptime":    time.Since(startTime).String(),
		})
	})

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

	// Create HTTP server with timeouts
	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Infof("Starting roomcast server on %s", cfg.Server.Address)
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

	log.Info("Shutting down roomcast server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
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

	log.Info("roomcast server stopped")
}
