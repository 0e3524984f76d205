package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"github.com/medivault/api/internal/config"
	"github.com/medivault/api/internal/email"
	"github.com/medivault/api/internal/handler"
	attachmentHandler "github.com/medivault/api/internal/handler/attachment"
	authHandler "github.com/medivault/api/internal/handler/auth"
	healthHandler "github.com/medivault/api/internal/handler/health"
	profileHandler "github.com/medivault/api/internal/handler/profile"
	recordHandler "github.com/medivault/api/internal/handler/record"
	"github.com/medivault/api/internal/middleware"
	"github.com/medivault/api/internal/repository/postgres"
	"github.com/medivault/api/internal/router"
	attachmentService "github.com/medivault/api/internal/service/attachment"
	authService "github.com/medivault/api/internal/service/auth"
	profileService "github.com/medivault/api/internal/service/profile"
	recordService "github.com/medivault/api/internal/service/record"
	"github.com/medivault/api/pkg/auth"
	"github.com/medivault/api/pkg/identifier"
	"github.com/medivault/api/pkg/logger"
	"github.com/medivault/api/pkg/messaging/redis"
	"github.com/medivault/api/pkg/metrics"
	"github.com/medivault/api/pkg/security"
	"github.com/medivault/api/pkg/storage"
	"github.com/medivault/api/pkg/worker"
)

func main() {
	log := logger.NewLogger(nil)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err, "failed to load configuration")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	m := metrics.NewMetrics("medivault")

	// Repositories
	patientRepo := postgres.NewPatientRepository(db)
	labRepo := postgres.NewLabRepository(db)
	recordRepo := postgres.NewRecordRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)

	// Blob store
	store, err := storage.NewLocalStore(cfg.Storage.UploadDir, time.Now, log.Zerolog(), m)
	if err != nil {
		log.Fatal(err, "failed to initialize upload directory")
	}

	// Services
	hasher := security.NewBcryptHasher(0)
	idGen := identifier.NewGenerator(time.Now)
	tokens := auth.NewJWTService(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiryHours)*time.Hour)
	emailSvc := email.NewSMTPService(cfg.SMTP)

	authSvc := authService.NewService(patientRepo, labRepo, outboxRepo, hasher, idGen, tokens, emailSvc, log)
	recordSvc := recordService.NewService(recordRepo, patientRepo, labRepo, emailSvc, log, m)
	attachmentSvc := attachmentService.NewService(store, cfg.Storage.MaxUploadBytes, cfg.Storage.AllowedExtensions)
	profileSvc := profileService.NewService(patientRepo, labRepo)

	// Middleware and handlers
	authMiddleware := middleware.NewAuthMiddleware(tokens)

	h := handler.NewHandler()
	authH := authHandler.NewHandler(authSvc)
	recordH := recordHandler.NewHandler(recordSvc, attachmentSvc)
	profileH := profileHandler.NewHandler(profileSvc)
	attachmentH := attachmentHandler.NewHandler(attachmentSvc, recordSvc)
	healthH := healthHandler.NewHandler(db)

	sizeLimit := middleware.DefaultSizeLimitConfig()
	sizeLimit.MaxUploadSize = cfg.Storage.MaxUploadBytes + (2 << 20)

	r := router.NewRouter(
		authMiddleware,
		authH,
		recordH,
		profileH,
		attachmentH,
		healthH,
		h,
		router.RouterConfig{
			RateLimit:     rate.Limit(cfg.RateLimit.RequestsPerSecond),
			RateBurst:     cfg.RateLimit.Burst,
			CORSConfig:    middleware.DefaultCORSConfig(),
			SizeLimit:     sizeLimit,
			Timeout:       cfg.Server.RequestTimeout,
			MetricsPrefix: "medivault_http",
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Outbox drain runs only when a broker is configured.
	processorCtx, stopProcessor := context.WithCancel(context.Background())
	defer stopProcessor()
	if cfg.Redis.URL != "" {
		broker, err := redis.NewRedisBroker(redis.Config{
			URL:          cfg.Redis.URL,
			MaxRetries:   cfg.Redis.MaxRetries,
			RetryBackoff: cfg.Redis.RetryBackoff,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
		}, log.Zerolog())
		if err != nil {
			log.Fatal(err, "failed to connect to Redis")
		}
		defer broker.Close()

		processor := worker.NewOutboxProcessor(outboxRepo, broker, worker.OutboxProcessorConfig{
			BatchSize:     cfg.Outbox.BatchSize,
			PollInterval:  cfg.Outbox.PollInterval,
			RetryAttempts: cfg.Outbox.RetryAttempts,
			RetryDelay:    cfg.Outbox.RetryDelay,
		}, log, m)
		go processor.Start(processorCtx)
	} else {
		log.Warn("no Redis URL configured, outbox events will stay pending")
	}

	go func() {
		log.Info("starting server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err, "failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server...")

	stopProcessor()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal(err, "server forced to shutdown")
	}

	log.Info("server exited properly")
}
