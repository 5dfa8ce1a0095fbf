package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/NicoLa5Tor/MQTTArisma/internal/config"
	"github.com/NicoLa5Tor/MQTTArisma/internal/email"
	"github.com/NicoLa5Tor/MQTTArisma/internal/handler"
	adminHandler "github.com/NicoLa5Tor/MQTTArisma/internal/handler/admin"
	alertsHandler "github.com/NicoLa5Tor/MQTTArisma/internal/handler/alerts"
	hwauthHandler "github.com/NicoLa5Tor/MQTTArisma/internal/handler/hwauth"
	verifyHandler "github.com/NicoLa5Tor/MQTTArisma/internal/handler/verify"
	"github.com/NicoLa5Tor/MQTTArisma/internal/ingest"
	"github.com/NicoLa5Tor/MQTTArisma/internal/repository/cached"
	"github.com/NicoLa5Tor/MQTTArisma/internal/repository/postgres"
	"github.com/NicoLa5Tor/MQTTArisma/internal/router"
	alertService "github.com/NicoLa5Tor/MQTTArisma/internal/service/alert"
	commandService "github.com/NicoLa5Tor/MQTTArisma/internal/service/command"
	dispatchService "github.com/NicoLa5Tor/MQTTArisma/internal/service/dispatch"
	hwauthService "github.com/NicoLa5Tor/MQTTArisma/internal/service/hwauth"
	notifierService "github.com/NicoLa5Tor/MQTTArisma/internal/service/notifier"
	provisionService "github.com/NicoLa5Tor/MQTTArisma/internal/service/provision"
	verificationService "github.com/NicoLa5Tor/MQTTArisma/internal/service/verification"
	"github.com/NicoLa5Tor/MQTTArisma/internal/worker"
	"github.com/NicoLa5Tor/MQTTArisma/pkg/logger"
	"github.com/NicoLa5Tor/MQTTArisma/pkg/messaging/redis"
	"github.com/NicoLa5Tor/MQTTArisma/pkg/metrics"
	"github.com/NicoLa5Tor/MQTTArisma/pkg/security"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(nil)

	// Initialize database
	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Initialize metrics
	m := metrics.NewMetrics(prometheus.DefaultRegisterer, "mqttarisma", "pipeline")

	// Initialize repositories; registry lookups go through a
	// read-through cache
	registryRepo := cached.NewRegistryCache(
		postgres.NewRegistryRepository(db),
		cached.Config{TTL: cfg.Cache.TTL, CleanupInterval: cfg.Cache.CleanupInterval},
		m,
	)
	alertRepo := postgres.NewAlertRepository(db)

	// Initialize Redis message broker
	zl := log.Logger
	broker, err := redis.NewRedisBroker(redis.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   cfg.Redis.MaxRetries,
		RetryBackoff: cfg.Redis.RetryBackoff,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	}, &zl)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer broker.Close()

	// Initialize services
	verifier := verificationService.NewService(registryRepo, cfg.Pipeline.LookupTimeout)
	recorder := alertService.NewService(alertRepo, m)
	emailSvc := email.NewSMTPService(cfg.SMTP)
	fanout := notifierService.NewService(emailSvc, notifierService.UnconfiguredSMS{}, appLogger, m)
	commands := commandService.NewService(registryRepo, broker, cfg.Pipeline.CommandPrefix, appLogger)
	dispatcher := dispatchService.NewService(verifier, recorder, fanout, commands, alertRepo, appLogger, m)
	hasher := security.NewBcryptHasher(0)
	hwauthSvc := hwauthService.NewService(registryRepo, hasher, cfg.JWT)
	provisionSvc := provisionService.NewService(postgres.NewHardwareAdminRepository(db), registryRepo, hasher)

	// Initialize handlers
	h := handler.NewHandler(prometheus.DefaultGatherer)
	verifyH := verifyHandler.NewHandler(verifier, dispatcher)
	alertsH := alertsHandler.NewHandler(alertRepo, dispatcher)
	hwauthH := hwauthHandler.NewHandler(hwauthSvc, dispatcher)
	adminH := adminHandler.NewHandler(provisionSvc)

	// Setup router
	r := router.NewRouter(h, verifyH, alertsH, hwauthH, adminH, router.Config{
		RateLimit: rate.Limit(cfg.Server.RateLimit),
		RateBurst: cfg.Server.RateBurst,
	})
	r.Setup()

	// Start the ingestor on the pub/sub channel
	ingestor := ingest.NewIngestor(broker, dispatcher, ingest.Config{
		Channel:      cfg.Pipeline.IngestChannel,
		Workers:      cfg.Pipeline.Workers,
		DrainTimeout: cfg.Pipeline.DrainTimeout,
	}, appLogger)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	if err := ingestor.Start(workerCtx); err != nil {
		log.Fatal().Err(err).Msg("failed to start ingestor")
	}

	// Start alert retention cleanup
	retention := worker.NewRetentionWorker(alertRepo, cfg.Retention.MaxAgeDays, cfg.Retention.CleanupInterval, appLogger)
	go retention.Start(workerCtx)

	// Create server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	// Start server
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down...")

	// Stop accepting messages, drain in-flight pipeline runs
	ingestor.Stop()
	workerCancel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
