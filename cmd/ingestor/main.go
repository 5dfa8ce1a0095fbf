package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/NicoLa5Tor/MQTTArisma/internal/config"
	"github.com/NicoLa5Tor/MQTTArisma/internal/email"
	"github.com/NicoLa5Tor/MQTTArisma/internal/ingest"
	"github.com/NicoLa5Tor/MQTTArisma/internal/repository/cached"
	"github.com/NicoLa5Tor/MQTTArisma/internal/repository/postgres"
	alertService "github.com/NicoLa5Tor/MQTTArisma/internal/service/alert"
	commandService "github.com/NicoLa5Tor/MQTTArisma/internal/service/command"
	dispatchService "github.com/NicoLa5Tor/MQTTArisma/internal/service/dispatch"
	notifierService "github.com/NicoLa5Tor/MQTTArisma/internal/service/notifier"
	verificationService "github.com/NicoLa5Tor/MQTTArisma/internal/service/verification"
	"github.com/NicoLa5Tor/MQTTArisma/internal/worker"
	"github.com/NicoLa5Tor/MQTTArisma/pkg/logger"
	"github.com/NicoLa5Tor/MQTTArisma/pkg/messaging/redis"
	"github.com/NicoLa5Tor/MQTTArisma/pkg/metrics"
)

// The ingestor binary runs the pipeline without the HTTP API, for
// deployments that scale message processing separately from the
// verification endpoints. Only /metrics is served.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(nil)

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	m := metrics.NewMetrics(prometheus.DefaultRegisterer, "mqttarisma", "ingestor")

	registryRepo := cached.NewRegistryCache(
		postgres.NewRegistryRepository(db),
		cached.Config{TTL: cfg.Cache.TTL, CleanupInterval: cfg.Cache.CleanupInterval},
		m,
	)
	alertRepo := postgres.NewAlertRepository(db)

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

	verifier := verificationService.NewService(registryRepo, cfg.Pipeline.LookupTimeout)
	recorder := alertService.NewService(alertRepo, m)
	emailSvc := email.NewSMTPService(cfg.SMTP)
	fanout := notifierService.NewService(emailSvc, notifierService.UnconfiguredSMS{}, appLogger, m)
	commands := commandService.NewService(registryRepo, broker, cfg.Pipeline.CommandPrefix, appLogger)
	dispatcher := dispatchService.NewService(verifier, recorder, fanout, commands, alertRepo, appLogger, m)

	ingestor := ingest.NewIngestor(broker, dispatcher, ingest.Config{
		Channel:      cfg.Pipeline.IngestChannel,
		Workers:      cfg.Pipeline.Workers,
		DrainTimeout: cfg.Pipeline.DrainTimeout,
	}, appLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := ingestor.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to start ingestor")
	}

	retention := worker.NewRetentionWorker(alertRepo, cfg.Retention.MaxAgeDays, cfg.Retention.CleanupInterval, appLogger)
	go retention.Start(ctx)

	go func() {
		http.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(fmt.Sprintf(":%d", cfg.Server.Port), nil); err != nil {
			log.Error().Err(err).Msg("metrics server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down ingestor...")

	ingestor.Stop()
	cancel()

	log.Info().Msg("ingestor exited properly")
}
