package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/NicoLa5Tor/MQTTArisma/internal/repository"
	"github.com/NicoLa5Tor/MQTTArisma/pkg/logger"
)

// RetentionWorker removes alert records older than the configured age.
// The pipeline itself never deletes; retention is the only destructive
// operation on the alert collection and runs on its own schedule.
type RetentionWorker struct {
	repo            repository.AlertRepository
	maxAgeDays      int
	cleanupInterval time.Duration
	logger          *logger.Logger
}

func NewRetentionWorker(repo repository.AlertRepository, maxAgeDays int, cleanupInterval time.Duration, log *logger.Logger) *RetentionWorker {
	return &RetentionWorker{
		repo:            repo,
		maxAgeDays:      maxAgeDays,
		cleanupInterval: cleanupInterval,
		logger:          log,
	}
}

func (w *RetentionWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.cleanup(ctx); err != nil {
				w.logger.Error(err, "alert retention cleanup failed")
			}
		}
	}
}

func (w *RetentionWorker) cleanup(ctx context.Context) error {
	cutoff := time.Now().AddDate(0, 0, -w.maxAgeDays)

	rows, err := w.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to delete expired alerts: %w", err)
	}

	if rows > 0 {
		w.logger.Info("expired alerts removed", "count", rows, "cutoff", cutoff)
	}
	return nil
}
