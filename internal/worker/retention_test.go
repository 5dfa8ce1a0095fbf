package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/NicoLa5Tor/MQTTArisma/internal/model"
	"github.com/NicoLa5Tor/MQTTArisma/pkg/logger"
)

type recordingAlertRepo struct {
	mu      sync.Mutex
	cutoffs []time.Time
	signal  chan struct{}
}

func (r *recordingAlertRepo) Insert(context.Context, *model.Alert) (uuid.UUID, error) {
	return uuid.Nil, nil
}

func (r *recordingAlertRepo) MarkProcessed(context.Context, uuid.UUID, int) error { return nil }

func (r *recordingAlertRepo) Get(context.Context, uuid.UUID) (*model.Alert, error) {
	return nil, nil
}

func (r *recordingAlertRepo) List(context.Context, int) ([]*model.Alert, error) {
	return nil, nil
}

func (r *recordingAlertRepo) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	r.cutoffs = append(r.cutoffs, cutoff)
	r.mu.Unlock()

	select {
	case r.signal <- struct{}{}:
	default:
	}
	return 3, nil
}

func TestRetentionWorkerDeletesOnSchedule(t *testing.T) {
	repo := &recordingAlertRepo{signal: make(chan struct{}, 1)}
	w := NewRetentionWorker(repo, 90, 10*time.Millisecond, logger.NewLogger(nil))

	ctx, cancel := context.WithCancel(context.Background())
	go w.Start(ctx)

	select {
	case <-repo.signal:
	case <-time.After(time.Second):
		t.Fatal("cleanup never ran")
	}
	cancel()

	repo.mu.Lock()
	defer repo.mu.Unlock()
	assert.NotEmpty(t, repo.cutoffs)

	// Cutoff sits 90 days back from the moment of the run.
	expected := time.Now().AddDate(0, 0, -90)
	assert.WithinDuration(t, expected, repo.cutoffs[0], time.Minute)
}

func TestRetentionWorkerStopsOnCancel(t *testing.T) {
	repo := &recordingAlertRepo{signal: make(chan struct{}, 1)}
	w := NewRetentionWorker(repo, 90, time.Hour, logger.NewLogger(nil))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop on cancel")
	}
}
