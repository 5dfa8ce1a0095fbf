package ingest

import (
	"context"
	"sync"
	"time"

	"github.com/NicoLa5Tor/MQTTArisma/internal/service/dispatch"
	apperrors "github.com/NicoLa5Tor/MQTTArisma/pkg/errors"
	"github.com/NicoLa5Tor/MQTTArisma/pkg/logger"
	"github.com/NicoLa5Tor/MQTTArisma/pkg/messaging"
)

type Config struct {
	Channel      string
	Workers      int
	DrainTimeout time.Duration
}

// Ingestor consumes device events from the broker subscription and feeds
// each one through the dispatcher on an independent worker, so one slow
// registry call never blocks the other messages. Ordering between
// messages from the same hardware holds only if the transport serializes
// delivery; the pool itself gives no such guarantee.
type Ingestor struct {
	broker     messaging.Broker
	dispatcher dispatch.Service
	config     Config
	logger     *logger.Logger

	stopSubscription context.CancelFunc
	stopPipeline     context.CancelFunc
	wg               sync.WaitGroup
}

func NewIngestor(broker messaging.Broker, dispatcher dispatch.Service, config Config, log *logger.Logger) *Ingestor {
	if config.Workers <= 0 {
		config.Workers = 8
	}
	if config.DrainTimeout <= 0 {
		config.DrainTimeout = 30 * time.Second
	}
	return &Ingestor{
		broker:     broker,
		dispatcher: dispatcher,
		config:     config,
		logger:     log,
	}
}

// Start subscribes and launches the worker pool. It returns once the
// subscription is established; workers run until Stop.
//
// The subscription and the pipeline run on separate contexts so that
// shutdown can stop intake without aborting dispatches already in flight.
func (i *Ingestor) Start(ctx context.Context) error {
	subCtx, stopSubscription := context.WithCancel(ctx)
	pipeCtx, stopPipeline := context.WithCancel(ctx)
	i.stopSubscription = stopSubscription
	i.stopPipeline = stopPipeline

	messages, err := i.broker.Subscribe(subCtx, i.config.Channel)
	if err != nil {
		stopPipeline()
		return err
	}

	i.logger.Info("ingestor started",
		"channel", i.config.Channel, "workers", i.config.Workers)

	for n := 0; n < i.config.Workers; n++ {
		i.wg.Add(1)
		go i.worker(pipeCtx, messages)
	}
	return nil
}

func (i *Ingestor) worker(ctx context.Context, messages <-chan []byte) {
	defer i.wg.Done()

	for payload := range messages {
		i.handle(ctx, payload)
	}
}

func (i *Ingestor) handle(ctx context.Context, payload []byte) {
	result, err := i.dispatcher.Dispatch(ctx, payload)
	if err != nil {
		switch {
		case apperrors.IsValidation(err):
			// Malformed message: drop it, redelivery cannot fix it.
			i.logger.Warn("message rejected", "reason", err.Error())
		case apperrors.IsStoreUnavailable(err):
			// The transport owns the retry policy for store outages.
			i.logger.Error(err, "store unavailable, message eligible for redelivery")
		default:
			i.logger.Error(err, "message processing failed")
		}
		return
	}

	i.logger.Info("message processed",
		"alert_id", result.AlertID,
		"authorized", result.Authorized,
		"recipients_notified", result.RecipientsNotified,
		"processing_ms", result.ProcessingMs)
}

// Stop stops accepting new messages and waits for in-flight work up to
// the drain timeout. Only the subscription is cancelled up front;
// dispatches already running keep their context until the drain either
// completes or times out, after which remaining work is abandoned.
func (i *Ingestor) Stop() {
	if i.stopSubscription != nil {
		i.stopSubscription()
	}

	done := make(chan struct{})
	go func() {
		i.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		i.logger.Info("ingestor drained")
	case <-time.After(i.config.DrainTimeout):
		i.logger.Warn("drain timeout exceeded, abandoning in-flight messages")
	}

	if i.stopPipeline != nil {
		i.stopPipeline()
	}
}
