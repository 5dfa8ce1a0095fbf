package dispatch

import (
	"context"
	"time"

	"github.com/NicoLa5Tor/MQTTArisma/internal/model"
	"github.com/NicoLa5Tor/MQTTArisma/internal/repository"
	alertsvc "github.com/NicoLa5Tor/MQTTArisma/internal/service/alert"
	"github.com/NicoLa5Tor/MQTTArisma/internal/service/command"
	"github.com/NicoLa5Tor/MQTTArisma/internal/service/notifier"
	"github.com/NicoLa5Tor/MQTTArisma/internal/service/verification"
	apperrors "github.com/NicoLa5Tor/MQTTArisma/pkg/errors"
	"github.com/NicoLa5Tor/MQTTArisma/pkg/logger"
	"github.com/NicoLa5Tor/MQTTArisma/pkg/metrics"
)

// Pipeline stages, in order. A message that fails validation never
// reaches the chain; a message that fails verification still gets its
// alert recorded before terminating.
const (
	stageValidating = "validating"
	stageVerifying  = "verifying"
	stageRecording  = "recording"
	stageNotifying  = "notifying"
	stageDone       = "done"
)

// Service is the ingress dispatcher: envelope in, composed result out.
// Steps for one message run strictly in sequence; concurrency across
// messages is the caller's concern.
type Service interface {
	// Dispatch parses a raw envelope and runs the pipeline.
	Dispatch(ctx context.Context, payload []byte) (*model.DispatchResult, error)

	// DispatchRequest runs the pipeline on an already-flattened request.
	// Backs the synchronous API's prueba-completa and alarm endpoints.
	DispatchRequest(ctx context.Context, req *model.AlertRequest) (*model.DispatchResult, error)

	Stats() Snapshot
}

type service struct {
	verifier verification.Service
	recorder alertsvc.Service
	notifier notifier.Service
	commands command.Service
	alerts   repository.AlertRepository
	logger   *logger.Logger
	metrics  *metrics.Metrics
	stats    Stats
}

func NewService(
	verifier verification.Service,
	recorder alertsvc.Service,
	fanout notifier.Service,
	commands command.Service,
	alerts repository.AlertRepository,
	log *logger.Logger,
	m *metrics.Metrics,
) Service {
	return &service{
		verifier: verifier,
		recorder: recorder,
		notifier: fanout,
		commands: commands,
		alerts:   alerts,
		logger:   log,
		metrics:  m,
	}
}

func (s *service) Dispatch(ctx context.Context, payload []byte) (*model.DispatchResult, error) {
	s.stats.received.Add(1)
	if s.metrics != nil {
		s.metrics.MessagesReceived.Inc()
	}

	req, err := ParseEnvelope(payload)
	if err != nil {
		s.stats.rejected.Add(1)
		if s.metrics != nil {
			s.metrics.MessagesRejected.WithLabelValues("envelope").Inc()
		}
		return nil, err
	}

	return s.run(ctx, req, false)
}

func (s *service) DispatchRequest(ctx context.Context, req *model.AlertRequest) (*model.DispatchResult, error) {
	s.stats.received.Add(1)
	if s.metrics != nil {
		s.metrics.MessagesReceived.Inc()
	}
	return s.run(ctx, req, true)
}

func (s *service) run(ctx context.Context, req *model.AlertRequest, validate bool) (*model.DispatchResult, error) {
	start := time.Now()

	// Validation of flattened requests; envelopes were already validated
	// by the parse step.
	s.logger.Debug("pipeline stage", "stage", stageValidating, "hardware", req.HardwareName)
	if validate && req.HardwareName == "" {
		s.stats.rejected.Add(1)
		if s.metrics != nil {
			s.metrics.MessagesRejected.WithLabelValues("validation").Inc()
		}
		return nil, apperrors.NewValidation("missing mandatory field: nombre", nil)
	}

	s.logger.Debug("pipeline stage", "stage", stageVerifying, "hardware", req.HardwareName)
	outcome, err := s.verifier.Verify(ctx, req.HardwareName, req.Organization, req.Site)
	if err != nil {
		// Store failure: abort, leave redelivery to the transport.
		s.stats.failed.Add(1)
		return nil, err
	}

	s.logger.Debug("pipeline stage", "stage", stageRecording,
		"hardware", req.HardwareName, "authorized", outcome.Authorized)
	record, err := s.recorder.Record(ctx, req, outcome, time.Since(start))
	if err != nil {
		s.stats.failed.Add(1)
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.AlertsPerMinute.Set(float64(s.stats.MarkAlert(time.Now())))
	}

	result := &model.DispatchResult{
		AlertID:        record.ID.String(),
		Authorized:     outcome.Authorized,
		HardwareActive: outcome.HardwareActive,
	}

	if outcome.Authorized {
		s.logger.Debug("pipeline stage", "stage", stageNotifying, "hardware", req.HardwareName)
		fanout, err := s.notifier.FanOut(ctx, outcome.Organization, record)
		if err != nil {
			// Per-recipient failures are already absorbed inside the
			// batch; an error here is unexpected but must not undo the
			// recorded alert.
			s.logger.Error(err, "notification fan-out failed", "alert_id", result.AlertID)
		} else {
			result.RecipientsNotified = fanout.Notified
		}

		sent := s.commands.FanBack(ctx, record, outcome.Site)
		if sent > 0 {
			s.logger.Info("device commands published", "count", sent, "site", req.Site)
		}

		if err := s.alerts.MarkProcessed(ctx, record.ID, result.RecipientsNotified); err != nil {
			s.logger.Error(err, "failed to mark alert processed", "alert_id", result.AlertID)
		}
	} else {
		s.logger.Info("unauthorized event recorded",
			"hardware", req.HardwareName,
			"organization", req.Organization,
			"hardware_exists", outcome.HardwareExists)
	}

	elapsed := time.Since(start)
	result.ProcessingMs = elapsed.Milliseconds()
	if s.metrics != nil {
		s.metrics.PipelineLatency.Observe(elapsed.Seconds())
	}
	s.stats.processed.Add(1)
	s.logger.Debug("pipeline stage", "stage", stageDone, "hardware", req.HardwareName)

	return result, nil
}

func (s *service) Stats() Snapshot {
	return s.stats.Snapshot()
}
