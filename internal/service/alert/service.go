package alert

import (
	"context"
	"strconv"
	"time"

	"github.com/NicoLa5Tor/MQTTArisma/internal/model"
	"github.com/NicoLa5Tor/MQTTArisma/internal/repository"
	"github.com/NicoLa5Tor/MQTTArisma/internal/service/verification"
	apperrors "github.com/NicoLa5Tor/MQTTArisma/pkg/errors"
	"github.com/NicoLa5Tor/MQTTArisma/pkg/metrics"
)

// Service is the alert recorder. It turns a verification outcome plus the
// original request into one persisted Alert record. Both authorized and
// unauthorized outcomes are recorded; unauthorized attempts are
// operationally significant. Writes are at-most-once: a failed insert is
// surfaced and never retried here.
type Service interface {
	Record(ctx context.Context, req *model.AlertRequest, outcome *verification.Outcome, elapsed time.Duration) (*model.Alert, error)
}

type service struct {
	repo    repository.AlertRepository
	metrics *metrics.Metrics
}

func NewService(repo repository.AlertRepository, m *metrics.Metrics) Service {
	return &service{repo: repo, metrics: m}
}

func (s *service) Record(ctx context.Context, req *model.AlertRequest, outcome *verification.Outcome, elapsed time.Duration) (*model.Alert, error) {
	record := &model.Alert{
		HardwareName:   req.HardwareName,
		Organization:   req.Organization,
		Site:           req.Site,
		AlertType:      req.AlertType,
		AlertValue:     req.AlertValue,
		Authorized:     outcome.Authorized,
		HardwareActive: outcome.HardwareActive,
		Timestamp:      time.Now(),
		RawData:        req.Fields,
		ProcessingMs:   elapsed.Milliseconds(),
	}

	id, err := s.repo.Insert(ctx, record)
	if err != nil {
		if s.metrics != nil {
			s.metrics.DatabaseOperations.WithLabelValues("insert_alert", "error").Inc()
		}
		return nil, apperrors.NewStoreUnavailable("alert insert", err)
	}
	record.ID = id

	if s.metrics != nil {
		s.metrics.DatabaseOperations.WithLabelValues("insert_alert", "success").Inc()
		s.metrics.AlertsRecorded.WithLabelValues(strconv.FormatBool(record.Authorized)).Inc()
	}
	return record, nil
}
