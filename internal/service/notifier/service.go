package notifier

import (
	"context"

	"github.com/NicoLa5Tor/MQTTArisma/internal/email"
	"github.com/NicoLa5Tor/MQTTArisma/internal/model"
	"github.com/NicoLa5Tor/MQTTArisma/pkg/logger"
	"github.com/NicoLa5Tor/MQTTArisma/pkg/metrics"
)

const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
)

// SMSSender dispatches one SMS. Implementations back this with whatever
// gateway the deployment has available.
type SMSSender interface {
	Send(ctx context.Context, phone, message string) error
}

// Delivery records the outcome for one recipient.
type Delivery struct {
	Recipient model.Recipient `json:"usuario"`
	Channel   string          `json:"canal"`
	Success   bool            `json:"enviado"`
	Error     string          `json:"error,omitempty"`
}

// Result summarizes one fan-out batch.
type Result struct {
	Notified   int        `json:"usuarios_notificados"`
	Deliveries []Delivery `json:"entregas"`
}

// Service fans an authorized alert out to the organization's active
// recipients, one notification per recipient. A failed delivery is
// recorded per recipient and never aborts the rest of the batch.
type Service interface {
	FanOut(ctx context.Context, org *model.Organization, alert *model.Alert) (*Result, error)
}

type service struct {
	emailSvc email.Service
	smsSvc   SMSSender
	logger   *logger.Logger
	metrics  *metrics.Metrics
}

func NewService(emailSvc email.Service, smsSvc SMSSender, log *logger.Logger, m *metrics.Metrics) Service {
	return &service{
		emailSvc: emailSvc,
		smsSvc:   smsSvc,
		logger:   log,
		metrics:  m,
	}
}

func (s *service) FanOut(ctx context.Context, org *model.Organization, alert *model.Alert) (*Result, error) {
	result := &Result{}

	// Critical alerts are gated by the organization's critical-alerts
	// toggle; everything else only needs an enabled channel.
	if alert.Critical() && !org.Config.CriticalAlerts {
		s.logger.Info("critical alerts disabled for organization", "organization", org.Name)
		return result, nil
	}

	active := org.Recipients.Active()
	if len(active) == 0 {
		// Not an error: the batch simply notified nobody.
		return result, nil
	}

	for _, recipient := range active {
		channel := s.selectChannel(org, recipient)
		if channel == "" {
			continue
		}

		delivery := Delivery{Recipient: recipient, Channel: channel, Success: true}
		if err := s.deliver(ctx, channel, recipient, alert); err != nil {
			delivery.Success = false
			delivery.Error = err.Error()
			s.logger.Error(err, "notification failed",
				"recipient", recipient.Email, "channel", channel)
			if s.metrics != nil {
				s.metrics.NotificationsFailed.WithLabelValues(channel).Inc()
			}
		} else {
			result.Notified++
			if s.metrics != nil {
				s.metrics.NotificationsSent.WithLabelValues(channel).Inc()
			}
		}
		result.Deliveries = append(result.Deliveries, delivery)
	}

	return result, nil
}

// selectChannel picks one channel per recipient: email when the toggle is
// on and the recipient has an address, SMS as fallback.
func (s *service) selectChannel(org *model.Organization, recipient model.Recipient) string {
	if org.Config.Email && recipient.Email != "" {
		return ChannelEmail
	}
	if org.Config.SMS && recipient.Phone != "" {
		return ChannelSMS
	}
	return ""
}

func (s *service) deliver(ctx context.Context, channel string, recipient model.Recipient, alert *model.Alert) error {
	switch channel {
	case ChannelEmail:
		return s.emailSvc.SendAlert(ctx, recipient.Email, recipient.Name, alert)
	case ChannelSMS:
		return s.smsSvc.Send(ctx, recipient.Phone, smsBody(alert))
	}
	return nil
}

func smsBody(alert *model.Alert) string {
	return "Alerta " + alert.AlertType + " (" + alert.AlertValue + ") en " +
		alert.Organization + " sede " + alert.Site + " - Sistema RESCUE"
}
