package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/NicoLa5Tor/MQTTArisma/internal/config"
	"github.com/NicoLa5Tor/MQTTArisma/internal/model"
)

type Service interface {
	SendAlert(ctx context.Context, to string, recipientName string, alert *model.Alert) error
	SendCustom(ctx context.Context, to string, subject string, content string) error
}

type smtpService struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPService(cfg config.SMTPConfig) Service {
	return &smtpService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *smtpService) SendAlert(ctx context.Context, to string, recipientName string, alert *model.Alert) error {
	subject := fmt.Sprintf("Alerta %s en %s", alert.AlertType, alert.Organization)
	body := fmt.Sprintf(
		"Hola %s,\n\nSe ha registrado una alerta en tu empresa.\n\n"+
			"Hardware: %s\nSede: %s\nTipo: %s\nEstado: %s\nMomento: %s\n\nSistema RESCUE",
		recipientName,
		alert.HardwareName,
		alert.Site,
		alert.AlertType,
		alert.AlertValue,
		alert.Timestamp.Format("02/01/2006 15:04"),
	)
	return s.SendCustom(ctx, to, subject, body)
}

func (s *smtpService) SendCustom(ctx context.Context, to string, subject string, content string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", content)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}
