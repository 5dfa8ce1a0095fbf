package command

import (
	"context"
	"strings"

	"github.com/NicoLa5Tor/MQTTArisma/internal/model"
	"github.com/NicoLa5Tor/MQTTArisma/internal/repository"
	"github.com/NicoLa5Tor/MQTTArisma/pkg/logger"
	"github.com/NicoLa5Tor/MQTTArisma/pkg/messaging"
)

// Service publishes device commands to the sibling hardware of a site
// after an authorized alert: traffic signals change color, screens show
// the alert detail. Publish failures are logged per device and never
// fail the message that triggered them.
type Service interface {
	FanBack(ctx context.Context, alert *model.Alert, site *model.Site) int
}

type service struct {
	registry repository.RegistryRepository
	broker   messaging.Broker
	prefix   string
	logger   *logger.Logger
}

func NewService(registry repository.RegistryRepository, broker messaging.Broker, topicPrefix string, log *logger.Logger) Service {
	return &service{
		registry: registry,
		broker:   broker,
		prefix:   topicPrefix,
		logger:   log,
	}
}

func (s *service) FanBack(ctx context.Context, alert *model.Alert, site *model.Site) int {
	devices, err := s.registry.ListSiteHardware(ctx, alert.Organization, alert.Site)
	if err != nil {
		s.logger.Error(err, "failed to list site hardware for command fan-back",
			"organization", alert.Organization, "site", alert.Site)
		return 0
	}

	sent := 0
	for _, device := range devices {
		if device.Name == alert.HardwareName {
			continue
		}
		if device.Topic == "" {
			s.logger.Warn("device has no topic, skipping", "hardware", device.Name)
			continue
		}

		topic := device.Topic
		if !strings.HasPrefix(topic, s.prefix) {
			topic = s.prefix + "/" + topic
		}

		payload := s.buildCommand(device, alert, site)
		if err := s.broker.Publish(ctx, topic, payload); err != nil {
			s.logger.Error(err, "failed to publish device command",
				"hardware", device.Name, "topic", topic)
			continue
		}
		sent++
	}
	return sent
}

// buildCommand selects the payload shape per device type. Signals only
// need the color; screens get priority and location detail as well.
func (s *service) buildCommand(device *model.Hardware, alert *model.Alert, site *model.Site) map[string]interface{} {
	priority := "media"
	if alert.Critical() {
		priority = "alta"
	}

	switch device.Type {
	case model.HardwareTypeSignal:
		return map[string]interface{}{
			"tipo_alarma": alert.AlertValue,
		}
	case model.HardwareTypeScreen:
		cmd := map[string]interface{}{
			"tipo_alarma":   alert.AlertValue,
			"prioridad":     priority,
			"instrucciones": screenInstructions(alert),
		}
		if site != nil {
			cmd["ubicacion"] = site.Address
		}
		return cmd
	default:
		return map[string]interface{}{
			"tipo_alarma": alert.AlertValue,
		}
	}
}

func screenInstructions(alert *model.Alert) string {
	if alert.Critical() {
		return "Evacuar la sede y seguir el protocolo de emergencia"
	}
	return "Atender la alerta " + alert.AlertValue + " reportada por " + alert.HardwareName
}
