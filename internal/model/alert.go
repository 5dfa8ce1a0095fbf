package model

import (
	"time"

	"github.com/google/uuid"
)

// Alert is the persisted record of one inbound event and its
// authorization outcome. One alert is created per dispatched message,
// authorized or not, and is never mutated after creation.
type Alert struct {
	ID                 uuid.UUID `db:"id" json:"id"`
	HardwareName       string    `db:"hardware_name" json:"hardware_nombre"`
	Organization       string    `db:"organization" json:"empresa"`
	Site               string    `db:"site" json:"sede"`
	AlertType          string    `db:"alert_type" json:"tipo_alerta"`
	AlertValue         string    `db:"alert_value" json:"alerta"`
	Authorized         bool      `db:"authorized" json:"autorizado"`
	HardwareActive     bool      `db:"hardware_active" json:"hardware_activo"`
	Timestamp          time.Time `db:"timestamp" json:"timestamp"`
	RawData            RawData   `db:"raw_data" json:"datos"`
	Processed          bool      `db:"processed" json:"procesado"`
	RecipientsNotified int       `db:"recipients_notified" json:"usuarios_notificados"`
	ProcessingMs       int64     `db:"processing_ms" json:"tiempo_procesamiento_ms"`
}

// Critical reports whether the alert value marks a critical event.
// Red alerts and emergencies gate on the organization's critical-alerts
// toggle.
func (a *Alert) Critical() bool {
	switch a.AlertValue {
	case "roja", "emergencia", "critica":
		return true
	}
	return false
}
