package model

import (
	"time"

	"github.com/google/uuid"
)

// Hardware types seen in the field.
const (
	HardwareTypeSignal = "semaforo"
	HardwareTypeAlarm  = "alarma"
	HardwareTypeSensor = "sensor"
	HardwareTypeButton = "botonera"
	HardwareTypeScreen = "pantalla"
)

// Hardware is a physical field device, identified by its unique name.
// Status drives authorization eligibility independently of whether the
// owning organization and site validate.
type Hardware struct {
	ID           uuid.UUID    `db:"id" json:"id"`
	Name         string       `db:"name" json:"nombre"`
	Type         string       `db:"type" json:"tipo"`
	Status       string       `db:"status" json:"estado"`
	Organization string       `db:"organization" json:"empresa"`
	Site         string       `db:"site" json:"sede"`
	Location     string       `db:"location" json:"ubicacion"`
	Coordinates  *Coordinates `db:"coordinates" json:"coordenadas,omitempty"`
	Topic        string       `db:"topic" json:"topic"`
	APIKeyHash   string       `db:"api_key_hash" json:"-"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updated_at"`
}

// IsActive reports whether the device is eligible for authorized alerts.
func (h *Hardware) IsActive() bool {
	return h.Status == StatusActive
}
