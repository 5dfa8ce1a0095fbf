package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// OperatingHours holds the site's open/close times and operating days.
type OperatingHours struct {
	Open  string   `json:"apertura"`
	Close string   `json:"cierre"`
	Days  []string `json:"dias"`
}

func (h OperatingHours) Value() (driver.Value, error) {
	return json.Marshal(h)
}

func (h *OperatingHours) Scan(src interface{}) error {
	return scanJSON(src, h)
}

// Site is a named location belonging to one organization. The natural key
// is the (organization, name) pair; name alone is not globally unique.
type Site struct {
	ID             uuid.UUID       `db:"id" json:"id"`
	Organization   string          `db:"organization" json:"empresa"`
	Name           string          `db:"name" json:"nombre"`
	Location       string          `db:"location" json:"ubicacion"`
	Address        string          `db:"address" json:"direccion"`
	Status         string          `db:"status" json:"estado"`
	Coordinates    *Coordinates    `db:"coordinates" json:"coordenadas,omitempty"`
	OperatingHours *OperatingHours `db:"operating_hours" json:"horario,omitempty"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updated_at"`
}

func (s *Site) IsActive() bool {
	return s.Status == StatusActive
}
