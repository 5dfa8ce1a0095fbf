package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Recipient roles.
const (
	RoleAdmin      = "admin"
	RoleOperator   = "operador"
	RoleSupervisor = "supervisor"
)

// Recipient is a registered notification target embedded in an
// organization. Email is unique within the organization.
type Recipient struct {
	Name   string `json:"nombre"`
	Email  string `json:"email"`
	Role   string `json:"rol"`
	Phone  string `json:"telefono"`
	Active bool   `json:"activo"`
}

// RecipientList is stored as a JSONB array on the organization row.
type RecipientList []Recipient

func (l RecipientList) Value() (driver.Value, error) {
	if l == nil {
		return json.Marshal([]Recipient{})
	}
	return json.Marshal(l)
}

func (l *RecipientList) Scan(src interface{}) error {
	return scanJSON(src, l)
}

// Active filters the list down to recipients eligible for notification.
func (l RecipientList) Active() []Recipient {
	var active []Recipient
	for _, r := range l {
		if r.Active {
			active = append(active, r)
		}
	}
	return active
}

// NotificationConfig holds the organization's channel toggles.
type NotificationConfig struct {
	Email          bool `json:"email"`
	SMS            bool `json:"sms"`
	CriticalAlerts bool `json:"alertas_criticas"`
}

func (c NotificationConfig) Value() (driver.Value, error) {
	return json.Marshal(c)
}

func (c *NotificationConfig) Scan(src interface{}) error {
	return scanJSON(src, c)
}

// Organization is the owning customer entity, identified by unique name.
type Organization struct {
	ID           uuid.UUID          `db:"id" json:"id"`
	Name         string             `db:"name" json:"nombre"`
	Status       string             `db:"status" json:"estado"`
	ContactPhone string             `db:"contact_phone" json:"telefono"`
	ContactEmail string             `db:"contact_email" json:"email"`
	Recipients   RecipientList      `db:"recipients" json:"usuarios"`
	Config       NotificationConfig `db:"config" json:"configuracion"`
	CreatedAt    time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `db:"updated_at" json:"updated_at"`
}

func (o *Organization) IsActive() bool {
	return o.Status == StatusActive
}
