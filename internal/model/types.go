package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Entity status values as they arrive on the wire.
const (
	StatusActive      = "activo"
	StatusInactive    = "inactivo"
	StatusMaintenance = "mantenimiento"
	StatusSuspended   = "suspendido"
)

// Coordinates is an optional lat/lng pair stored as JSONB.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (c Coordinates) Value() (driver.Value, error) {
	return json.Marshal(c)
}

func (c *Coordinates) Scan(src interface{}) error {
	return scanJSON(src, c)
}

// RawData holds the original message payload as an opaque document.
type RawData map[string]interface{}

func (d RawData) Value() (driver.Value, error) {
	if d == nil {
		return json.Marshal(map[string]interface{}{})
	}
	return json.Marshal(d)
}

func (d *RawData) Scan(src interface{}) error {
	return scanJSON(src, d)
}

func scanJSON(src, dst interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("unsupported scan type %T", src)
	}
}
