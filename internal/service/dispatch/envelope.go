package dispatch

import (
	"encoding/json"

	"github.com/NicoLa5Tor/MQTTArisma/internal/model"
	apperrors "github.com/NicoLa5Tor/MQTTArisma/pkg/errors"
)

// ParseEnvelope unwraps the nested nominal-key envelope
//
//	{ "<empresa>": { "<tipo_alerta>": { "sede": ..., "alerta": ..., "nombre": ... } } }
//
// into a flat AlertRequest. Exactly one organization key and one alert
// type key are accepted; anything else is rejected rather than resolved
// by key order, since Go map iteration would make first-key-wins
// nondeterministic. The hardware name is the only mandatory field; all
// other fields pass through opaquely into the alert's raw data.
func ParseEnvelope(payload []byte) (*model.AlertRequest, error) {
	var envelope map[string]map[string]model.RawData
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, apperrors.NewValidation("malformed message envelope", err)
	}

	if len(envelope) != 1 {
		return nil, apperrors.NewValidation("envelope must contain exactly one organization", nil)
	}

	var organization string
	var alerts map[string]model.RawData
	for org, nested := range envelope {
		organization, alerts = org, nested
	}

	if len(alerts) != 1 {
		return nil, apperrors.NewValidation("envelope must contain exactly one alert type", nil)
	}

	var alertType string
	var fields model.RawData
	for typ, inner := range alerts {
		alertType, fields = typ, inner
	}

	req := &model.AlertRequest{
		Organization: organization,
		AlertType:    alertType,
		Site:         stringField(fields, "sede"),
		HardwareName: stringField(fields, "nombre"),
		AlertValue:   stringField(fields, "alerta"),
		Fields:       fields,
	}

	if req.HardwareName == "" {
		return nil, apperrors.NewValidation("missing mandatory field: nombre", nil)
	}

	return req, nil
}

func stringField(fields model.RawData, key string) string {
	if v, ok := fields[key].(string); ok {
		return v
	}
	return ""
}
