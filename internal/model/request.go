package model

// AlertRequest is the flat, strongly-typed form of one inbound envelope.
// The dispatcher produces exactly one request per accepted message; the
// nested nominal-key envelope never travels past the parse step.
type AlertRequest struct {
	Organization string  `json:"empresa"`
	AlertType    string  `json:"tipo_alerta"`
	Site         string  `json:"sede"`
	HardwareName string  `json:"nombre"`
	AlertValue   string  `json:"alerta"`
	Fields       RawData `json:"datos,omitempty"`
}

// DispatchResult is the composed outcome returned to the dispatcher's
// caller once a message reaches a terminal state.
type DispatchResult struct {
	AlertID            string `json:"alert_id"`
	Authorized         bool   `json:"autorizado"`
	HardwareActive     bool   `json:"hardware_activo"`
	RecipientsNotified int    `json:"usuarios_notificados"`
	ProcessingMs       int64  `json:"tiempo_procesamiento_ms"`
}
