package handler

import "github.com/gin-gonic/gin"

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Response is the uniform envelope for API results. The verification
// endpoints answer with the existe/mensaje shape instead, which the
// field tooling already parses.
type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Status: statusSuccess,
		Data:   data,
	}
}

func NewErrorResponse(message string) *Response {
	return &Response{
		Status:  statusError,
		Message: message,
	}
}

// NewExistenceResponse answers a verification lookup that found the
// record, embedding it under its wire name (hardware, empresa, sede).
func NewExistenceResponse(field string, record interface{}) gin.H {
	return gin.H{"existe": true, field: record}
}

// NewAbsenceResponse answers a verification lookup for a record that is
// not registered. Absence is a normal outcome, never an HTTP error.
func NewAbsenceResponse(message string) gin.H {
	return gin.H{"existe": false, "mensaje": message}
}
