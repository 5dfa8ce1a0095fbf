package hwauth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/NicoLa5Tor/MQTTArisma/internal/handler"
	"github.com/NicoLa5Tor/MQTTArisma/internal/model"
	"github.com/NicoLa5Tor/MQTTArisma/internal/service/dispatch"
	"github.com/NicoLa5Tor/MQTTArisma/internal/service/hwauth"
	apperrors "github.com/NicoLa5Tor/MQTTArisma/pkg/errors"
)

// Handler authenticates field devices and accepts their alarm
// submissions over HTTP, mirroring what the pub/sub path does for
// broker-delivered events.
type Handler struct {
	auth       hwauth.Service
	dispatcher dispatch.Service
}

func NewHandler(auth hwauth.Service, dispatcher dispatch.Service) *Handler {
	return &Handler{auth: auth, dispatcher: dispatcher}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/autenticar-hardware", h.Authenticate)
	r.POST("/alarma", h.SubmitAlarm)
}

type authRequest struct {
	Name   string `json:"nombre" binding:"required"`
	APIKey string `json:"api_key" binding:"required"`
}

func (h *Handler) Authenticate(c *gin.Context) {
	var req authRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	token, err := h.auth.Authenticate(c.Request.Context(), req.Name, req.APIKey)
	if err != nil {
		if apperrors.IsCode(err, apperrors.ErrUnauthorized) {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("authentication failed"))
			return
		}
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"token": token}))
}

type alarmRequest struct {
	Organization string        `json:"empresa" binding:"required"`
	AlertType    string        `json:"tipo_alerta" binding:"required"`
	Site         string        `json:"sede" binding:"required"`
	AlertValue   string        `json:"alerta"`
	Fields       model.RawData `json:"datos"`
}

// SubmitAlarm requires a bearer token from Authenticate. The hardware
// name comes from the token, never from the request body, so a device
// cannot submit alarms on behalf of another.
func (h *Handler) SubmitAlarm(c *gin.Context) {
	token := bearerToken(c)
	if token == "" {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing bearer token"))
		return
	}

	hardwareName, err := h.auth.ValidateToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid token"))
		return
	}

	var req alarmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	fields := req.Fields
	if fields == nil {
		fields = model.RawData{}
	}
	fields["nombre"] = hardwareName

	result, err := h.dispatcher.DispatchRequest(c.Request.Context(), &model.AlertRequest{
		Organization: req.Organization,
		AlertType:    req.AlertType,
		Site:         req.Site,
		HardwareName: hardwareName,
		AlertValue:   req.AlertValue,
		Fields:       fields,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(result))
}

func bearerToken(c *gin.Context) string {
	auth := c.GetHeader("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}
