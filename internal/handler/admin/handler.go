package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/NicoLa5Tor/MQTTArisma/internal/handler"
	"github.com/NicoLa5Tor/MQTTArisma/internal/service/provision"
	apperrors "github.com/NicoLa5Tor/MQTTArisma/pkg/errors"
)

// Handler is the operator-facing provisioning surface: registering field
// hardware and rotating its credentials. Devices themselves never call
// these endpoints.
type Handler struct {
	provisioner provision.Service
}

func NewHandler(provisioner provision.Service) *Handler {
	return &Handler{provisioner: provisioner}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/hardware", h.RegisterHardware)
	r.PUT("/hardware/:nombre/clave", h.RotateKey)
}

func (h *Handler) RegisterHardware(c *gin.Context) {
	var input provision.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	hw, err := h.provisioner.RegisterHardware(c.Request.Context(), input)
	if err != nil {
		if apperrors.IsValidation(err) {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(hw))
}

type rotateKeyRequest struct {
	APIKey string `json:"api_key" binding:"required"`
}

func (h *Handler) RotateKey(c *gin.Context) {
	var req rotateKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	if err := h.provisioner.RotateKey(c.Request.Context(), c.Param("nombre"), req.APIKey); err != nil {
		switch {
		case apperrors.IsCode(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, handler.NewErrorResponse("hardware not found"))
		case apperrors.IsValidation(err):
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		default:
			c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		}
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"nombre": c.Param("nombre")}))
}
