package alerts

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/NicoLa5Tor/MQTTArisma/internal/handler"
	"github.com/NicoLa5Tor/MQTTArisma/internal/repository"
	"github.com/NicoLa5Tor/MQTTArisma/internal/service/dispatch"
)

const defaultListLimit = 50

// Handler is the read-only monitoring surface over alert and processing
// state. It never writes; the pipeline is the single writer.
type Handler struct {
	repo       repository.AlertRepository
	dispatcher dispatch.Service
}

func NewHandler(repo repository.AlertRepository, dispatcher dispatch.Service) *Handler {
	return &Handler{repo: repo, dispatcher: dispatcher}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/alertas", h.ListAlerts)
	r.GET("/alertas/:id", h.GetAlert)
	r.GET("/estadisticas", h.Statistics)
}

func (h *Handler) ListAlerts(c *gin.Context) {
	limit := defaultListLimit
	if raw := c.Query("limite"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid limit"))
			return
		}
		limit = parsed
	}

	alerts, err := h.repo.List(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(alerts))
}

func (h *Handler) GetAlert(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid alert ID"))
		return
	}

	alert, err := h.repo.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, handler.NewErrorResponse("alert not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(alert))
}

func (h *Handler) Statistics(c *gin.Context) {
	c.JSON(http.StatusOK, handler.NewSuccessResponse(h.dispatcher.Stats()))
}
