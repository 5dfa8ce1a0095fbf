package verify

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/NicoLa5Tor/MQTTArisma/internal/handler"
	"github.com/NicoLa5Tor/MQTTArisma/internal/model"
	"github.com/NicoLa5Tor/MQTTArisma/internal/repository"
	"github.com/NicoLa5Tor/MQTTArisma/internal/service/dispatch"
	"github.com/NicoLa5Tor/MQTTArisma/internal/service/verification"
)

// Handler exposes the synchronous verification API used by the utility
// scripts and external health checks. Not-found is a normal response
// with existe:false; only store failures surface as server errors.
type Handler struct {
	verifier   verification.Service
	dispatcher dispatch.Service
}

func NewHandler(verifier verification.Service, dispatcher dispatch.Service) *Handler {
	return &Handler{verifier: verifier, dispatcher: dispatcher}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/verificar-hardware", h.VerifyHardware)
	r.POST("/verificar-empresa", h.VerifyOrganization)
	r.POST("/verificar-sede", h.VerifySite)
	r.POST("/prueba-completa", h.FullTest)
}

type hardwareRequest struct {
	Name string `json:"nombre" binding:"required"`
}

func (h *Handler) VerifyHardware(c *gin.Context) {
	var req hardwareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	hw, err := h.verifier.LookupHardware(c.Request.Context(), req.Name)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusOK, handler.NewAbsenceResponse("hardware no registrado"))
			return
		}
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, handler.NewExistenceResponse("hardware", hw))
}

type organizationRequest struct {
	Name string `json:"nombre" binding:"required"`
}

func (h *Handler) VerifyOrganization(c *gin.Context) {
	var req organizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	org, err := h.verifier.LookupOrganization(c.Request.Context(), req.Name)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusOK, handler.NewAbsenceResponse("empresa no registrada"))
			return
		}
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, handler.NewExistenceResponse("empresa", org))
}

type siteRequest struct {
	Organization string `json:"empresa" binding:"required"`
	Site         string `json:"sede" binding:"required"`
}

func (h *Handler) VerifySite(c *gin.Context) {
	var req siteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	site, err := h.verifier.LookupSite(c.Request.Context(), req.Organization, req.Site)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusOK, handler.NewAbsenceResponse("sede no registrada"))
			return
		}
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, handler.NewExistenceResponse("sede", site))
}

type fullTestRequest struct {
	Organization string `json:"empresa" binding:"required"`
	AlertType    string `json:"tipo_alerta" binding:"required"`
	Site         string `json:"sede" binding:"required"`
	Name         string `json:"nombre" binding:"required"`
	AlertValue   string `json:"alerta"`
}

// FullTest runs the entire pipeline synchronously, exactly as a pub/sub
// delivery would, and returns the composed dispatcher result.
func (h *Handler) FullTest(c *gin.Context) {
	var req fullTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	result, err := h.dispatcher.DispatchRequest(c.Request.Context(), &model.AlertRequest{
		Organization: req.Organization,
		AlertType:    req.AlertType,
		Site:         req.Site,
		HardwareName: req.Name,
		AlertValue:   req.AlertValue,
		Fields: model.RawData{
			"sede":   req.Site,
			"alerta": req.AlertValue,
			"nombre": req.Name,
		},
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(result))
}
