package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"palika/internal/domain"
	"palika/internal/middleware"
	"palika/internal/service"
)

// TariffHandler handles tariff administration endpoints.
type TariffHandler struct {
	tariffService service.TariffService
}

// NewTariffHandler creates a new TariffHandler.
func NewTariffHandler(tariffService service.TariffService) *TariffHandler {
	return &TariffHandler{tariffService: tariffService}
}

// RateComponentRequest is one charge component in a tariff definition.
type RateComponentRequest struct {
	Name      string           `json:"name" binding:"required"`
	Kind      string           `json:"kind" binding:"required"`
	Rate      decimal.Decimal  `json:"rate"`
	Attribute string           `json:"attribute"`
	Bands     domain.SlabBands `json:"bands"`
	Position  int              `json:"position"`
}

// CreateTariffRequest is the request body for defining a tariff plan.
type CreateTariffRequest struct {
	Name            string                 `json:"name" binding:"required"`
	ServiceType     string                 `json:"service_type" binding:"required"`
	Category        string                 `json:"category" binding:"required"`
	ZoneCode        string                 `json:"zone_code" binding:"required"`
	BaseRate        decimal.Decimal        `json:"base_rate" binding:"required"`
	FreeUnits       decimal.Decimal        `json:"free_units"`
	SubsidyPercent  decimal.Decimal        `json:"subsidy_percent"`
	SubsidyCap      decimal.Decimal        `json:"subsidy_cap"`
	PFThreshold     decimal.Decimal        `json:"pf_threshold"`
	PFPenaltyFactor decimal.Decimal        `json:"pf_penalty_factor"`
	EffectiveFrom   time.Time              `json:"effective_from" binding:"required"`
	EffectiveUntil  *time.Time             `json:"effective_until"`
	Components      []RateComponentRequest `json:"components"`
}

// Create handles POST /api/v1/tariffs
func (h *TariffHandler) Create(c *gin.Context) {
	actor, err := middleware.GetActor(c)
	if err != nil {
		HandleError(c, err)
		return
	}

	var req CreateTariffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	components := make([]domain.RateComponent, len(req.Components))
	for i, comp := range req.Components {
		components[i] = domain.RateComponent{
			Name:      comp.Name,
			Kind:      domain.ComponentKind(comp.Kind),
			Rate:      comp.Rate,
			Attribute: comp.Attribute,
			Bands:     comp.Bands,
			Position:  comp.Position,
		}
	}

	plan, err := h.tariffService.Create(c.Request.Context(), &service.CreateTariffInput{
		Actor:           actor,
		Name:            req.Name,
		ServiceType:     domain.ServiceType(req.ServiceType),
		Category:        domain.ConsumerCategory(req.Category),
		ZoneCode:        req.ZoneCode,
		BaseRate:        req.BaseRate,
		FreeUnits:       req.FreeUnits,
		SubsidyPercent:  req.SubsidyPercent,
		SubsidyCap:      req.SubsidyCap,
		PFThreshold:     req.PFThreshold,
		PFPenaltyFactor: req.PFPenaltyFactor,
		EffectiveFrom:   req.EffectiveFrom,
		EffectiveUntil:  req.EffectiveUntil,
		Components:      components,
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, plan)
}

// GetByID handles GET /api/v1/tariffs/:id
func (h *TariffHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid tariff ID")
		return
	}

	plan, err := h.tariffService.GetByID(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, plan)
}

// List handles GET /api/v1/tariffs?service_type=...
func (h *TariffHandler) List(c *gin.Context) {
	serviceType := domain.ServiceType(c.Query("service_type"))
	if _, ok := domain.BillPrefixes[serviceType]; !ok {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "unknown service_type")
		return
	}
	offset, limit := pagination(c)

	plans, total, err := h.tariffService.List(c.Request.Context(), serviceType, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondPaginated(c, plans, PagMeta{Total: total, Offset: offset, Limit: limit})
}
