package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"palika/internal/middleware"
	"palika/internal/service"
)

// LoadHandler handles load-accounting endpoints.
type LoadHandler struct {
	loadService service.LoadService
	connService service.ConnectionService
}

// NewLoadHandler creates a new LoadHandler.
func NewLoadHandler(loadService service.LoadService, connService service.ConnectionService) *LoadHandler {
	return &LoadHandler{loadService: loadService, connService: connService}
}

// CheckAvailabilityRequest is the request body for a capacity pre-check.
type CheckAvailabilityRequest struct {
	WardCode      string          `json:"ward_code" binding:"required"`
	RequestedLoad decimal.Decimal `json:"requested_load" binding:"required"`
}

// DeclareCapacityRequest is the request body for declaring a capacity pool.
type DeclareCapacityRequest struct {
	ZoneCode         string          `json:"zone_code" binding:"required"`
	WardCode         string          `json:"ward_code"`
	Name             string          `json:"name"`
	DeclaredCapacity decimal.Decimal `json:"declared_capacity" binding:"required"`
}

// CheckAvailability handles POST /api/v1/load/availability
func (h *LoadHandler) CheckAvailability(c *gin.Context) {
	var req CheckAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	report, err := h.loadService.CheckAvailability(c.Request.Context(), req.WardCode, req.RequestedLoad)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, report)
}

// GetReservation handles GET /api/v1/connections/:id/load
func (h *LoadHandler) GetReservation(c *gin.Context) {
	actor, err := middleware.GetActor(c)
	if err != nil {
		HandleError(c, err)
		return
	}
	connID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid connection ID")
		return
	}

	conn, err := h.connService.GetByID(c.Request.Context(), actor, connID)
	if err != nil {
		HandleError(c, err)
		return
	}
	res, err := h.loadService.GetReservation(c.Request.Context(), actor, conn)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, res)
}

// RecordDemandRequest is the request body for an observed demand sample.
type RecordDemandRequest struct {
	ObservedDemand decimal.Decimal `json:"observed_demand" binding:"required"`
}

// RecordDemand handles POST /api/v1/connections/:id/demand
func (h *LoadHandler) RecordDemand(c *gin.Context) {
	actor, err := middleware.GetActor(c)
	if err != nil {
		HandleError(c, err)
		return
	}
	connID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid connection ID")
		return
	}

	var req RecordDemandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	conn, err := h.connService.GetByID(c.Request.Context(), actor, connID)
	if err != nil {
		HandleError(c, err)
		return
	}
	if err := h.loadService.RecordDemand(c.Request.Context(), conn, req.ObservedDemand); err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"connection_id": connID})
}

// SheddingOrder handles GET /api/v1/load/shedding-order
func (h *LoadHandler) SheddingOrder(c *gin.Context) {
	actor, err := middleware.GetActor(c)
	if err != nil {
		HandleError(c, err)
		return
	}

	order, err := h.loadService.SheddingOrder(c.Request.Context(), actor)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, order)
}

// DeclareZone handles PUT /api/v1/load/zones
func (h *LoadHandler) DeclareZone(c *gin.Context) {
	actor, err := middleware.GetActor(c)
	if err != nil {
		HandleError(c, err)
		return
	}

	var req DeclareCapacityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	err = h.loadService.DeclareZone(c.Request.Context(), &service.DeclareCapacityInput{
		Actor:            actor,
		ZoneCode:         req.ZoneCode,
		Name:             req.Name,
		DeclaredCapacity: req.DeclaredCapacity,
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"zone_code": req.ZoneCode})
}

// DeclareWard handles PUT /api/v1/load/wards
func (h *LoadHandler) DeclareWard(c *gin.Context) {
	actor, err := middleware.GetActor(c)
	if err != nil {
		HandleError(c, err)
		return
	}

	var req DeclareCapacityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	if req.WardCode == "" {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "ward_code is required")
		return
	}

	err = h.loadService.DeclareWard(c.Request.Context(), &service.DeclareCapacityInput{
		Actor:            actor,
		ZoneCode:         req.ZoneCode,
		WardCode:         req.WardCode,
		Name:             req.Name,
		DeclaredCapacity: req.DeclaredCapacity,
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"ward_code": req.WardCode})
}
