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

// ConnectionHandler handles connection lifecycle endpoints.
type ConnectionHandler struct {
	connService service.ConnectionService
}

// NewConnectionHandler creates a new ConnectionHandler.
func NewConnectionHandler(connService service.ConnectionService) *ConnectionHandler {
	return &ConnectionHandler{connService: connService}
}

// ApplyConnectionRequest is the request body for a connection application.
type ApplyConnectionRequest struct {
	OwnerName        string          `json:"owner_name" binding:"required"`
	OwnerEmail       string          `json:"owner_email" binding:"required,email"`
	ServiceType      string          `json:"service_type" binding:"required"`
	Category         string          `json:"category" binding:"required"`
	ZoneCode         string          `json:"zone_code" binding:"required"`
	WardCode         string          `json:"ward_code" binding:"required"`
	PremisesNumber   string          `json:"premises_number" binding:"required"`
	SanctionedLoad   decimal.Decimal `json:"sanctioned_load"`
	PropertyArea     decimal.Decimal `json:"property_area"`
	HasWaterSupply   bool            `json:"has_water_supply"`
	HasSewerage      bool            `json:"has_sewerage"`
	SubsidyEligible  bool            `json:"subsidy_eligible"`
	BillingCycleDays int             `json:"billing_cycle_days"`
}

// TransitionRequest is the request body for a status transition.
type TransitionRequest struct {
	Status string `json:"status" binding:"required"`
}

// MeterEventRequest is the request body for appending a meter event.
type MeterEventRequest struct {
	Kind       string    `json:"kind" binding:"required"`
	Note       string    `json:"note"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Apply handles POST /api/v1/connections
func (h *ConnectionHandler) Apply(c *gin.Context) {
	actor, err := middleware.GetActor(c)
	if err != nil {
		HandleError(c, err)
		return
	}

	var req ApplyConnectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	conn, err := h.connService.Apply(c.Request.Context(), &service.ApplyConnectionInput{
		Actor:            actor,
		OwnerName:        req.OwnerName,
		OwnerEmail:       req.OwnerEmail,
		ServiceType:      domain.ServiceType(req.ServiceType),
		Category:         domain.ConsumerCategory(req.Category),
		ZoneCode:         req.ZoneCode,
		WardCode:         req.WardCode,
		PremisesNumber:   req.PremisesNumber,
		SanctionedLoad:   req.SanctionedLoad,
		PropertyArea:     req.PropertyArea,
		HasWaterSupply:   req.HasWaterSupply,
		HasSewerage:      req.HasSewerage,
		SubsidyEligible:  req.SubsidyEligible,
		BillingCycleDays: req.BillingCycleDays,
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, conn)
}

// GetByID handles GET /api/v1/connections/:id
func (h *ConnectionHandler) GetByID(c *gin.Context) {
	actor, err := middleware.GetActor(c)
	if err != nil {
		HandleError(c, err)
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid connection ID")
		return
	}

	conn, err := h.connService.GetByID(c.Request.Context(), actor, id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, conn)
}

// List handles GET /api/v1/connections
func (h *ConnectionHandler) List(c *gin.Context) {
	actor, err := middleware.GetActor(c)
	if err != nil {
		HandleError(c, err)
		return
	}
	offset, limit := pagination(c)

	conns, total, err := h.connService.List(c.Request.Context(), actor, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondPaginated(c, conns, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// Transition handles PATCH /api/v1/connections/:id/status
func (h *ConnectionHandler) Transition(c *gin.Context) {
	actor, err := middleware.GetActor(c)
	if err != nil {
		HandleError(c, err)
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid connection ID")
		return
	}

	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	conn, err := h.connService.Transition(c.Request.Context(), actor, id, domain.ConnectionStatus(req.Status))
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, conn)
}

// RecordMeterEvent handles POST /api/v1/connections/:id/meter-events
func (h *ConnectionHandler) RecordMeterEvent(c *gin.Context) {
	actor, err := middleware.GetActor(c)
	if err != nil {
		HandleError(c, err)
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid connection ID")
		return
	}

	var req MeterEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	event, err := h.connService.RecordMeterEvent(c.Request.Context(), &service.RecordMeterEventInput{
		Actor:        actor,
		ConnectionID: id,
		Kind:         domain.MeterEventKind(req.Kind),
		Note:         req.Note,
		OccurredAt:   req.OccurredAt,
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, event)
}

// ListMeterEvents handles GET /api/v1/connections/:id/meter-events
func (h *ConnectionHandler) ListMeterEvents(c *gin.Context) {
	actor, err := middleware.GetActor(c)
	if err != nil {
		HandleError(c, err)
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid connection ID")
		return
	}
	offset, limit := pagination(c)

	events, total, err := h.connService.ListMeterEvents(c.Request.Context(), actor, id, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondPaginated(c, events, PagMeta{Total: total, Offset: offset, Limit: limit})
}
