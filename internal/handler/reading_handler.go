package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"palika/internal/middleware"
	"palika/internal/service"
)

// ReadingHandler handles meter reading endpoints.
type ReadingHandler struct {
	readingService service.ReadingService
}

// NewReadingHandler creates a new ReadingHandler.
func NewReadingHandler(readingService service.ReadingService) *ReadingHandler {
	return &ReadingHandler{readingService: readingService}
}

// SubmitReadingRequest is the request body for a meter reading submission.
type SubmitReadingRequest struct {
	ReadingDate time.Time       `json:"reading_date" binding:"required"`
	Value       decimal.Decimal `json:"value" binding:"required"`
	Demand      decimal.Decimal `json:"demand"`
	PowerFactor decimal.Decimal `json:"power_factor"`
}

// Submit handles POST /api/v1/connections/:id/readings
func (h *ReadingHandler) Submit(c *gin.Context) {
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

	var req SubmitReadingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	reading, err := h.readingService.Submit(c.Request.Context(), &service.SubmitReadingInput{
		Actor:        actor,
		ConnectionID: connID,
		ReadingDate:  req.ReadingDate,
		Value:        req.Value,
		Demand:       req.Demand,
		PowerFactor:  req.PowerFactor,
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, reading)
}

// GetByID handles GET /api/v1/readings/:id
func (h *ReadingHandler) GetByID(c *gin.Context) {
	actor, err := middleware.GetActor(c)
	if err != nil {
		HandleError(c, err)
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid reading ID")
		return
	}

	reading, err := h.readingService.GetByID(c.Request.Context(), actor, id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, reading)
}

// ListByConnection handles GET /api/v1/connections/:id/readings
func (h *ReadingHandler) ListByConnection(c *gin.Context) {
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
	offset, limit := pagination(c)

	readings, total, err := h.readingService.ListByConnection(c.Request.Context(), actor, connID, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondPaginated(c, readings, PagMeta{Total: total, Offset: offset, Limit: limit})
}
