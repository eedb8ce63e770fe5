package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"palika/internal/domain"
	"palika/internal/middleware"
	"palika/internal/service"
)

// BillHandler handles bill lifecycle endpoints.
type BillHandler struct {
	billingService service.BillingService
}

// NewBillHandler creates a new BillHandler.
func NewBillHandler(billingService service.BillingService) *BillHandler {
	return &BillHandler{billingService: billingService}
}

// GenerateBillRequest is the request body for generating a bill.
type GenerateBillRequest struct {
	ConnectionID uuid.UUID `json:"connection_id" binding:"required"`
}

// PayBillRequest is the request body for recording a payment.
type PayBillRequest struct {
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	Method    string          `json:"method" binding:"required"`
	Reference string          `json:"reference"`
}

// Generate handles POST /api/v1/bills
func (h *BillHandler) Generate(c *gin.Context) {
	actor, err := middleware.GetActor(c)
	if err != nil {
		HandleError(c, err)
		return
	}

	var req GenerateBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	bill, err := h.billingService.Generate(c.Request.Context(), &service.GenerateBillInput{
		Actor:        actor,
		ConnectionID: req.ConnectionID,
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, bill)
}

// GetByID handles GET /api/v1/bills/:id
func (h *BillHandler) GetByID(c *gin.Context) {
	actor, err := middleware.GetActor(c)
	if err != nil {
		HandleError(c, err)
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid bill ID")
		return
	}

	bill, err := h.billingService.GetByID(c.Request.Context(), actor, id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, bill)
}

// ListByConnection handles GET /api/v1/connections/:id/bills
func (h *BillHandler) ListByConnection(c *gin.Context) {
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

	bills, total, err := h.billingService.ListByConnection(c.Request.Context(), actor, connID, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondPaginated(c, bills, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// Pay handles POST /api/v1/bills/:id/payments
func (h *BillHandler) Pay(c *gin.Context) {
	actor, err := middleware.GetActor(c)
	if err != nil {
		HandleError(c, err)
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid bill ID")
		return
	}

	var req PayBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	bill, err := h.billingService.Pay(c.Request.Context(), &service.PayBillInput{
		Actor:     actor,
		BillID:    id,
		Amount:    req.Amount,
		Method:    domain.PaymentMethod(req.Method),
		Reference: req.Reference,
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, bill)
}

// ListPayments handles GET /api/v1/bills/:id/payments
func (h *BillHandler) ListPayments(c *gin.Context) {
	actor, err := middleware.GetActor(c)
	if err != nil {
		HandleError(c, err)
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid bill ID")
		return
	}

	payments, err := h.billingService.ListPayments(c.Request.Context(), actor, id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, payments)
}

// MarkSent handles POST /api/v1/bills/:id/send
func (h *BillHandler) MarkSent(c *gin.Context) {
	actor, err := middleware.GetActor(c)
	if err != nil {
		HandleError(c, err)
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid bill ID")
		return
	}

	bill, err := h.billingService.MarkSent(c.Request.Context(), actor, id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, bill)
}

// Cancel handles POST /api/v1/bills/:id/cancel
func (h *BillHandler) Cancel(c *gin.Context) {
	actor, err := middleware.GetActor(c)
	if err != nil {
		HandleError(c, err)
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid bill ID")
		return
	}

	bill, err := h.billingService.Cancel(c.Request.Context(), actor, id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, bill)
}
