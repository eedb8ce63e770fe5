package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"palika/internal/csvexport"
	"palika/internal/middleware"
	"palika/internal/service"
)

// ReportHandler handles register export endpoints.
type ReportHandler struct {
	billingService service.BillingService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(billingService service.BillingService) *ReportHandler {
	return &ReportHandler{billingService: billingService}
}

// BillRegister handles GET /api/v1/reports/bill-register?from=YYYY-MM-DD&to=YYYY-MM-DD
// and streams the register as CSV.
func (h *ReportHandler) BillRegister(c *gin.Context) {
	actor, err := middleware.GetActor(c)
	if err != nil {
		HandleError(c, err)
		return
	}

	from, err := time.Parse("2006-01-02", c.Query("from"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "from must be YYYY-MM-DD")
		return
	}
	to, err := time.Parse("2006-01-02", c.Query("to"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "to must be YYYY-MM-DD")
		return
	}
	// The window is half-open; include the whole "to" day.
	to = to.AddDate(0, 0, 1)

	bills, err := h.billingService.ListForRegister(c.Request.Context(), actor, from, to)
	if err != nil {
		HandleError(c, err)
		return
	}

	filename := fmt.Sprintf("bill-register-%s.csv", time.Now().UTC().Format("20060102-150405"))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Writer.Write(csvexport.BOM)

	w := csvexport.NewWriter(c.Writer)
	if err := w.WriteHeader(); err != nil {
		return
	}
	if err := w.WriteBills(bills); err != nil {
		return
	}
	w.Flush()
}
