// Package csvexport renders bill registers as CSV for reconciliation
// with the municipal accounting system.
package csvexport

import (
	"encoding/csv"
	"io"
	"time"

	"palika/internal/domain"
)

// BOM is the UTF-8 byte order mark, for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns defines the bill register header row.
var columns = []string{
	"Bill Number",
	"Connection ID",
	"Period Start",
	"Period End",
	"Units Consumed",
	"Billable Units",
	"Base Charge",
	"Subsidy",
	"Penalty",
	"Rebate",
	"Sub Total",
	"Total",
	"Previous Outstanding",
	"Paid",
	"Outstanding",
	"Due Date",
	"Status",
	"Generated At",
}

// Writer wraps csv.Writer for exporting bill registers.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the register header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteBills converts a batch of bills to CSV rows and writes them.
func (w *Writer) WriteBills(bills []domain.Bill) error {
	for i := range bills {
		if err := w.csv.Write(billToRow(&bills[i])); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

func billToRow(bill *domain.Bill) []string {
	return []string{
		bill.BillNumber,
		bill.ConnectionID.String(),
		bill.PeriodStart.Format("2006-01-02"),
		bill.PeriodEnd.Format("2006-01-02"),
		bill.UnitsConsumed.String(),
		bill.BillableUnits.String(),
		bill.BaseCharge.StringFixed(2),
		bill.SubsidyAmount.StringFixed(2),
		bill.PenaltyAmount.StringFixed(2),
		bill.RebateAmount.StringFixed(2),
		bill.SubTotal.StringFixed(2),
		bill.TotalAmount.StringFixed(2),
		bill.PreviousOutstanding.StringFixed(2),
		bill.PaidAmount.StringFixed(2),
		bill.OutstandingAmount.StringFixed(2),
		bill.DueDate.Format("2006-01-02"),
		string(bill.Status),
		bill.CreatedAt.Format(time.RFC3339),
	}
}
