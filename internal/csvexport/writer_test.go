package csvexport

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"palika/internal/domain"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestWriteHeader(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteHeader())
	w.Flush()
	require.NoError(t, w.Error())

	r := csv.NewReader(&buf)
	row, err := r.Read()
	require.NoError(t, err)

	assert.Len(t, row, 18)
	assert.Equal(t, "Bill Number", row[0])
	assert.Equal(t, "Total", row[11])
	assert.Equal(t, "Generated At", row[17])
}

func TestWriteBills(t *testing.T) {
	connID := uuid.New()
	bill := domain.Bill{
		ID:                  uuid.New(),
		BillNumber:          "WTR-20250601-000007",
		ConnectionID:        connID,
		PeriodStart:         time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:           time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		UnitsConsumed:       dec("40"),
		BillableUnits:       dec("40"),
		BaseCharge:          dec("170"),
		SubTotal:            dec("170"),
		TotalAmount:         dec("170"),
		OutstandingAmount:   dec("170"),
		DueDate:             time.Date(2025, 6, 22, 0, 0, 0, 0, time.UTC),
		Status:              domain.BillGenerated,
		CreatedAt:           time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC),
		PreviousOutstanding: decimal.Zero,
		PaidAmount:          decimal.Zero,
		SubsidyAmount:       decimal.Zero,
		PenaltyAmount:       decimal.Zero,
		RebateAmount:        decimal.Zero,
	}

	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.WriteBills([]domain.Bill{bill}))
	w.Flush()
	require.NoError(t, w.Error())

	r := csv.NewReader(&buf)
	rows, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	row := rows[1]
	assert.Equal(t, "WTR-20250601-000007", row[0])
	assert.Equal(t, connID.String(), row[1])
	assert.Equal(t, "2025-05-01", row[2])
	assert.Equal(t, "2025-06-01", row[3])
	assert.Equal(t, "40", row[4])
	assert.Equal(t, "170.00", row[6])
	assert.Equal(t, "170.00", row[11])
	assert.Equal(t, "2025-06-22", row[15])
	assert.Equal(t, "generated", row[16])
	assert.Equal(t, "2025-06-01T10:30:00Z", row[17])
}

func TestWriteBills_Empty(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.WriteBills(nil))
	w.Flush()
	require.NoError(t, w.Error())

	r := csv.NewReader(&buf)
	rows, err := r.ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
