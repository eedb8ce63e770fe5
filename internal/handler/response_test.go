package handler_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"palika/internal/domain"
	"palika/internal/handler"
)

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"stale reading date", domain.ErrInvalidReadingDate, http.StatusUnprocessableEntity, "INVALID_READING_DATE"},
		{"rollback reading value", domain.ErrInvalidReadingValue, http.StatusUnprocessableEntity, "INVALID_READING_VALUE"},
		{"negative assessment", domain.ErrInvalidAssessmentValue, http.StatusUnprocessableEntity, "INVALID_ASSESSMENT_VALUE"},
		{"no tariff", domain.ErrNoApplicableTariff, http.StatusUnprocessableEntity, "NO_APPLICABLE_TARIFF"},
		{"duplicate period", domain.ErrDuplicateBillingPeriod, http.StatusConflict, "DUPLICATE_BILLING_PERIOD"},
		{"overpayment", domain.ErrOverpayment, http.StatusUnprocessableEntity, "OVERPAYMENT_REJECTED"},
		{"load exhausted", domain.ErrLoadUnavailable, http.StatusConflict, "LOAD_UNAVAILABLE"},
		{"duplicate connection", domain.ErrDuplicateConnection, http.StatusConflict, "DUPLICATE_CONNECTION"},
		{"connection missing", domain.ErrConnectionNotFound, http.StatusNotFound, "CONNECTION_NOT_FOUND"},
		{"bill missing", domain.ErrBillNotFound, http.StatusNotFound, "BILL_NOT_FOUND"},
		{"tariff overlap", domain.ErrTariffOverlap, http.StatusConflict, "TARIFF_OVERLAP"},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code, msg := handler.MapDomainError(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantCode, code)
			assert.NotEmpty(t, msg)
		})
	}
}

func TestMapDomainError_WrappedError(t *testing.T) {
	wrapped := &domain.LoadUnavailableError{
		Scope:     "zone",
		Requested: decimal.NewFromInt(700),
		Available: decimal.NewFromInt(500),
	}

	status, code, _ := handler.MapDomainError(wrapped)

	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "LOAD_UNAVAILABLE", code)
}

func TestHandleError_LoadUnavailableDetails(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	handler.HandleError(c, &domain.LoadUnavailableError{
		Scope:     "ward",
		Requested: decimal.RequireFromString("7.5"),
		Available: decimal.RequireFromString("3.25"),
	})

	assert.Equal(t, http.StatusConflict, rec.Code)

	var body handler.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	require.NotNil(t, body.Error)
	assert.Equal(t, "LOAD_UNAVAILABLE", body.Error.Code)

	details, ok := body.Error.Details.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "ward", details["scope"])
	assert.Equal(t, "7.5", details["requested"])
	assert.Equal(t, "3.25", details["available_capacity"])
}

func TestHandleError_PlainDomainError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	handler.HandleError(c, domain.ErrBillNotPayable)

	assert.Equal(t, http.StatusConflict, rec.Code)

	var body handler.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	require.NotNil(t, body.Error)
	assert.Equal(t, "BILL_NOT_PAYABLE", body.Error.Code)
	assert.Nil(t, body.Error.Details)
}
