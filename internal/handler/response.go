package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"palika/internal/domain"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// PagMeta holds pagination metadata.
type PagMeta struct {
	Total  int `json:"total"`
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondCreated sends a 201 success response.
func RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{Success: true, Data: data})
}

// RespondPaginated sends a 200 success response with pagination metadata.
func RespondPaginated(c *gin.Context, data interface{}, meta PagMeta) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data, Meta: &meta})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
func MapDomainError(err error) (status int, code, msg string) {
	switch {
	case errors.Is(err, domain.ErrInvalidReadingDate):
		return http.StatusUnprocessableEntity, "INVALID_READING_DATE", "reading date must be after the last reading"
	case errors.Is(err, domain.ErrInvalidReadingValue):
		return http.StatusUnprocessableEntity, "INVALID_READING_VALUE", "reading value must not be below the last reading"
	case errors.Is(err, domain.ErrInvalidAssessmentValue):
		return http.StatusUnprocessableEntity, "INVALID_ASSESSMENT_VALUE", "assessed value must not be negative"
	case errors.Is(err, domain.ErrNoApplicableTariff):
		return http.StatusUnprocessableEntity, "NO_APPLICABLE_TARIFF", "no tariff plan covers this connection and date"
	case errors.Is(err, domain.ErrDuplicateBillingPeriod):
		return http.StatusConflict, "DUPLICATE_BILLING_PERIOD", "a bill already exists for this connection and period"
	case errors.Is(err, domain.ErrOverpayment):
		return http.StatusUnprocessableEntity, "OVERPAYMENT_REJECTED", "payment exceeds the outstanding amount"
	case errors.Is(err, domain.ErrLoadUnavailable):
		return http.StatusConflict, "LOAD_UNAVAILABLE", "requested load exceeds available capacity"
	case errors.Is(err, domain.ErrDuplicateConnection):
		return http.StatusConflict, "DUPLICATE_CONNECTION", "a connection of this service type already exists for these premises"
	case errors.Is(err, domain.ErrConnectionNotFound):
		return http.StatusNotFound, "CONNECTION_NOT_FOUND", "connection not found"
	case errors.Is(err, domain.ErrBillNotFound):
		return http.StatusNotFound, "BILL_NOT_FOUND", "bill not found"
	case errors.Is(err, domain.ErrReadingNotFound):
		return http.StatusNotFound, "READING_NOT_FOUND", "meter reading not found"
	case errors.Is(err, domain.ErrReservationNotFound):
		return http.StatusNotFound, "RESERVATION_NOT_FOUND", "load reservation not found"
	case errors.Is(err, domain.ErrTariffNotFound):
		return http.StatusNotFound, "TARIFF_NOT_FOUND", "tariff plan not found"
	case errors.Is(err, domain.ErrTariffOverlap):
		return http.StatusConflict, "TARIFF_OVERLAP", "tariff plan overlaps an existing plan for the same key"
	case errors.Is(err, domain.ErrInvalidTariff):
		return http.StatusBadRequest, "INVALID_TARIFF", "tariff plan definition is invalid"
	case errors.Is(err, domain.ErrNoZoneCapacity):
		return http.StatusUnprocessableEntity, "NO_ZONE_CAPACITY", "no declared capacity for zone"
	case errors.Is(err, domain.ErrNoWardCapacity):
		return http.StatusUnprocessableEntity, "NO_WARD_CAPACITY", "no declared capacity for ward"
	case errors.Is(err, domain.ErrOwnershipDenied):
		return http.StatusForbidden, "OWNERSHIP_NOT_VERIFIED", "premises ownership could not be verified"
	case errors.Is(err, domain.ErrInvalidPaymentAmount):
		return http.StatusBadRequest, "INVALID_PAYMENT_AMOUNT", "payment amount must be positive"
	case errors.Is(err, domain.ErrBillingNotDue):
		return http.StatusConflict, "BILLING_NOT_DUE", "minimum interval since the last bill has not elapsed"
	case errors.Is(err, domain.ErrBillNotCancellable):
		return http.StatusConflict, "BILL_NOT_CANCELLABLE", "bill can no longer be cancelled"
	case errors.Is(err, domain.ErrBillNotPayable):
		return http.StatusConflict, "BILL_NOT_PAYABLE", "bill does not accept payments"
	case errors.Is(err, domain.ErrInvalidStatusChange):
		return http.StatusConflict, "INVALID_STATUS_CHANGE", "status transition is not allowed"
	case errors.Is(err, domain.ErrConnectionNotActive):
		return http.StatusConflict, "CONNECTION_NOT_ACTIVE", "connection is not active"
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, "VALIDATION_ERROR", "request contains invalid values"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "FORBIDDEN", "forbidden"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

var errLog *zap.Logger = zap.NewNop()

// SetErrorLogger installs the logger used for 5xx handler errors.
func SetErrorLogger(log *zap.Logger) { errLog = log }

// HandleError maps a domain error and sends the appropriate error response.
// Load availability rejections carry the exhausted scope and its
// remaining capacity in the error details.
func HandleError(c *gin.Context, err error) {
	status, code, msg := MapDomainError(err)
	if status >= 500 {
		requestID, _ := c.Get("request_id")
		errLog.Error("internal error",
			zap.Any("request_id", requestID), zap.Error(err))
	}

	var unavailable *domain.LoadUnavailableError
	if errors.As(err, &unavailable) {
		c.JSON(status, APIResponse{
			Success: false,
			Error: &APIError{
				Code:    code,
				Message: msg,
				Details: gin.H{
					"scope":              unavailable.Scope,
					"requested":          unavailable.Requested,
					"available_capacity": unavailable.Available,
				},
			},
		})
		return
	}
	RespondError(c, status, code, msg)
}
