package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	categorydomain "github.com/atelierlabs/fotura/internal/category/domain"
	settingsdomain "github.com/atelierlabs/fotura/internal/pricingsettings/domain"
	tabledomain "github.com/atelierlabs/fotura/internal/pricingtable/domain"
	sessiondomain "github.com/atelierlabs/fotura/internal/session/domain"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrConflict       = errors.New("conflict")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   "request",
					Code:    err.Error(),
					Message: err.Error(),
				},
			},
		}
	}

	switch {
	case errors.Is(err, ErrConflict),
		errors.Is(err, categorydomain.ErrDuplicate):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "conflict",
		}
	case errors.Is(err, sessiondomain.ErrManualHistorical):
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "manual_historical",
			Message: "manual historical sessions are exempt from recalculation",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return true
	case isTableValidationError(err),
		isCategoryValidationError(err),
		isSettingsValidationError(err),
		isSessionValidationError(err):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, tabledomain.ErrNotFound),
		errors.Is(err, categorydomain.ErrNotFound),
		errors.Is(err, sessiondomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func isTableValidationError(err error) bool {
	switch err {
	case tabledomain.ErrInvalidName,
		tabledomain.ErrInvalidRangeMin,
		tabledomain.ErrInvalidRangeMax,
		tabledomain.ErrInvalidUnit,
		tabledomain.ErrInvalidID:
		return true
	default:
		return false
	}
}

func isCategoryValidationError(err error) bool {
	switch err {
	case categorydomain.ErrInvalidName,
		categorydomain.ErrInvalidTable,
		categorydomain.ErrInvalidID:
		return true
	default:
		return false
	}
}

func isSettingsValidationError(err error) bool {
	switch err {
	case settingsdomain.ErrInvalidMode,
		settingsdomain.ErrInvalidFixedValue,
		settingsdomain.ErrInvalidTable:
		return true
	default:
		return false
	}
}

func isSessionValidationError(err error) bool {
	switch err {
	case sessiondomain.ErrInvalidClient,
		sessiondomain.ErrInvalidCategory,
		sessiondomain.ErrInvalidQuantity,
		sessiondomain.ErrInvalidPrice,
		sessiondomain.ErrInvalidID,
		sessiondomain.ErrMissingManualData:
		return true
	default:
		return false
	}
}
