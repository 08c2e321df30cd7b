package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/expense-tracker/internal/core"
	"github.com/example/expense-tracker/internal/expenses"
	"github.com/example/expense-tracker/internal/middleware"
	"github.com/example/expense-tracker/internal/session"
	"github.com/example/expense-tracker/internal/view"
)

// errorMapper writes service errors as JSON. Errors that invalidate the
// session also clear the client's stored token.
type errorMapper struct {
	sessions *session.Store
	logger   *zap.Logger
}

// mapErrorToStatus maps errors from the core services to HTTP status codes and ErrorResponse.
func (m errorMapper) mapErrorToStatus(c *gin.Context, err error) {
	var (
		statusCode  int
		errResponse ErrorResponse
		ve          *core.ValidationError
		ae          *core.AuthError
		ne          *core.NetworkError
		nc          *core.NotConfiguredError
	)

	switch {
	case errors.As(err, &ve):
		statusCode = http.StatusBadRequest
		errResponse = ErrorResponse{Error: "Validation failed", Fields: ve.Fields}
	case errors.As(err, &ae):
		statusCode = http.StatusUnauthorized
		errResponse = ErrorResponse{Error: ae.Message, ForceLogout: ae.ForceLogout}
		if ae.ForceLogout {
			m.clearSession(c)
		}
	case errors.As(err, &nc):
		statusCode = http.StatusServiceUnavailable
		errResponse = ErrorResponse{Error: nc.Error(), Missing: nc.Missing}
	case errors.As(err, &ne):
		statusCode = http.StatusBadGateway
		errResponse = ErrorResponse{Error: ne.Message}
	case errors.Is(err, core.ErrExpenseNotFound):
		statusCode = http.StatusNotFound
		errResponse = ErrorResponse{Error: "Expense not found"}
	case errors.Is(err, expenses.ErrBusy):
		statusCode = http.StatusConflict
		errResponse = ErrorResponse{Error: "Another change is still being saved"}
	case errors.Is(err, expenses.ErrStale):
		statusCode = http.StatusRequestTimeout
		errResponse = ErrorResponse{Error: "Request was cancelled"}
	case errors.Is(err, core.ErrPremiumNotEligible):
		statusCode = http.StatusForbidden
		errResponse = ErrorResponse{Error: "Premium is available once your expenses total more than ₹ 10000", Details: err.Error()}
	case errors.Is(err, core.ErrInvalidPhoto):
		statusCode = http.StatusBadRequest
		errResponse = ErrorResponse{Error: "Photo must be an image", Details: err.Error()}
	case errors.Is(err, core.ErrPhotoStorageUnavailable):
		statusCode = http.StatusServiceUnavailable
		errResponse = ErrorResponse{Error: "Photo upload is not available"}
	case errors.Is(err, view.ErrInvalidTransition), errors.Is(err, view.ErrUnknownScreen):
		statusCode = http.StatusBadRequest
		errResponse = ErrorResponse{Error: "Invalid navigation", Details: err.Error()}
	default:
		m.logger.Error("Internal Server Error", zap.String("request_id", middleware.RequestID(c)), zap.Error(err))
		statusCode = http.StatusInternalServerError
		errResponse = ErrorResponse{Error: "An unexpected internal server error occurred."}
	}
	c.JSON(statusCode, errResponse)
}

func (m errorMapper) clearSession(c *gin.Context) {
	clientID := middleware.ClientID(c)
	if err := m.sessions.Clear(c.Request.Context(), clientID); err != nil {
		m.logger.Error("Failed to clear invalid session", zap.String("client_id", clientID), zap.Error(err))
	}
}

func badPayload(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
}
