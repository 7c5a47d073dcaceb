package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	activationdomain "github.com/odontix/odontix/internal/activation/domain"
	auditdomain "github.com/odontix/odontix/internal/audit/domain"
	catalogdomain "github.com/odontix/odontix/internal/catalog/domain"
	graphdomain "github.com/odontix/odontix/internal/graph/domain"
	subscriptiondomain "github.com/odontix/odontix/internal/subscription/domain"
	"gorm.io/gorm"
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
	Type     string            `json:"type"`
	Message  string            `json:"message"`
	Missing  []string          `json:"missing,omitempty"`
	Blocking []string          `json:"blocking,omitempty"`
	Errors   []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
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
			{Field: field, Code: code, Message: message},
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

	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	// A failed activation names exactly which prerequisites are missing, a
	// failed deactivation exactly which dependents still block. That content
	// is a contract, never collapsed into a generic failure.
	var unmet *activationdomain.UnmetDependenciesError
	if errors.As(err, &unmet) {
		names := activationdomain.Names(unmet.Missing)
		return http.StatusPreconditionFailed, errorPayload{
			Type:    "unmet_dependencies",
			Message: "Activation requires: " + strings.Join(names, ", "),
			Missing: names,
		}
	}

	var blocking *activationdomain.BlockingDependentsError
	if errors.As(err, &blocking) {
		names := activationdomain.Names(blocking.Blocking)
		return http.StatusPreconditionFailed, errorPayload{
			Type:     "blocking_dependents",
			Message:  "Deactivate these first: " + strings.Join(names, ", "),
			Blocking: names,
		}
	}

	if isValidationError(err) {
		code := err.Error()
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{Field: validationErrorField(code), Code: code, Message: "invalid value"},
			},
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: notFoundMessage(err),
		}
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
	case errors.Is(err, activationdomain.ErrConcurrencyConflict),
		errors.Is(err, activationdomain.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "temporary failure, try again",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, catalogdomain.ErrInvalidKey),
		errors.Is(err, catalogdomain.ErrInvalidName),
		errors.Is(err, catalogdomain.ErrInvalidCategory),
		errors.Is(err, graphdomain.ErrInvalidKey),
		errors.Is(err, subscriptiondomain.ErrInvalidTenant),
		errors.Is(err, subscriptiondomain.ErrInvalidModuleKey),
		errors.Is(err, activationdomain.ErrInvalidTenant),
		errors.Is(err, activationdomain.ErrInvalidModuleKey),
		errors.Is(err, auditdomain.ErrInvalidTenant),
		errors.Is(err, auditdomain.ErrInvalidPageToken),
		errors.Is(err, auditdomain.ErrInvalidTimeRange):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, catalogdomain.ErrNotFound),
		errors.Is(err, graphdomain.ErrModuleNotFound),
		errors.Is(err, graphdomain.ErrEdgeNotFound),
		errors.Is(err, subscriptiondomain.ErrModuleNotFound),
		errors.Is(err, subscriptiondomain.ErrNotSubscribed),
		errors.Is(err, activationdomain.ErrModuleNotFound),
		errors.Is(err, activationdomain.ErrNotSubscribed),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, catalogdomain.ErrDuplicateKey),
		errors.Is(err, graphdomain.ErrSelfDependency),
		errors.Is(err, graphdomain.ErrDuplicateEdge),
		errors.Is(err, graphdomain.ErrCycleDetected),
		errors.Is(err, subscriptiondomain.ErrAlreadySubscribed),
		errors.Is(err, subscriptiondomain.ErrModuleStillActive):
		return true
	default:
		return false
	}
}

func notFoundMessage(err error) string {
	switch {
	case errors.Is(err, activationdomain.ErrNotSubscribed),
		errors.Is(err, subscriptiondomain.ErrNotSubscribed):
		return "tenant is not subscribed to this module"
	default:
		return "not found"
	}
}

func validationErrorField(code string) string {
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}
