package errorhandler

import (
	"context"
	"net/http"

	"github.com/scholarbee/scholarbee-api/internal/pkg/apperror"
	"github.com/scholarbee/scholarbee-api/internal/pkg/logger"
	"github.com/scholarbee/scholarbee-api/internal/pkg/response"
)

type mapping struct {
	status int
	code   string
}

var kinds = map[apperror.Kind]mapping{
	apperror.KindValidation:        {http.StatusBadRequest, "VALIDATION_ERROR"},
	apperror.KindAuthorization:     {http.StatusForbidden, "FORBIDDEN"},
	apperror.KindNotFound:          {http.StatusNotFound, "NOT_FOUND"},
	apperror.KindDuplicate:         {http.StatusConflict, "DUPLICATE"},
	apperror.KindState:             {http.StatusConflict, "INVALID_STATE"},
	apperror.KindCapacity:          {http.StatusConflict, "CAPACITY_EXCEEDED"},
	apperror.KindInsufficientFunds: {http.StatusConflict, "INSUFFICIENT_FUNDS"},
	apperror.KindUnavailable:       {http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"},
}

// Status returns the HTTP status and error code for err
func Status(err error) (int, string) {
	if m, ok := kinds[apperror.KindOf(err)]; ok {
		return m.status, m.code
	}
	return http.StatusInternalServerError, "INTERNAL_ERROR"
}

// Handle writes the error response for a service error.
// Classified errors are client errors; anything else is logged and hidden behind a 500.
func Handle(ctx context.Context, w http.ResponseWriter, err error) {
	appErr, ok := apperror.As(err)
	if !ok {
		logger.FromContext(ctx).Error().
			Err(err).
			Str("request_id", logger.RequestID(ctx)).
			Msg("Request error")
		response.InternalError(w)
		return
	}

	status, code := Status(err)
	logger.FromContext(ctx).Debug().
		Str("error_code", code).
		Int("status_code", status).
		Str("error_message", appErr.Message).
		Msg("Request rejected")

	response.ErrorWithDetails(w, status, code, appErr.Message, appErr.Details)
}

// HandlePanicError logs a recovered panic and sends a 500
func HandlePanicError(ctx context.Context, w http.ResponseWriter, panicErr interface{}, stackTrace string) {
	logger.FromContext(ctx).Error().
		Str("request_id", logger.RequestID(ctx)).
		Interface("panic_error", panicErr).
		Str("panic_stack", stackTrace).
		Msg("Request panic error")

	response.InternalError(w)
}
