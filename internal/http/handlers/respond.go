package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kicon/kiconapi/internal/apperr"
)

type APIError struct {
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"requestId,omitempty"`
	Details   interface{} `json:"details,omitempty"`
}

// Envelope is the body of every JSON response.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message"`
	Total   *int64      `json:"total,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

func requestIDFrom(ctx *gin.Context) string {
	v, ok := ctx.Get("request_id")

	if ok {
		s, ok := v.(string)
		if ok && s != "" {
			return s
		}
	}

	// fallback header
	return ctx.GetHeader("X-Request-Id")
}

func RespondOK(ctx *gin.Context, status int, data interface{}, message string) {
	ctx.JSON(status, Envelope{Success: true, Data: data, Message: message})
}

func RespondList(ctx *gin.Context, data interface{}, total int64, message string) {
	ctx.JSON(http.StatusOK, Envelope{Success: true, Data: data, Message: message, Total: &total})
}

func RespondError(ctx *gin.Context, status int, code, message string, details interface{}) {
	ctx.AbortWithStatusJSON(status, Envelope{
		Success: false,
		Message: message,
		Error: &APIError{
			Code:      code,
			Message:   message,
			RequestID: requestIDFrom(ctx),
			Details:   details,
		},
	})
}

func RespondBadRequest(ctx *gin.Context, message string, details interface{}) {
	RespondError(ctx, http.StatusBadRequest, "invalid_request", message, details)
}

func RespondNotFound(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusNotFound, "not_found", message, nil)
}

func RespondInternal(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusInternalServerError, "internal_error", message, nil)
}

func RespondConflict(ctx *gin.Context, code, message string) {
	RespondError(ctx, http.StatusConflict, code, message, nil)
}

func RespondUnAuthorized(ctx *gin.Context, code, message string) {
	RespondError(ctx, http.StatusUnauthorized, code, message, nil)
}

func RespondValidation(ctx *gin.Context, verr *apperr.ValidationError) {
	RespondBadRequest(ctx, "Validation failed", gin.H{"fields": verr.Violations})
}

// RespondServiceError maps the error taxonomy onto status codes. Anything
// unrecognised is logged and reported with the generic fallback message only.
func RespondServiceError(ctx *gin.Context, log *slog.Logger, err error, notFound, fallback string) {
	var verr *apperr.ValidationError
	var cerr *apperr.ConflictError

	switch {
	case errors.As(err, &verr):
		RespondValidation(ctx, verr)
	case errors.As(err, &cerr):
		RespondConflict(ctx, cerr.Code, cerr.Message)
	case errors.Is(err, apperr.ErrNotFound):
		RespondNotFound(ctx, notFound)
	default:
		log.ErrorContext(ctx.Request.Context(), fallback,
			"err", err,
			"request_id", requestIDFrom(ctx),
			"route", ctx.FullPath(),
		)
		RespondInternal(ctx, fallback)
	}
}
