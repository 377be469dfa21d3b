package shared

import (
	"errors"

	"github.com/talowa-app/internal/http/response"
	"github.com/talowa-app/internal/service"

	"github.com/gin-gonic/gin"
)

// kindOf maps a service sentinel onto the API error kind.
func kindOf(err error) string {
	switch {
	case errors.Is(err, service.ErrInvalidCodeFormat), errors.Is(err, service.ErrInvalidPayload), errors.Is(err, service.ErrWeakPassword):
		return response.KindInvalidFormat
	case errors.Is(err, service.ErrSelfReferral):
		return response.KindSelfReferral
	case errors.Is(err, service.ErrCodeNotFound):
		return response.KindCodeNotFound
	case errors.Is(err, service.ErrNotFound):
		return response.KindNotFound
	case errors.Is(err, service.ErrCodeInactive):
		return response.KindCodeInactive
	case errors.Is(err, service.ErrAlreadyReferred):
		return response.KindAlreadyReferred
	case errors.Is(err, service.ErrPhoneExists), errors.Is(err, service.ErrNotOrphan):
		return response.KindConflict
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrUserDisabled),
		errors.Is(err, service.ErrInvalidSignature), errors.Is(err, service.ErrCaptchaInvalid):
		return response.KindUnauthenticated
	case errors.Is(err, service.ErrCodeGenerationExhausted):
		return response.KindCodeGenerationExhausted
	default:
		return response.KindInternal
	}
}

// RespondServiceError maps a service error to the envelope and logs
// internals.
func RespondServiceError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	kind := kindOf(err)
	message := err.Error()
	if kind == response.KindInternal {
		RequestLog(c).Errorw("handler_error", "error", err)
		message = "internal error"
	}
	response.Error(c, kind, message)
}
