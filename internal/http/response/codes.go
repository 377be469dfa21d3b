package response

import "net/http"

// Error kinds surfaced by the API.
const (
	KindInvalidFormat           = "INVALID_FORMAT"
	KindSelfReferral            = "SELF_REFERRAL"
	KindCodeNotFound            = "CODE_NOT_FOUND"
	KindNotFound                = "NOT_FOUND"
	KindCodeInactive            = "CODE_INACTIVE"
	KindAlreadyReferred         = "ALREADY_REFERRED"
	KindUnauthenticated         = "UNAUTHENTICATED"
	KindForbidden               = "FORBIDDEN"
	KindCodeGenerationExhausted = "CODE_GENERATION_EXHAUSTED"
	KindRateLimited             = "RATE_LIMITED"
	KindConflict                = "CONFLICT"
	KindInternal                = "INTERNAL"
)

// StatusForKind maps an error kind onto its HTTP status.
func StatusForKind(kind string) int {
	switch kind {
	case KindInvalidFormat, KindSelfReferral:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindCodeNotFound, KindNotFound:
		return http.StatusNotFound
	case KindCodeInactive, KindAlreadyReferred, KindConflict:
		return http.StatusConflict
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
