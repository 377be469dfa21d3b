package shared

import (
	"github.com/talowa-app/internal/http/response"
	"github.com/talowa-app/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLog returns a logger carrying the request id.
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil {
		return logger.S()
	}
	if requestID, ok := c.Get("request_id"); ok {
		if id, ok := requestID.(string); ok && id != "" {
			return logger.SW("request_id", id)
		}
	}
	return logger.S()
}

// CurrentUserID reads the authenticated member id set by the middleware.
func CurrentUserID(c *gin.Context) (uint, bool) {
	return contextUint(c, "user_id")
}

// CurrentAdminID reads the authenticated admin id set by the middleware.
func CurrentAdminID(c *gin.Context) (uint, bool) {
	return contextUint(c, "admin_id")
}

func contextUint(c *gin.Context, key string) (uint, bool) {
	value, exists := c.Get(key)
	if !exists {
		response.Error(c, response.KindUnauthenticated, "authentication required")
		return 0, false
	}
	switch v := value.(type) {
	case uint:
		return v, true
	case int:
		if v < 0 {
			response.Error(c, response.KindUnauthenticated, "authentication required")
			return 0, false
		}
		return uint(v), true
	case float64:
		if v < 0 {
			response.Error(c, response.KindUnauthenticated, "authentication required")
			return 0, false
		}
		return uint(v), true
	default:
		response.Error(c, response.KindInternal, "invalid auth context")
		return 0, false
	}
}
