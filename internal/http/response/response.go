package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorBody is the error half of the envelope.
type ErrorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// Pagination describes a paged listing.
type Pagination struct {
	Page      int   `json:"page"`
	PageSize  int   `json:"page_size"`
	Total     int64 `json:"total"`
	TotalPage int64 `json:"total_page"`
}

// Success writes the data envelope.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"data": data})
}

// SuccessWithPage writes a paged data envelope.
func SuccessWithPage(c *gin.Context, data interface{}, pagination Pagination) {
	c.JSON(http.StatusOK, gin.H{
		"data":       data,
		"pagination": pagination,
	})
}

// Error writes the error envelope with the HTTP status the kind maps to.
func Error(c *gin.Context, kind string, message string) {
	ErrorWithDetails(c, kind, message, nil)
}

// ErrorWithDetails writes the error envelope with extra context.
func ErrorWithDetails(c *gin.Context, kind string, message string, details interface{}) {
	body := ErrorBody{
		Code:    kind,
		Message: message,
		Details: details,
	}
	if body.Details == nil {
		if requestID := requestIDFrom(c); requestID != "" {
			body.Details = gin.H{"request_id": requestID}
		}
	}
	c.AbortWithStatusJSON(StatusForKind(kind), gin.H{"error": body})
}

// BuildPagination fills the paging block from a total row count.
func BuildPagination(page, pageSize int, total int64) Pagination {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	totalPage := total / int64(pageSize)
	if total%int64(pageSize) != 0 {
		totalPage++
	}
	return Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: totalPage,
	}
}

func requestIDFrom(c *gin.Context) string {
	if c == nil {
		return ""
	}
	if value, ok := c.Get("request_id"); ok {
		if id, ok := value.(string); ok {
			return id
		}
	}
	return ""
}
