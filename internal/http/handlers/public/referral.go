package public

import (
	"github.com/talowa-app/internal/http/handlers/shared"
	"github.com/talowa-app/internal/http/response"

	"github.com/gin-gonic/gin"
)

// applyCodeRequest carries the code a member wants to apply.
type applyCodeRequest struct {
	Code string `json:"code" binding:"required"`
}

// IssueCode returns the caller's referral code, reserving one on first
// call.
func (h *Handler) IssueCode(c *gin.Context) {
	userID, ok := shared.CurrentUserID(c)
	if !ok {
		return
	}
	code, err := h.ReferralCodeService.IssueCode(c.Request.Context(), userID)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{
		"code":      code.Code,
		"is_active": code.IsActive,
	})
}

// ApplyCode links the caller under the code owner.
func (h *Handler) ApplyCode(c *gin.Context) {
	userID, ok := shared.CurrentUserID(c)
	if !ok {
		return
	}
	var req applyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, response.KindInvalidFormat, "code is required")
		return
	}

	referrerID, err := h.ChainService.ApplyCode(userID, req.Code)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"referrer_id": referrerID})
}

// Stats returns the caller's referral dashboard.
func (h *Handler) Stats(c *gin.Context) {
	userID, ok := shared.CurrentUserID(c)
	if !ok {
		return
	}
	stats, err := h.StatsService.GetStats(userID)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, stats)
}

// Notifications lists the caller's notifications.
func (h *Handler) Notifications(c *gin.Context) {
	userID, ok := shared.CurrentUserID(c)
	if !ok {
		return
	}
	page, pageSize := shared.ParsePagination(c)
	items, total, err := h.NotificationService.ListByUser(userID, page, pageSize)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, items, response.BuildPagination(page, pageSize, total))
}

// markReadRequest carries notification ids to mark as read.
type markReadRequest struct {
	IDs []uint `json:"ids" binding:"required"`
}

// MarkNotificationsRead marks the caller's notifications as read.
func (h *Handler) MarkNotificationsRead(c *gin.Context) {
	userID, ok := shared.CurrentUserID(c)
	if !ok {
		return
	}
	var req markReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, response.KindInvalidFormat, "ids are required")
		return
	}
	if err := h.NotificationService.MarkRead(userID, req.IDs); err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"updated": true})
}
