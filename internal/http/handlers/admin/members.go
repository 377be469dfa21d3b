package admin

import (
	"strconv"

	"github.com/talowa-app/internal/http/handlers/shared"
	"github.com/talowa-app/internal/http/response"
	"github.com/talowa-app/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListMembers lists members with filters.
func (h *Handler) ListMembers(c *gin.Context) {
	page, pageSize := shared.ParsePagination(c)
	minRoleLevel, _ := strconv.Atoi(c.DefaultQuery("min_role_level", "0"))

	filter := repository.MemberListFilter{
		Page:           page,
		PageSize:       pageSize,
		Keyword:        c.Query("keyword"),
		Role:           c.Query("role"),
		ReferralStatus: c.Query("referral_status"),
		MinRoleLevel:   minRoleLevel,
	}

	members, total, err := h.MemberService.List(filter)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, members, response.BuildPagination(page, pageSize, total))
}

// GetMember fetches one member with their referral record.
func (h *Handler) GetMember(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		response.Error(c, response.KindInvalidFormat, "invalid member id")
		return
	}
	detail, detailErr := h.MemberService.Get(uint(id))
	if detailErr != nil {
		shared.RespondServiceError(c, detailErr)
		return
	}
	response.Success(c, detail)
}

// MemberRoleChanges lists a member's promotion history.
func (h *Handler) MemberRoleChanges(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		response.Error(c, response.KindInvalidFormat, "invalid member id")
		return
	}
	page, pageSize := shared.ParsePagination(c)
	changes, total, listErr := h.RoleService.ListRoleChanges(repository.RoleChangeListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   uint(id),
	})
	if listErr != nil {
		shared.RespondServiceError(c, listErr)
		return
	}
	response.SuccessWithPage(c, changes, response.BuildPagination(page, pageSize, total))
}

// MemberPayments lists a member's payments.
func (h *Handler) MemberPayments(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		response.Error(c, response.KindInvalidFormat, "invalid member id")
		return
	}
	payments, listErr := h.PaymentService.ListByUser(uint(id))
	if listErr != nil {
		shared.RespondServiceError(c, listErr)
		return
	}
	response.Success(c, payments)
}

// NetworkOverview summarises the referral network.
func (h *Handler) NetworkOverview(c *gin.Context) {
	overview, err := h.MemberService.Overview()
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, overview)
}
