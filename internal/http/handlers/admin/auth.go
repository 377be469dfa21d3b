package admin

import (
	"github.com/talowa-app/internal/http/handlers/shared"
	"github.com/talowa-app/internal/http/response"

	"github.com/gin-gonic/gin"
)

// loginRequest is the admin login payload.
type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// changePasswordRequest rotates the caller's password.
type changePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// Login authenticates an operator.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, response.KindInvalidFormat, "username and password are required")
		return
	}

	admin, token, expiresAt, err := h.AuthService.Login(req.Username, req.Password)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{
		"admin":      admin,
		"token":      token,
		"expires_at": expiresAt,
	})
}

// ChangePassword rotates the caller's password.
func (h *Handler) ChangePassword(c *gin.Context) {
	adminID, ok := shared.CurrentAdminID(c)
	if !ok {
		return
	}
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, response.KindInvalidFormat, "old and new passwords are required")
		return
	}
	if err := h.AuthService.ChangePassword(adminID, req.OldPassword, req.NewPassword); err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"updated": true})
}
