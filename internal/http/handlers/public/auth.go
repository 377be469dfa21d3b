package public

import (
	"github.com/talowa-app/internal/http/handlers/shared"
	"github.com/talowa-app/internal/http/response"
	"github.com/talowa-app/internal/service"

	"github.com/gin-gonic/gin"
)

// registerRequest is the member sign-up payload.
type registerRequest struct {
	Phone        string   `json:"phone" binding:"required"`
	Password     string   `json:"password" binding:"required"`
	FullName     string   `json:"full_name"`
	ReferralCode string   `json:"referral_code"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	IsUrban      bool     `json:"is_urban"`
}

// loginRequest is the member login payload.
type loginRequest struct {
	Phone       string `json:"phone" binding:"required"`
	Password    string `json:"password" binding:"required"`
	CaptchaID   string `json:"captcha_id"`
	CaptchaCode string `json:"captcha_code"`
}

// Register creates a member account.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, response.KindInvalidFormat, "phone and password are required")
		return
	}

	user, err := h.UserAuthService.Register(service.RegisterInput{
		Phone:        req.Phone,
		Password:     req.Password,
		FullName:     req.FullName,
		ReferralCode: req.ReferralCode,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		IsUrban:      req.IsUrban,
	})
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}

	token, expiresAt, err := h.UserAuthService.GenerateJWT(user)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{
		"user":       user,
		"token":      token,
		"expires_at": expiresAt,
	})
}

// Login authenticates a member.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, response.KindInvalidFormat, "phone and password are required")
		return
	}

	if err := h.CaptchaService.Verify(service.CaptchaVerifyPayload{
		CaptchaID:   req.CaptchaID,
		CaptchaCode: req.CaptchaCode,
	}); err != nil {
		shared.RespondServiceError(c, err)
		return
	}

	user, token, expiresAt, err := h.UserAuthService.Login(req.Phone, req.Password)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{
		"user":       user,
		"token":      token,
		"expires_at": expiresAt,
	})
}

// Me returns the authenticated member.
func (h *Handler) Me(c *gin.Context) {
	userID, ok := shared.CurrentUserID(c)
	if !ok {
		return
	}
	user, err := h.UserAuthService.GetUser(userID)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	if user == nil {
		response.Error(c, response.KindNotFound, "member not found")
		return
	}
	response.Success(c, user)
}
