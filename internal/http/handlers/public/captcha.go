package public

import (
	"github.com/talowa-app/internal/http/handlers/shared"
	"github.com/talowa-app/internal/http/response"

	"github.com/gin-gonic/gin"
)

// CaptchaImage issues an image captcha challenge.
func (h *Handler) CaptchaImage(c *gin.Context) {
	challenge, err := h.CaptchaService.GenerateImageChallenge()
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, challenge)
}
