package public

import (
	"io"

	"github.com/talowa-app/internal/http/handlers/shared"
	"github.com/talowa-app/internal/http/response"
	"github.com/talowa-app/internal/service"

	"github.com/gin-gonic/gin"
)

// webhookBodyLimit caps accepted webhook payloads.
const webhookBodyLimit = 1 << 20

// PaymentWebhook ingests a membership payment notification. The
// provider signs the raw body with HMAC-SHA256 in X-Signature.
func (h *Handler) PaymentWebhook(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, webhookBodyLimit))
	if err != nil {
		response.Error(c, response.KindInvalidFormat, "unreadable body")
		return
	}

	payment, err := h.PaymentService.HandleWebhook(c.Request.Context(), service.WebhookInput{
		Body:      body,
		Signature: c.GetHeader("X-Signature"),
	})
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{
		"txn_id": payment.TxnID,
		"status": payment.Status,
	})
}
