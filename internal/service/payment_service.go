package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/talowa-app/internal/constants"
	"github.com/talowa-app/internal/logger"
	"github.com/talowa-app/internal/models"
	"github.com/talowa-app/internal/repository"

	"github.com/shopspring/decimal"
)

// PaymentService ingests membership payment webhooks.
type PaymentService struct {
	paymentRepo repository.MembershipPaymentRepository
	userRepo    repository.UserRepository
	activation  *ActivationService
	secret      string
}

// NewPaymentService creates a payment service. secret signs webhook
// payloads.
func NewPaymentService(
	paymentRepo repository.MembershipPaymentRepository,
	userRepo repository.UserRepository,
	activation *ActivationService,
	secret string,
) *PaymentService {
	return &PaymentService{
		paymentRepo: paymentRepo,
		userRepo:    userRepo,
		activation:  activation,
		secret:      secret,
	}
}

// WebhookInput is one raw webhook delivery.
type WebhookInput struct {
	Body      []byte
	Signature string
}

// webhookEvent is the provider payload shape.
type webhookEvent struct {
	TxnID    string          `json:"txn_id"`
	UserID   uint            `json:"user_id"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
	Status   string          `json:"status"`
	PaidAt   *time.Time      `json:"paid_at"`
}

// HandleWebhook verifies, records and acts on one payment delivery.
// Redelivery of a known txn_id is acknowledged without side effects.
func (s *PaymentService) HandleWebhook(ctx context.Context, input WebhookInput) (*models.MembershipPayment, error) {
	if !s.verifySignature(input.Body, input.Signature) {
		return nil, ErrInvalidSignature
	}

	var event webhookEvent
	if err := json.Unmarshal(input.Body, &event); err != nil {
		return nil, ErrInvalidPayload
	}
	event.TxnID = strings.TrimSpace(event.TxnID)
	if event.TxnID == "" || event.UserID == 0 {
		return nil, ErrInvalidPayload
	}

	user, err := s.userRepo.GetByID(event.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}

	existing, err := s.paymentRepo.GetByTxnID(event.TxnID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		logger.Infow("payment_webhook_replay_ignored", "txn_id", event.TxnID, "user_id", event.UserID)
		return existing, nil
	}

	status := strings.ToLower(strings.TrimSpace(event.Status))
	if status == "" {
		status = constants.PaymentStatusPending
	}
	currency := strings.ToUpper(strings.TrimSpace(event.Currency))
	if currency == "" {
		currency = "INR"
	}
	paidAt := event.PaidAt
	if paidAt == nil && status == constants.PaymentStatusSuccess {
		now := time.Now()
		paidAt = &now
	}

	payment := &models.MembershipPayment{
		UserID:    event.UserID,
		Provider:  "webhook",
		TxnID:     event.TxnID,
		Amount:    models.NewMoneyFromDecimal(event.Amount),
		Currency:  currency,
		Status:    status,
		PaidAt:    paidAt,
		CreatedAt: time.Now(),
	}
	if err := s.paymentRepo.Create(payment); err != nil {
		if isUniqueViolation(err) {
			// Concurrent redelivery, the first insert owns the txn.
			return s.paymentRepo.GetByTxnID(event.TxnID)
		}
		return nil, err
	}

	if status == constants.PaymentStatusSuccess && s.activation != nil {
		if err := s.activation.Activate(ctx, event.UserID); err != nil {
			return nil, err
		}
	}
	return payment, nil
}

// ListByUser lists a member's payments.
func (s *PaymentService) ListByUser(userID uint) ([]models.MembershipPayment, error) {
	return s.paymentRepo.ListByUser(userID)
}

// verifySignature checks the hex HMAC-SHA256 of the raw body.
func (s *PaymentService) verifySignature(body []byte, signature string) bool {
	if strings.TrimSpace(s.secret) == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(s.secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(strings.TrimSpace(signature))))
}
