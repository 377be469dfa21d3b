package repository

import (
	"errors"
	"strings"

	"github.com/talowa-app/internal/models"

	"gorm.io/gorm"
)

// MembershipPaymentRepository is the payment record data access interface.
type MembershipPaymentRepository interface {
	WithTx(tx *gorm.DB) MembershipPaymentRepository

	GetByTxnID(txnID string) (*models.MembershipPayment, error)
	Create(payment *models.MembershipPayment) error
	ListByUser(userID uint) ([]models.MembershipPayment, error)
}

// GormMembershipPaymentRepository is the GORM implementation.
type GormMembershipPaymentRepository struct {
	db *gorm.DB
}

// NewMembershipPaymentRepository creates a payment record repository.
func NewMembershipPaymentRepository(db *gorm.DB) *GormMembershipPaymentRepository {
	return &GormMembershipPaymentRepository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *GormMembershipPaymentRepository) WithTx(tx *gorm.DB) MembershipPaymentRepository {
	if tx == nil {
		return r
	}
	return &GormMembershipPaymentRepository{db: tx}
}

// GetByTxnID fetches a payment by provider transaction ID.
func (r *GormMembershipPaymentRepository) GetByTxnID(txnID string) (*models.MembershipPayment, error) {
	normalized := strings.TrimSpace(txnID)
	if normalized == "" {
		return nil, nil
	}
	var payment models.MembershipPayment
	if err := r.db.Where("txn_id = ?", normalized).First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

// Create records a payment. The txn_id unique index absorbs repeated
// webhook deliveries.
func (r *GormMembershipPaymentRepository) Create(payment *models.MembershipPayment) error {
	return r.db.Create(payment).Error
}

// ListByUser lists a member's payments, newest first.
func (r *GormMembershipPaymentRepository) ListByUser(userID uint) ([]models.MembershipPayment, error) {
	if userID == 0 {
		return []models.MembershipPayment{}, nil
	}
	var payments []models.MembershipPayment
	err := r.db.Where("user_id = ?", userID).Order("id DESC").Find(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}
