package repository

import (
	"errors"
	"strings"

	"github.com/talowa-app/internal/models"

	"gorm.io/gorm"
)

// ReferralCodeRepository is the referral code data access interface.
type ReferralCodeRepository interface {
	WithTx(tx *gorm.DB) ReferralCodeRepository

	GetByCode(code string) (*models.ReferralCode, error)
	GetByUserID(userID uint) (*models.ReferralCode, error)
	Create(code *models.ReferralCode) error
	SetActive(codeID uint, active bool) error
}

// GormReferralCodeRepository is the GORM implementation.
type GormReferralCodeRepository struct {
	db *gorm.DB
}

// NewReferralCodeRepository creates a referral code repository.
func NewReferralCodeRepository(db *gorm.DB) *GormReferralCodeRepository {
	return &GormReferralCodeRepository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *GormReferralCodeRepository) WithTx(tx *gorm.DB) ReferralCodeRepository {
	if tx == nil {
		return r
	}
	return &GormReferralCodeRepository{db: tx}
}

// GetByCode fetches a code by its normalized value.
func (r *GormReferralCodeRepository) GetByCode(code string) (*models.ReferralCode, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return nil, nil
	}
	var rc models.ReferralCode
	if err := r.db.Where("code = ?", normalized).First(&rc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rc, nil
}

// GetByUserID fetches the code owned by a member.
func (r *GormReferralCodeRepository) GetByUserID(userID uint) (*models.ReferralCode, error) {
	if userID == 0 {
		return nil, nil
	}
	var rc models.ReferralCode
	if err := r.db.Where("user_id = ?", userID).First(&rc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rc, nil
}

// Create reserves a code. A unique constraint violation means another
// member holds it already.
func (r *GormReferralCodeRepository) Create(code *models.ReferralCode) error {
	return r.db.Create(code).Error
}

// SetActive toggles whether the code can accept new referrals.
func (r *GormReferralCodeRepository) SetActive(codeID uint, active bool) error {
	if codeID == 0 {
		return nil
	}
	return r.db.Model(&models.ReferralCode{}).
		Where("id = ?", codeID).
		Update("is_active", active).Error
}
