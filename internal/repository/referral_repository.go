package repository

import (
	"errors"
	"time"

	"github.com/talowa-app/internal/constants"
	"github.com/talowa-app/internal/models"

	"gorm.io/gorm"
)

// ReferralRepository is the referral record data access interface.
type ReferralRepository interface {
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) ReferralRepository

	Create(referral *models.Referral) error
	GetByRefereeID(refereeID uint) (*models.Referral, error)
	MarkCompleted(refereeID uint, at time.Time) (int64, error)
	ListRecentByReferrer(referrerID uint, limit int) ([]models.Referral, error)
	CountByReferrer(referrerID uint, status string) (int64, error)
}

// GormReferralRepository is the GORM implementation.
type GormReferralRepository struct {
	db *gorm.DB
}

// NewReferralRepository creates a referral record repository.
func NewReferralRepository(db *gorm.DB) *GormReferralRepository {
	return &GormReferralRepository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *GormReferralRepository) WithTx(tx *gorm.DB) ReferralRepository {
	if tx == nil {
		return r
	}
	return &GormReferralRepository{db: tx}
}

// Transaction runs fn inside a transaction.
func (r *GormReferralRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// Create creates a referral record. The referee unique index keeps a
// member from being referred twice.
func (r *GormReferralRepository) Create(referral *models.Referral) error {
	return r.db.Create(referral).Error
}

// GetByRefereeID fetches the referral record for a referee.
func (r *GormReferralRepository) GetByRefereeID(refereeID uint) (*models.Referral, error) {
	if refereeID == 0 {
		return nil, nil
	}
	var referral models.Referral
	if err := r.db.Where("referee_id = ?", refereeID).First(&referral).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &referral, nil
}

// MarkCompleted flips the pending referral record to completed. The
// status guard makes the transition single-shot.
func (r *GormReferralRepository) MarkCompleted(refereeID uint, at time.Time) (int64, error) {
	if refereeID == 0 {
		return 0, nil
	}
	result := r.db.Model(&models.Referral{}).
		Where("referee_id = ? AND status = ?", refereeID, constants.ReferralRecordStatusPending).
		Updates(map[string]interface{}{
			"status":       constants.ReferralRecordStatusCompleted,
			"completed_at": at,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// ListRecentByReferrer lists a member's most recent referrals.
func (r *GormReferralRepository) ListRecentByReferrer(referrerID uint, limit int) ([]models.Referral, error) {
	if referrerID == 0 {
		return []models.Referral{}, nil
	}
	if limit <= 0 {
		limit = 20
	}
	var referrals []models.Referral
	err := r.db.Preload("Referee").
		Where("referrer_id = ?", referrerID).
		Order("id DESC").
		Limit(limit).
		Find(&referrals).Error
	if err != nil {
		return nil, err
	}
	return referrals, nil
}

// CountByReferrer counts a member's referrals, optionally by status.
func (r *GormReferralRepository) CountByReferrer(referrerID uint, status string) (int64, error) {
	if referrerID == 0 {
		return 0, nil
	}
	query := r.db.Model(&models.Referral{}).Where("referrer_id = ?", referrerID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
