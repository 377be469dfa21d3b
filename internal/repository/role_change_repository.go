package repository

import (
	"github.com/talowa-app/internal/models"

	"gorm.io/gorm"
)

// RoleChangeRepository is the promotion history data access interface.
type RoleChangeRepository interface {
	WithTx(tx *gorm.DB) RoleChangeRepository

	Create(change *models.RoleChange) error
	ListByUser(filter RoleChangeListFilter) ([]models.RoleChange, int64, error)
}

// GormRoleChangeRepository is the GORM implementation.
type GormRoleChangeRepository struct {
	db *gorm.DB
}

// NewRoleChangeRepository creates a promotion history repository.
func NewRoleChangeRepository(db *gorm.DB) *GormRoleChangeRepository {
	return &GormRoleChangeRepository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *GormRoleChangeRepository) WithTx(tx *gorm.DB) RoleChangeRepository {
	if tx == nil {
		return r
	}
	return &GormRoleChangeRepository{db: tx}
}

// Create appends a promotion record.
func (r *GormRoleChangeRepository) Create(change *models.RoleChange) error {
	return r.db.Create(change).Error
}

// ListByUser lists a member's promotion history, newest first.
func (r *GormRoleChangeRepository) ListByUser(filter RoleChangeListFilter) ([]models.RoleChange, int64, error) {
	query := r.db.Model(&models.RoleChange{})
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var changes []models.RoleChange
	if err := query.Order("id DESC").Find(&changes).Error; err != nil {
		return nil, 0, err
	}
	return changes, total, nil
}
