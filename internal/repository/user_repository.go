package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/talowa-app/internal/constants"
	"github.com/talowa-app/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository is the member data access interface.
type UserRepository interface {
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) UserRepository

	GetByID(id uint) (*models.User, error)
	GetByIDForUpdate(id uint) (*models.User, error)
	GetByPhone(phone string) (*models.User, error)
	ListByIDs(ids []uint) ([]models.User, error)
	Create(user *models.User) error
	Update(user *models.User) error

	SetReferrer(userID uint, code string, chain models.IDList, status string) (int64, error)
	SetReferralCode(userID uint, code string) (int64, error)
	IncrementDirectReferrals(userID uint, delta int64) error
	IncrementTeamSize(userID uint, delta int64) error
	MarkActivated(userID uint, at time.Time) (int64, error)
	PromoteRole(userID uint, role string, level int, at time.Time) (int64, error)

	ListActiveLeaders(minLevel int) ([]models.User, error)
	ListPendingOrphans(filter OrphanListFilter) ([]models.User, int64, error)
	ListMembers(filter MemberListFilter) ([]models.User, int64, error)
	CountByReferralStatus(status string) (int64, error)
}

// GormUserRepository is the GORM implementation.
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a member repository.
func NewUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *GormUserRepository) WithTx(tx *gorm.DB) UserRepository {
	if tx == nil {
		return r
	}
	return &GormUserRepository{db: tx}
}

// Transaction runs fn inside a transaction.
func (r *GormUserRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// GetByID fetches a member by ID.
func (r *GormUserRepository) GetByID(id uint) (*models.User, error) {
	if id == 0 {
		return nil, nil
	}
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// GetByIDForUpdate fetches a member by ID with a row lock.
func (r *GormUserRepository) GetByIDForUpdate(id uint) (*models.User, error) {
	if id == 0 {
		return nil, nil
	}
	var user models.User
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// GetByPhone fetches a member by phone number.
func (r *GormUserRepository) GetByPhone(phone string) (*models.User, error) {
	normalized := strings.TrimSpace(phone)
	if normalized == "" {
		return nil, nil
	}
	var user models.User
	if err := r.db.Where("phone = ?", normalized).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// ListByIDs fetches members in bulk.
func (r *GormUserRepository) ListByIDs(ids []uint) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	var users []models.User
	if err := r.db.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// Create creates a member.
func (r *GormUserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// Update saves a member.
func (r *GormUserRepository) Update(user *models.User) error {
	return r.db.Save(user).Error
}

// SetReferrer records the referrer link and frozen ancestor chain.
// The referred_by guard keeps the link write-once.
func (r *GormUserRepository) SetReferrer(userID uint, code string, chain models.IDList, status string) (int64, error) {
	if userID == 0 {
		return 0, nil
	}
	update := map[string]interface{}{
		"referred_by":    strings.ToUpper(strings.TrimSpace(code)),
		"referral_chain": chain,
		"updated_at":     time.Now(),
	}
	if status != "" {
		update["referral_status"] = status
	}
	result := r.db.Model(&models.User{}).
		Where("id = ? AND (referred_by = '' OR referred_by IS NULL)", userID).
		Updates(update)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// SetReferralCode writes the issued code onto the user row. The guard
// keeps the column write-once; a filled column reports zero rows.
func (r *GormUserRepository) SetReferralCode(userID uint, code string) (int64, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if userID == 0 || normalized == "" {
		return 0, nil
	}
	result := r.db.Model(&models.User{}).
		Where("id = ? AND (referral_code = '' OR referral_code IS NULL)", userID).
		Updates(map[string]interface{}{
			"referral_code": normalized,
			"updated_at":    time.Now(),
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// IncrementDirectReferrals bumps the direct referral counter atomically.
func (r *GormUserRepository) IncrementDirectReferrals(userID uint, delta int64) error {
	if userID == 0 || delta == 0 {
		return nil
	}
	return r.db.Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn("direct_referral_count", gorm.Expr("direct_referral_count + ?", delta)).Error
}

// IncrementTeamSize bumps an ancestor's team size atomically. Pure
// increments commute, so concurrent activations sharing an ancestor
// never lose updates.
func (r *GormUserRepository) IncrementTeamSize(userID uint, delta int64) error {
	if userID == 0 || delta == 0 {
		return nil
	}
	return r.db.Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn("total_team_size", gorm.Expr("total_team_size + ?", delta)).Error
}

// MarkActivated flips the member to active membership. The status guard
// makes repeated webhook deliveries a no-op; the affected row count tells
// the caller whether this delivery won.
func (r *GormUserRepository) MarkActivated(userID uint, at time.Time) (int64, error) {
	if userID == 0 {
		return 0, nil
	}
	result := r.db.Model(&models.User{}).
		Where("id = ? AND referral_status IN ?", userID, []string{
			constants.ReferralStatusPendingPayment,
			constants.ReferralStatusAutoAssigned,
			constants.ReferralStatusAdminAssigned,
		}).
		Updates(map[string]interface{}{
			"referral_status": constants.ReferralStatusActive,
			"activated_at":    at,
			"updated_at":      at,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// PromoteRole raises the member's role. The level guard keeps promotion
// monotonic under concurrent evaluations.
func (r *GormUserRepository) PromoteRole(userID uint, role string, level int, at time.Time) (int64, error) {
	if userID == 0 || role == "" {
		return 0, nil
	}
	result := r.db.Model(&models.User{}).
		Where("id = ? AND role_level < ?", userID, level).
		Updates(map[string]interface{}{
			"current_role": role,
			"role_level":   level,
			"promoted_at":  at,
			"updated_at":   at,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// ListActiveLeaders fetches located, active members at or above the given
// role level, candidates for orphan assignment.
func (r *GormUserRepository) ListActiveLeaders(minLevel int) ([]models.User, error) {
	var users []models.User
	err := r.db.
		Where("role_level >= ?", minLevel).
		Where("referral_status = ?", constants.ReferralStatusActive).
		Where("status = ?", constants.UserStatusActive).
		Where("latitude IS NOT NULL AND longitude IS NOT NULL").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// ListPendingOrphans lists members with no referrer link yet.
func (r *GormUserRepository) ListPendingOrphans(filter OrphanListFilter) ([]models.User, int64, error) {
	query := r.db.Model(&models.User{}).
		Where("(referred_by = '' OR referred_by IS NULL)").
		Where("referral_status = ?", constants.ReferralStatusPendingPayment)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var users []models.User
	if err := query.Order("id ASC").Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// ListMembers lists members for the back office.
func (r *GormUserRepository) ListMembers(filter MemberListFilter) ([]models.User, int64, error) {
	query := r.db.Model(&models.User{})

	if keyword := strings.TrimSpace(filter.Keyword); keyword != "" {
		like := "%" + keyword + "%"
		query = query.Where("phone LIKE ? OR full_name LIKE ? OR referral_code LIKE ?", like, like, like)
	}
	if filter.Role != "" {
		query = query.Where("current_role = ?", filter.Role)
	}
	if filter.ReferralStatus != "" {
		query = query.Where("referral_status = ?", filter.ReferralStatus)
	}
	if filter.MinRoleLevel > 0 {
		query = query.Where("role_level >= ?", filter.MinRoleLevel)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var users []models.User
	if err := query.Order("id DESC").Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// CountByReferralStatus counts members in a membership status.
func (r *GormUserRepository) CountByReferralStatus(status string) (int64, error) {
	var count int64
	err := r.db.Model(&models.User{}).
		Where("referral_status = ?", status).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
