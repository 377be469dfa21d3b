package service

import (
	"github.com/talowa-app/internal/models"
	"github.com/talowa-app/internal/repository"
)

// MemberService serves back-office member views.
type MemberService struct {
	userRepo     repository.UserRepository
	referralRepo repository.ReferralRepository
}

// NewMemberService creates a member admin service.
func NewMemberService(userRepo repository.UserRepository, referralRepo repository.ReferralRepository) *MemberService {
	return &MemberService{
		userRepo:     userRepo,
		referralRepo: referralRepo,
	}
}

// List lists members with filters.
func (s *MemberService) List(filter repository.MemberListFilter) ([]models.User, int64, error) {
	return s.userRepo.ListMembers(filter)
}

// MemberDetail pairs a member with their referral record.
type MemberDetail struct {
	User     models.User      `json:"user"`
	Referral *models.Referral `json:"referral,omitempty"`
}

// Get fetches one member with their referral record.
func (s *MemberService) Get(userID uint) (*MemberDetail, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	referral, err := s.referralRepo.GetByRefereeID(userID)
	if err != nil {
		return nil, err
	}
	return &MemberDetail{User: *user, Referral: referral}, nil
}

// NetworkOverview summarises the referral network for the dashboard.
type NetworkOverview struct {
	ActiveMembers  int64 `json:"active_members"`
	PendingPayment int64 `json:"pending_payment"`
	AutoAssigned   int64 `json:"auto_assigned"`
	AdminAssigned  int64 `json:"admin_assigned"`
}

// Overview counts members per membership status.
func (s *MemberService) Overview() (*NetworkOverview, error) {
	overview := &NetworkOverview{}
	counts := []struct {
		status string
		target *int64
	}{
		{"active", &overview.ActiveMembers},
		{"pending_payment", &overview.PendingPayment},
		{"auto_assigned", &overview.AutoAssigned},
		{"admin_assigned", &overview.AdminAssigned},
	}
	for _, entry := range counts {
		count, err := s.userRepo.CountByReferralStatus(entry.status)
		if err != nil {
			return nil, err
		}
		*entry.target = count
	}
	return overview, nil
}
