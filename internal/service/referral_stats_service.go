package service

import (
	"time"

	"github.com/talowa-app/internal/constants"
	"github.com/talowa-app/internal/models"
	"github.com/talowa-app/internal/repository"
)

// ReferralStatsService assembles the member-facing referral dashboard.
type ReferralStatsService struct {
	userRepo     repository.UserRepository
	referralRepo repository.ReferralRepository
	roleService  *RoleService
	recentLimit  int
}

// NewReferralStatsService creates a stats service.
func NewReferralStatsService(
	userRepo repository.UserRepository,
	referralRepo repository.ReferralRepository,
	roleService *RoleService,
	recentLimit int,
) *ReferralStatsService {
	if recentLimit <= 0 {
		recentLimit = 20
	}
	return &ReferralStatsService{
		userRepo:     userRepo,
		referralRepo: referralRepo,
		roleService:  roleService,
		recentLimit:  recentLimit,
	}
}

// NextTierProgress describes the distance to the next promotion rung.
type NextTierProgress struct {
	Role           string `json:"role"`
	DirectRequired int64  `json:"direct_required"`
	TeamRequired   int64  `json:"team_required"`
	DirectMissing  int64  `json:"direct_missing"`
	TeamMissing    int64  `json:"team_missing"`
}

// RecentReferralItem is one row of the recent referral listing.
type RecentReferralItem struct {
	RefereeID uint       `json:"referee_id"`
	FullName  string     `json:"full_name"`
	Status    string     `json:"status"`
	Source    string     `json:"source"`
	CreatedAt time.Time  `json:"created_at"`
	Completed *time.Time `json:"completed_at,omitempty"`
}

// ReferralStats is the dashboard payload.
type ReferralStats struct {
	ReferralCode        string               `json:"referral_code"`
	ReferralStatus      string               `json:"referral_status"`
	CurrentRole         string               `json:"current_role"`
	RoleLevel           int                  `json:"role_level"`
	DirectReferralCount int64                `json:"direct_referral_count"`
	TotalTeamSize       int64                `json:"total_team_size"`
	CompletedReferrals  int64                `json:"completed_referrals"`
	PendingReferrals    int64                `json:"pending_referrals"`
	NextTier            *NextTierProgress    `json:"next_tier,omitempty"`
	RecentReferrals     []RecentReferralItem `json:"recent_referrals"`
}

// GetStats returns a member's referral dashboard.
func (s *ReferralStatsService) GetStats(userID uint) (*ReferralStats, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}

	completed, err := s.referralRepo.CountByReferrer(userID, constants.ReferralRecordStatusCompleted)
	if err != nil {
		return nil, err
	}
	pending, err := s.referralRepo.CountByReferrer(userID, constants.ReferralRecordStatusPending)
	if err != nil {
		return nil, err
	}
	recent, err := s.referralRepo.ListRecentByReferrer(userID, s.recentLimit)
	if err != nil {
		return nil, err
	}

	stats := &ReferralStats{
		ReferralStatus:      user.ReferralStatus,
		CurrentRole:         user.CurrentRole,
		RoleLevel:           user.RoleLevel,
		DirectReferralCount: user.DirectReferralCount,
		TotalTeamSize:       user.TotalTeamSize,
		CompletedReferrals:  completed,
		PendingReferrals:    pending,
		NextTier:            s.nextTier(user),
		RecentReferrals:     make([]RecentReferralItem, 0, len(recent)),
	}
	if user.ReferralCode != nil {
		stats.ReferralCode = *user.ReferralCode
	}
	for _, referral := range recent {
		item := RecentReferralItem{
			RefereeID: referral.RefereeID,
			Status:    referral.Status,
			Source:    referral.Source,
			CreatedAt: referral.CreatedAt,
			Completed: referral.CompletedAt,
		}
		if referral.Referee != nil {
			item.FullName = referral.Referee.FullName
		}
		stats.RecentReferrals = append(stats.RecentReferrals, item)
	}
	return stats, nil
}

// nextTier finds the lowest tier above the member's current level.
func (s *ReferralStatsService) nextTier(user *models.User) *NextTierProgress {
	if s.roleService == nil {
		return nil
	}
	tiers := s.roleService.tiers
	for i := len(tiers) - 1; i >= 0; i-- {
		tier := tiers[i]
		if tier.Level <= user.RoleLevel {
			continue
		}
		role := tier.Role
		if role == "" {
			if user.IsUrban {
				role = tier.UrbanRole
			} else {
				role = tier.RuralRole
			}
		}
		progress := &NextTierProgress{
			Role:           role,
			DirectRequired: tier.DirectRequired,
			TeamRequired:   tier.TeamRequired,
		}
		if missing := tier.DirectRequired - user.DirectReferralCount; missing > 0 {
			progress.DirectMissing = missing
		}
		if missing := tier.TeamRequired - user.TotalTeamSize; missing > 0 {
			progress.TeamMissing = missing
		}
		return progress
	}
	return nil
}
