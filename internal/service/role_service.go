package service

import (
	"time"

	"github.com/talowa-app/internal/constants"
	"github.com/talowa-app/internal/logger"
	"github.com/talowa-app/internal/models"
	"github.com/talowa-app/internal/repository"
)

// roleTier is a progression rung. Both counters must reach the
// threshold for the tier to apply.
type roleTier struct {
	DirectRequired int64
	TeamRequired   int64
	Level          int
	Role           string
	UrbanRole      string
	RuralRole      string
}

// RoleService runs the no-demotion role progression state machine.
type RoleService struct {
	userRepo       repository.UserRepository
	roleChangeRepo repository.RoleChangeRepository
	notifier       *NotificationService
	tiers          []roleTier
}

// NewRoleService creates a role progression service. zonalTeamSize is
// the configured team threshold for the zonal tier.
func NewRoleService(
	userRepo repository.UserRepository,
	roleChangeRepo repository.RoleChangeRepository,
	notifier *NotificationService,
	zonalTeamSize int64,
) *RoleService {
	if zonalTeamSize <= 0 {
		zonalTeamSize = 1000000
	}
	// Ordered highest to lowest so evaluation returns the best tier
	// both counters support.
	tiers := []roleTier{
		{DirectRequired: 1000, TeamRequired: 3000000, Level: constants.RoleLevelState, Role: constants.RoleStateCoordinator},
		{DirectRequired: 500, TeamRequired: zonalTeamSize, Level: constants.RoleLevelZonal, Role: constants.RoleZonalCoordinator},
		{DirectRequired: 320, TeamRequired: 500000, Level: constants.RoleLevelDistrict, Role: constants.RoleDistrictCoordinator},
		{DirectRequired: 160, TeamRequired: 50000, Level: constants.RoleLevelConstituency, Role: constants.RoleConstituencyCoordinator},
		{DirectRequired: 80, TeamRequired: 6000, Level: constants.RoleLevelMandal, Role: constants.RoleMandalCoordinator},
		{DirectRequired: 40, TeamRequired: 700, Level: constants.RoleLevelAreaVillage, UrbanRole: constants.RoleAreaCoordinator, RuralRole: constants.RoleVillageCoordinator},
		{DirectRequired: 20, TeamRequired: 100, Level: constants.RoleLevelTeamLeader, Role: constants.RoleTeamLeader},
		{DirectRequired: 10, TeamRequired: 10, Level: constants.RoleLevelVolunteer, Role: constants.RoleVolunteer},
	}
	return &RoleService{
		userRepo:       userRepo,
		roleChangeRepo: roleChangeRepo,
		notifier:       notifier,
		tiers:          tiers,
	}
}

// EvaluateRole computes the tier the counters support and the member's
// urban flag selects when the tier forks.
func (s *RoleService) EvaluateRole(directCount, teamSize int64, isUrban bool) (string, int) {
	for _, tier := range s.tiers {
		if directCount >= tier.DirectRequired && teamSize >= tier.TeamRequired {
			role := tier.Role
			if role == "" {
				if isUrban {
					role = tier.UrbanRole
				} else {
					role = tier.RuralRole
				}
			}
			return role, tier.Level
		}
	}
	return constants.RoleMember, constants.RoleLevelMember
}

// Reevaluate re-runs the state machine for a member after a counter
// change and promotes if the computed tier is strictly higher. Equal or
// lower tiers never write, which keeps demotion impossible.
func (s *RoleService) Reevaluate(userID uint) error {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrNotFound
	}

	role, level := s.EvaluateRole(user.DirectReferralCount, user.TotalTeamSize, user.IsUrban)
	if level <= user.RoleLevel {
		return nil
	}

	now := time.Now()
	rows, err := s.userRepo.PromoteRole(user.ID, role, level, now)
	if err != nil {
		return err
	}
	if rows == 0 {
		// A concurrent evaluation reached the same or a higher tier first.
		return nil
	}

	change := &models.RoleChange{
		UserID:              user.ID,
		FromRole:            user.CurrentRole,
		ToRole:              role,
		FromLevel:           user.RoleLevel,
		ToLevel:             level,
		DirectReferralCount: user.DirectReferralCount,
		TotalTeamSize:       user.TotalTeamSize,
		PromotedAt:          now,
	}
	if err := s.roleChangeRepo.Create(change); err != nil {
		return err
	}

	logger.Infow("role_promoted",
		"user_id", user.ID,
		"from_role", user.CurrentRole,
		"to_role", role,
		"direct", user.DirectReferralCount,
		"team", user.TotalTeamSize,
	)

	if s.notifier != nil {
		s.notifier.NotifyRolePromotion(user.ID, user.CurrentRole, role)
	}
	return nil
}

// ListRoleChanges returns a member's promotion history.
func (s *RoleService) ListRoleChanges(filter repository.RoleChangeListFilter) ([]models.RoleChange, int64, error) {
	return s.roleChangeRepo.ListByUser(filter)
}
