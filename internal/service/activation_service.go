package service

import (
	"context"
	"time"

	"github.com/talowa-app/internal/logger"
	"github.com/talowa-app/internal/repository"

	"golang.org/x/sync/errgroup"
)

// activationFanOutLimit bounds concurrent ancestor updates for one
// activation.
const activationFanOutLimit = 8

// ActivationService confirms memberships and propagates team size up
// the ancestry chain.
type ActivationService struct {
	userRepo     repository.UserRepository
	referralRepo repository.ReferralRepository
	roleService  *RoleService
}

// NewActivationService creates an activation service.
func NewActivationService(
	userRepo repository.UserRepository,
	referralRepo repository.ReferralRepository,
	roleService *RoleService,
) *ActivationService {
	return &ActivationService{
		userRepo:     userRepo,
		referralRepo: referralRepo,
		roleService:  roleService,
	}
}

// Activate confirms a member's payment. Duplicate deliveries are
// no-ops: the status flip is a guarded update and only the delivery
// that wins it propagates counters.
func (s *ActivationService) Activate(ctx context.Context, userID uint) error {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrNotFound
	}

	now := time.Now()
	rows, err := s.userRepo.MarkActivated(userID, now)
	if err != nil {
		return err
	}
	if rows == 0 {
		logger.Infow("activation_replay_ignored", "user_id", userID, "status", user.ReferralStatus)
		return nil
	}

	if _, err := s.referralRepo.MarkCompleted(userID, now); err != nil {
		return err
	}

	// Each ancestor update is an independent commutative increment, so
	// the chain walk fans out without ordering.
	chain := user.ReferralChain
	group, _ := errgroup.WithContext(ctx)
	group.SetLimit(activationFanOutLimit)
	for _, ancestorID := range chain {
		ancestorID := ancestorID
		group.Go(func() error {
			if err := s.userRepo.IncrementTeamSize(ancestorID, 1); err != nil {
				return err
			}
			if s.roleService != nil {
				return s.roleService.Reevaluate(ancestorID)
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}

	logger.Infow("member_activated", "user_id", userID, "chain_length", len(chain))
	return nil
}
