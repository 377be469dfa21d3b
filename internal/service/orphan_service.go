package service

import (
	"math"
	"sort"

	"github.com/talowa-app/internal/constants"
	"github.com/talowa-app/internal/logger"
	"github.com/talowa-app/internal/models"
	"github.com/talowa-app/internal/repository"
)

// earthRadiusKm is the sphere radius used for great-circle distances.
const earthRadiusKm = 6371.0

// OrphanService assigns members who registered without a referral code
// to the nearest suitable leader.
type OrphanService struct {
	userRepo     repository.UserRepository
	chainService *ReferralChainService
	notifier     *NotificationService
	radiusKm     float64
	adminUserID  uint
}

// NewOrphanService creates an orphan resolver. adminUserID is the root
// network account that absorbs members no leader can take.
func NewOrphanService(
	userRepo repository.UserRepository,
	chainService *ReferralChainService,
	notifier *NotificationService,
	radiusKm float64,
	adminUserID uint,
) *OrphanService {
	if radiusKm <= 0 {
		radiusKm = 50
	}
	return &OrphanService{
		userRepo:     userRepo,
		chainService: chainService,
		notifier:     notifier,
		radiusKm:     radiusKm,
		adminUserID:  adminUserID,
	}
}

// Assignment describes the outcome of one orphan resolution.
type Assignment struct {
	UserID     uint     `json:"user_id"`
	ReferrerID uint     `json:"referrer_id"`
	Source     string   `json:"source"`
	Reason     string   `json:"reason,omitempty"`
	DistanceKm *float64 `json:"distance_km,omitempty"`
}

// leaderCandidate pairs a leader with the computed distance.
type leaderCandidate struct {
	user     models.User
	distance float64
}

// Resolve assigns a referrer to one orphan. Members that already have a
// referrer are left untouched.
func (s *OrphanService) Resolve(userID uint) (*Assignment, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	if user.ReferredBy != "" {
		return nil, ErrNotOrphan
	}

	if !user.HasLocation() {
		return s.assignToAdmin(user, constants.OrphanReasonNoLocation)
	}

	best, err := s.nearestLeader(user)
	if err != nil {
		return nil, err
	}
	if best == nil {
		return s.assignToAdmin(user, constants.OrphanReasonNoLeaderInRadius)
	}

	distance := best.distance
	err = s.chainService.Attach(user.ID, best.user.ID, AttachInput{
		Source:             constants.ReferralSourceAuto,
		ReferralStatus:     constants.ReferralStatusAutoAssigned,
		AssignmentDistance: &distance,
	})
	if err != nil {
		return nil, err
	}

	logger.Infow("orphan_auto_assigned",
		"user_id", user.ID,
		"leader_id", best.user.ID,
		"distance_km", distance,
	)
	if s.notifier != nil {
		s.notifier.NotifyOrphanAssigned(best.user.ID, user.ID, constants.ReferralSourceAuto)
	}
	return &Assignment{
		UserID:     user.ID,
		ReferrerID: best.user.ID,
		Source:     constants.ReferralSourceAuto,
		DistanceKm: &distance,
	}, nil
}

// ResolveAll sweeps every pending orphan. The sweep keeps going past
// individual failures so one bad record cannot stall the queue.
func (s *OrphanService) ResolveAll(batchSize int) ([]Assignment, error) {
	if batchSize <= 0 {
		batchSize = 100
	}
	orphans, _, err := s.userRepo.ListPendingOrphans(repository.OrphanListFilter{Page: 1, PageSize: batchSize})
	if err != nil {
		return nil, err
	}

	assignments := make([]Assignment, 0, len(orphans))
	for _, orphan := range orphans {
		result, err := s.Resolve(orphan.ID)
		if err != nil {
			logger.Warnw("orphan_resolve_failed", "user_id", orphan.ID, "error", err)
			continue
		}
		assignments = append(assignments, *result)
	}
	return assignments, nil
}

// ListPending lists members still waiting for a referrer.
func (s *OrphanService) ListPending(filter repository.OrphanListFilter) ([]models.User, int64, error) {
	return s.userRepo.ListPendingOrphans(filter)
}

// nearestLeader picks the best located leader inside the radius by the
// ordered tie-break: higher role level, then smaller team, then
// smaller distance.
func (s *OrphanService) nearestLeader(user *models.User) (*leaderCandidate, error) {
	leaders, err := s.userRepo.ListActiveLeaders(constants.RoleLevelTeamLeader)
	if err != nil {
		return nil, err
	}

	candidates := make([]leaderCandidate, 0, len(leaders))
	for _, leader := range leaders {
		if leader.ID == user.ID || leader.ID == s.adminUserID {
			continue
		}
		if leader.ReferralChain.Contains(user.ID) {
			continue
		}
		distance := haversineKm(*user.Latitude, *user.Longitude, *leader.Latitude, *leader.Longitude)
		if distance > s.radiusKm {
			continue
		}
		candidates = append(candidates, leaderCandidate{user: leader, distance: distance})
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.user.RoleLevel != b.user.RoleLevel {
			return a.user.RoleLevel > b.user.RoleLevel
		}
		if a.user.TotalTeamSize != b.user.TotalTeamSize {
			return a.user.TotalTeamSize < b.user.TotalTeamSize
		}
		return a.distance < b.distance
	})
	return &candidates[0], nil
}

func (s *OrphanService) assignToAdmin(user *models.User, reason string) (*Assignment, error) {
	if s.adminUserID == 0 {
		return nil, ErrNotFound
	}
	err := s.chainService.Attach(user.ID, s.adminUserID, AttachInput{
		Source:           constants.ReferralSourceAdmin,
		ReferralStatus:   constants.ReferralStatusAdminAssigned,
		AssignmentReason: reason,
	})
	if err != nil {
		return nil, err
	}

	logger.Infow("orphan_admin_assigned", "user_id", user.ID, "reason", reason)
	if s.notifier != nil {
		s.notifier.NotifyOrphanAssigned(s.adminUserID, user.ID, constants.ReferralSourceAdmin)
	}
	return &Assignment{
		UserID:     user.ID,
		ReferrerID: s.adminUserID,
		Source:     constants.ReferralSourceAdmin,
		Reason:     reason,
	}, nil
}

// haversineKm computes the great-circle distance between two points.
func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	const degToRad = math.Pi / 180
	phi1 := lat1 * degToRad
	phi2 := lat2 * degToRad
	dPhi := (lat2 - lat1) * degToRad
	dLambda := (lon2 - lon1) * degToRad

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	return 2 * earthRadiusKm * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
