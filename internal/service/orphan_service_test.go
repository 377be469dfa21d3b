package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/talowa-app/internal/constants"
	"github.com/talowa-app/internal/models"
	"github.com/talowa-app/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func TestResolveAssignsNearestLeader(t *testing.T) {
	svc, db := setupOrphanServiceTest(t, 50, 0)

	// Hyderabad-ish coordinates; the near leader is ~11km away, the far
	// one ~110km.
	near := createOrphanTestLeader(t, db, "+911500000001", 17.5, 78.5, constants.RoleLevelTeamLeader, 10)
	createOrphanTestLeader(t, db, "+911500000002", 18.4, 78.5, constants.RoleLevelTeamLeader, 10)
	orphan := createOrphanTestMember(t, db, "+911500000003", floatPtr(17.4), floatPtr(78.5))

	assignment, err := svc.Resolve(orphan.ID)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if assignment.ReferrerID != near.ID {
		t.Fatalf("expected leader %d, got %d", near.ID, assignment.ReferrerID)
	}
	if assignment.Source != constants.ReferralSourceAuto {
		t.Fatalf("expected auto source, got %s", assignment.Source)
	}
	if assignment.DistanceKm == nil || *assignment.DistanceKm > 50 {
		t.Fatalf("unexpected distance: %+v", assignment.DistanceKm)
	}

	var reloaded models.User
	if err := db.First(&reloaded, orphan.ID).Error; err != nil {
		t.Fatalf("reload orphan failed: %v", err)
	}
	if reloaded.ReferralStatus != constants.ReferralStatusAutoAssigned {
		t.Fatalf("expected auto_assigned status, got %s", reloaded.ReferralStatus)
	}
	if len(reloaded.ReferralChain) != 1 || reloaded.ReferralChain[0] != near.ID {
		t.Fatalf("expected chain [%d], got %v", near.ID, reloaded.ReferralChain)
	}
}

func TestResolvePrefersHigherRoleLevel(t *testing.T) {
	svc, db := setupOrphanServiceTest(t, 50, 0)

	// The mandal coordinator is farther away but outranks the closer
	// team leader.
	createOrphanTestLeader(t, db, "+911500000010", 17.41, 78.5, constants.RoleLevelTeamLeader, 10)
	coordinator := createOrphanTestLeader(t, db, "+911500000011", 17.6, 78.5, constants.RoleLevelMandal, 500)
	orphan := createOrphanTestMember(t, db, "+911500000012", floatPtr(17.4), floatPtr(78.5))

	assignment, err := svc.Resolve(orphan.ID)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if assignment.ReferrerID != coordinator.ID {
		t.Fatalf("expected higher ranked leader %d, got %d", coordinator.ID, assignment.ReferrerID)
	}
}

func TestResolveBreaksRankTieBySmallerTeam(t *testing.T) {
	svc, db := setupOrphanServiceTest(t, 50, 0)

	createOrphanTestLeader(t, db, "+911500000020", 17.41, 78.5, constants.RoleLevelTeamLeader, 200)
	lighter := createOrphanTestLeader(t, db, "+911500000021", 17.6, 78.5, constants.RoleLevelTeamLeader, 20)
	orphan := createOrphanTestMember(t, db, "+911500000022", floatPtr(17.4), floatPtr(78.5))

	assignment, err := svc.Resolve(orphan.ID)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if assignment.ReferrerID != lighter.ID {
		t.Fatalf("expected smaller team leader %d, got %d", lighter.ID, assignment.ReferrerID)
	}
}

func TestResolveNoLocationFallsToAdmin(t *testing.T) {
	admin, svc, db := setupOrphanServiceTestWithAdmin(t, 50)

	orphan := createOrphanTestMember(t, db, "+911500000030", nil, nil)

	assignment, err := svc.Resolve(orphan.ID)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if assignment.ReferrerID != admin.ID {
		t.Fatalf("expected admin account %d, got %d", admin.ID, assignment.ReferrerID)
	}
	if assignment.Source != constants.ReferralSourceAdmin {
		t.Fatalf("expected admin source, got %s", assignment.Source)
	}
	if assignment.Reason != constants.OrphanReasonNoLocation {
		t.Fatalf("expected NO_LOCATION reason, got %s", assignment.Reason)
	}

	var reloaded models.User
	if err := db.First(&reloaded, orphan.ID).Error; err != nil {
		t.Fatalf("reload orphan failed: %v", err)
	}
	if reloaded.ReferralStatus != constants.ReferralStatusAdminAssigned {
		t.Fatalf("expected admin_assigned status, got %s", reloaded.ReferralStatus)
	}
}

func TestResolveNoLeaderInRadiusFallsToAdmin(t *testing.T) {
	admin, svc, db := setupOrphanServiceTestWithAdmin(t, 50)

	// ~110km away, outside the 50km radius.
	createOrphanTestLeader(t, db, "+911500000040", 18.4, 78.5, constants.RoleLevelTeamLeader, 10)
	orphan := createOrphanTestMember(t, db, "+911500000041", floatPtr(17.4), floatPtr(78.5))

	assignment, err := svc.Resolve(orphan.ID)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if assignment.ReferrerID != admin.ID {
		t.Fatalf("expected admin account %d, got %d", admin.ID, assignment.ReferrerID)
	}
	if assignment.Reason != constants.OrphanReasonNoLeaderInRadius {
		t.Fatalf("expected NO_LEADER_IN_RADIUS reason, got %s", assignment.Reason)
	}
}

func TestResolveSkipsDescendantLeaders(t *testing.T) {
	admin, svc, db := setupOrphanServiceTestWithAdmin(t, 50)

	orphan := createOrphanTestMember(t, db, "+911500000050", floatPtr(17.4), floatPtr(78.5))
	// The only nearby leader sits in the orphan's own subtree.
	descendant := createOrphanTestLeader(t, db, "+911500000051", 17.41, 78.5, constants.RoleLevelTeamLeader, 10)
	if err := db.Model(&models.User{}).Where("id = ?", descendant.ID).
		Update("referral_chain", models.IDList{orphan.ID}).Error; err != nil {
		t.Fatalf("seed descendant chain failed: %v", err)
	}

	assignment, err := svc.Resolve(orphan.ID)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if assignment.ReferrerID != admin.ID {
		t.Fatalf("descendant must not absorb its own ancestor, got leader %d", assignment.ReferrerID)
	}
}

func TestResolveAlreadyReferredMember(t *testing.T) {
	svc, db := setupOrphanServiceTest(t, 50, 0)

	member := createOrphanTestMember(t, db, "+911500000060", nil, nil)
	if err := db.Model(&models.User{}).Where("id = ?", member.ID).
		Update("referred_by", "TALSOME01").Error; err != nil {
		t.Fatalf("seed referred_by failed: %v", err)
	}

	if _, err := svc.Resolve(member.ID); !errors.Is(err, ErrNotOrphan) {
		t.Fatalf("expected ErrNotOrphan, got %v", err)
	}
}

func TestResolveAllSweepsPastFailures(t *testing.T) {
	// No admin account configured: locationless orphans fail, located
	// ones still resolve.
	svc, db := setupOrphanServiceTest(t, 50, 0)

	createOrphanTestLeader(t, db, "+911500000070", 17.41, 78.5, constants.RoleLevelTeamLeader, 10)
	createOrphanTestMember(t, db, "+911500000071", nil, nil)
	located := createOrphanTestMember(t, db, "+911500000072", floatPtr(17.4), floatPtr(78.5))

	assignments, err := svc.ResolveAll(0)
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if len(assignments) != 1 {
		t.Fatalf("expected one assignment, got %d", len(assignments))
	}
	if assignments[0].UserID != located.ID {
		t.Fatalf("expected located orphan %d resolved, got %d", located.ID, assignments[0].UserID)
	}
}

func TestHaversineKm(t *testing.T) {
	// One degree of latitude is ~111km.
	got := haversineKm(17.0, 78.0, 18.0, 78.0)
	if got < 110 || got > 112 {
		t.Fatalf("expected ~111km, got %.2f", got)
	}
	if d := haversineKm(17.4, 78.5, 17.4, 78.5); d != 0 {
		t.Fatalf("expected zero distance, got %f", d)
	}
}

func setupOrphanServiceTest(t *testing.T, radiusKm float64, adminUserID uint) (*OrphanService, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:orphan_service_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.ReferralCode{}, &models.Referral{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	chainService := NewReferralChainService(
		userRepo,
		repository.NewReferralCodeRepository(db),
		repository.NewReferralRepository(db),
	)
	return NewOrphanService(userRepo, chainService, nil, radiusKm, adminUserID), db
}

func setupOrphanServiceTestWithAdmin(t *testing.T, radiusKm float64) (models.User, *OrphanService, *gorm.DB) {
	t.Helper()

	svc, db := setupOrphanServiceTest(t, radiusKm, 0)
	admin := createOrphanTestLeader(t, db, "+911500009999", 0, 0, constants.RoleLevelState, 0)
	svc.adminUserID = admin.ID
	return admin, svc, db
}

func floatPtr(v float64) *float64 {
	return &v
}

func createOrphanTestMember(t *testing.T, db *gorm.DB, phone string, lat, lon *float64) models.User {
	t.Helper()

	row := models.User{
		Phone:          phone,
		PasswordHash:   "hash",
		Status:         constants.UserStatusActive,
		ReferralStatus: constants.ReferralStatusPendingPayment,
		CurrentRole:    constants.RoleMember,
		RoleLevel:      constants.RoleLevelMember,
		Latitude:       lat,
		Longitude:      lon,
	}
	if err := db.Create(&row).Error; err != nil {
		t.Fatalf("create member failed: %v", err)
	}
	return row
}

func createOrphanTestLeader(t *testing.T, db *gorm.DB, phone string, lat, lon float64, roleLevel int, teamSize int64) models.User {
	t.Helper()

	code := fmt.Sprintf("TALLDR%s", phone[len(phone)-4:])
	row := models.User{
		Phone:          phone,
		PasswordHash:   "hash",
		Status:         constants.UserStatusActive,
		ReferralCode:   &code,
		ReferralStatus: constants.ReferralStatusActive,
		CurrentRole:    constants.RoleTeamLeader,
		RoleLevel:      roleLevel,
		TotalTeamSize:  teamSize,
		Latitude:       &lat,
		Longitude:      &lon,
	}
	if err := db.Create(&row).Error; err != nil {
		t.Fatalf("create leader failed: %v", err)
	}
	return row
}
