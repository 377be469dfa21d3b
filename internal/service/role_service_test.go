package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/talowa-app/internal/constants"
	"github.com/talowa-app/internal/models"
	"github.com/talowa-app/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func TestEvaluateRoleTiers(t *testing.T) {
	svc, _ := setupRoleServiceTest(t, 0)

	cases := []struct {
		direct, team int64
		isUrban      bool
		wantRole     string
		wantLevel    int
	}{
		{0, 0, false, constants.RoleMember, constants.RoleLevelMember},
		{9, 100, false, constants.RoleMember, constants.RoleLevelMember},
		{10, 9, false, constants.RoleMember, constants.RoleLevelMember},
		{10, 10, false, constants.RoleVolunteer, constants.RoleLevelVolunteer},
		{19, 100, false, constants.RoleVolunteer, constants.RoleLevelVolunteer},
		{20, 99, false, constants.RoleVolunteer, constants.RoleLevelVolunteer},
		{20, 100, false, constants.RoleTeamLeader, constants.RoleLevelTeamLeader},
		{40, 700, true, constants.RoleAreaCoordinator, constants.RoleLevelAreaVillage},
		{40, 700, false, constants.RoleVillageCoordinator, constants.RoleLevelAreaVillage},
		{80, 6000, false, constants.RoleMandalCoordinator, constants.RoleLevelMandal},
		{160, 50000, false, constants.RoleConstituencyCoordinator, constants.RoleLevelConstituency},
		{320, 500000, false, constants.RoleDistrictCoordinator, constants.RoleLevelDistrict},
		{500, 1000000, false, constants.RoleZonalCoordinator, constants.RoleLevelZonal},
		{1000, 3000000, false, constants.RoleStateCoordinator, constants.RoleLevelState},
		// Huge direct count with a tiny team still only earns what both
		// counters support.
		{1000, 10, false, constants.RoleVolunteer, constants.RoleLevelVolunteer},
	}
	for _, c := range cases {
		role, level := svc.EvaluateRole(c.direct, c.team, c.isUrban)
		if role != c.wantRole || level != c.wantLevel {
			t.Fatalf("EvaluateRole(%d, %d, %v) = (%s, %d), want (%s, %d)",
				c.direct, c.team, c.isUrban, role, level, c.wantRole, c.wantLevel)
		}
	}
}

func TestEvaluateRoleZonalThresholdConfigurable(t *testing.T) {
	svc, _ := setupRoleServiceTest(t, 2000000)

	role, level := svc.EvaluateRole(500, 1000000, false)
	if role != constants.RoleDistrictCoordinator || level != constants.RoleLevelDistrict {
		t.Fatalf("expected district below raised zonal threshold, got (%s, %d)", role, level)
	}
	role, level = svc.EvaluateRole(500, 2000000, false)
	if role != constants.RoleZonalCoordinator || level != constants.RoleLevelZonal {
		t.Fatalf("expected zonal at raised threshold, got (%s, %d)", role, level)
	}
}

func TestReevaluatePromotesAndRecords(t *testing.T) {
	svc, db := setupRoleServiceTest(t, 0)

	user := createRoleTestUser(t, db, "+911300000001", 20, 100)
	if err := svc.Reevaluate(user.ID); err != nil {
		t.Fatalf("reevaluate failed: %v", err)
	}

	var reloaded models.User
	if err := db.First(&reloaded, user.ID).Error; err != nil {
		t.Fatalf("reload user failed: %v", err)
	}
	if reloaded.CurrentRole != constants.RoleTeamLeader || reloaded.RoleLevel != constants.RoleLevelTeamLeader {
		t.Fatalf("expected team_leader L3, got %s L%d", reloaded.CurrentRole, reloaded.RoleLevel)
	}
	if reloaded.PromotedAt == nil {
		t.Fatalf("expected promoted_at set")
	}

	var change models.RoleChange
	if err := db.Where("user_id = ?", user.ID).First(&change).Error; err != nil {
		t.Fatalf("load role change failed: %v", err)
	}
	if change.FromRole != constants.RoleMember || change.ToRole != constants.RoleTeamLeader {
		t.Fatalf("unexpected role change: %+v", change)
	}
	if change.FromLevel != constants.RoleLevelMember || change.ToLevel != constants.RoleLevelTeamLeader {
		t.Fatalf("unexpected levels: %+v", change)
	}
}

func TestReevaluateBelowThresholdIsNoop(t *testing.T) {
	svc, db := setupRoleServiceTest(t, 0)

	user := createRoleTestUser(t, db, "+911300000010", 19, 100)
	if err := svc.Reevaluate(user.ID); err != nil {
		t.Fatalf("reevaluate failed: %v", err)
	}

	var reloaded models.User
	if err := db.First(&reloaded, user.ID).Error; err != nil {
		t.Fatalf("reload user failed: %v", err)
	}
	if reloaded.CurrentRole != constants.RoleVolunteer {
		t.Fatalf("expected volunteer at 19/100, got %s", reloaded.CurrentRole)
	}
}

func TestReevaluateNeverDemotes(t *testing.T) {
	svc, db := setupRoleServiceTest(t, 0)

	// Counters support only volunteer, but the member already holds
	// mandal coordinator.
	user := createRoleTestUser(t, db, "+911300000020", 10, 10)
	if err := db.Model(&models.User{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
		"current_role": constants.RoleMandalCoordinator,
		"role_level":   constants.RoleLevelMandal,
	}).Error; err != nil {
		t.Fatalf("seed held role failed: %v", err)
	}

	if err := svc.Reevaluate(user.ID); err != nil {
		t.Fatalf("reevaluate failed: %v", err)
	}

	var reloaded models.User
	if err := db.First(&reloaded, user.ID).Error; err != nil {
		t.Fatalf("reload user failed: %v", err)
	}
	if reloaded.CurrentRole != constants.RoleMandalCoordinator || reloaded.RoleLevel != constants.RoleLevelMandal {
		t.Fatalf("role regressed to %s L%d", reloaded.CurrentRole, reloaded.RoleLevel)
	}

	var changes int64
	if err := db.Model(&models.RoleChange{}).Where("user_id = ?", user.ID).Count(&changes).Error; err != nil {
		t.Fatalf("count changes failed: %v", err)
	}
	if changes != 0 {
		t.Fatalf("expected no role change rows, got %d", changes)
	}
}

func TestReevaluateEqualLevelIsNoop(t *testing.T) {
	svc, db := setupRoleServiceTest(t, 0)

	user := createRoleTestUser(t, db, "+911300000030", 10, 10)
	if err := db.Model(&models.User{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
		"current_role": constants.RoleVolunteer,
		"role_level":   constants.RoleLevelVolunteer,
	}).Error; err != nil {
		t.Fatalf("seed held role failed: %v", err)
	}

	if err := svc.Reevaluate(user.ID); err != nil {
		t.Fatalf("reevaluate failed: %v", err)
	}

	var changes int64
	if err := db.Model(&models.RoleChange{}).Where("user_id = ?", user.ID).Count(&changes).Error; err != nil {
		t.Fatalf("count changes failed: %v", err)
	}
	if changes != 0 {
		t.Fatalf("expected no role change rows at equal level, got %d", changes)
	}
}

func setupRoleServiceTest(t *testing.T, zonalTeamSize int64) (*RoleService, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:role_service_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.RoleChange{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	return NewRoleService(
		repository.NewUserRepository(db),
		repository.NewRoleChangeRepository(db),
		nil,
		zonalTeamSize,
	), db
}

func createRoleTestUser(t *testing.T, db *gorm.DB, phone string, direct, team int64) models.User {
	t.Helper()

	row := models.User{
		Phone:               phone,
		PasswordHash:        "hash",
		Status:              constants.UserStatusActive,
		ReferralStatus:      constants.ReferralStatusActive,
		CurrentRole:         constants.RoleMember,
		RoleLevel:           constants.RoleLevelMember,
		DirectReferralCount: direct,
		TotalTeamSize:       team,
	}
	if err := db.Create(&row).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	return row
}
