package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/talowa-app/internal/constants"
	"github.com/talowa-app/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupUserRepositoryTest(t *testing.T) (*GormUserRepository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:user_repo_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return NewUserRepository(db), db
}

func createRepoTestUser(t *testing.T, db *gorm.DB, phone string, mutate func(*models.User)) *models.User {
	t.Helper()
	user := &models.User{
		Phone:          phone,
		PasswordHash:   "hash",
		FullName:       "Member " + phone,
		Status:         constants.UserStatusActive,
		ReferralStatus: constants.ReferralStatusPendingPayment,
		CurrentRole:    constants.RoleMember,
		RoleLevel:      constants.RoleLevelMember,
	}
	if mutate != nil {
		mutate(user)
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user %s failed: %v", phone, err)
	}
	return user
}

func TestSetReferrerIsWriteOnce(t *testing.T) {
	repo, db := setupUserRepositoryTest(t)
	user := createRepoTestUser(t, db, "+919000000001", nil)

	rows, err := repo.SetReferrer(user.ID, "talabc123", models.IDList{7}, constants.ReferralStatusPendingPayment)
	if err != nil {
		t.Fatalf("set referrer failed: %v", err)
	}
	if rows != 1 {
		t.Fatalf("first write rows want 1 got %d", rows)
	}

	rows, err = repo.SetReferrer(user.ID, "TALOTHER1", models.IDList{8}, "")
	if err != nil {
		t.Fatalf("second set referrer failed: %v", err)
	}
	if rows != 0 {
		t.Fatalf("second write rows want 0 got %d", rows)
	}

	stored, err := repo.GetByID(user.ID)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if stored.ReferredBy != "TALABC123" {
		t.Fatalf("referred_by want TALABC123 got %s", stored.ReferredBy)
	}
	if len(stored.ReferralChain) != 1 || stored.ReferralChain[0] != 7 {
		t.Fatalf("chain want [7] got %v", stored.ReferralChain)
	}
}

func TestSetReferralCodeIsWriteOnce(t *testing.T) {
	repo, db := setupUserRepositoryTest(t)
	user := createRepoTestUser(t, db, "+919000000005", nil)

	rows, err := repo.SetReferralCode(user.ID, "talfirst01")
	if err != nil {
		t.Fatalf("set referral code failed: %v", err)
	}
	if rows != 1 {
		t.Fatalf("first write rows want 1 got %d", rows)
	}

	rows, err = repo.SetReferralCode(user.ID, "TALSECOND2")
	if err != nil {
		t.Fatalf("second set referral code failed: %v", err)
	}
	if rows != 0 {
		t.Fatalf("second write rows want 0 got %d", rows)
	}

	stored, err := repo.GetByID(user.ID)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if stored.ReferralCode == nil || *stored.ReferralCode != "TALFIRST01" {
		t.Fatalf("referral code want TALFIRST01 got %+v", stored.ReferralCode)
	}
}

func TestMarkActivatedIsAStateGate(t *testing.T) {
	repo, db := setupUserRepositoryTest(t)
	pending := createRepoTestUser(t, db, "+919000000011", nil)
	assigned := createRepoTestUser(t, db, "+919000000012", func(u *models.User) {
		u.ReferralStatus = constants.ReferralStatusAutoAssigned
	})

	now := time.Now().UTC().Truncate(time.Second)
	for _, user := range []*models.User{pending, assigned} {
		rows, err := repo.MarkActivated(user.ID, now)
		if err != nil {
			t.Fatalf("mark activated failed: %v", err)
		}
		if rows != 1 {
			t.Fatalf("activation rows want 1 got %d", rows)
		}
	}

	// Already active rows are not touched again.
	rows, err := repo.MarkActivated(pending.ID, now.Add(time.Hour))
	if err != nil {
		t.Fatalf("repeat mark activated failed: %v", err)
	}
	if rows != 0 {
		t.Fatalf("repeat activation rows want 0 got %d", rows)
	}

	stored, err := repo.GetByID(pending.ID)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if stored.ReferralStatus != constants.ReferralStatusActive {
		t.Fatalf("status want active got %s", stored.ReferralStatus)
	}
	if stored.ActivatedAt == nil || !stored.ActivatedAt.Equal(now) {
		t.Fatalf("activated_at want %v got %v", now, stored.ActivatedAt)
	}
}

func TestPromoteRoleNeverLowersLevel(t *testing.T) {
	repo, db := setupUserRepositoryTest(t)
	user := createRepoTestUser(t, db, "+919000000021", func(u *models.User) {
		u.CurrentRole = constants.RoleTeamLeader
		u.RoleLevel = constants.RoleLevelTeamLeader
	})

	now := time.Now().UTC().Truncate(time.Second)
	rows, err := repo.PromoteRole(user.ID, constants.RoleMandalCoordinator, constants.RoleLevelMandal, now)
	if err != nil {
		t.Fatalf("promote failed: %v", err)
	}
	if rows != 1 {
		t.Fatalf("promote rows want 1 got %d", rows)
	}

	rows, err = repo.PromoteRole(user.ID, constants.RoleVolunteer, constants.RoleLevelVolunteer, now)
	if err != nil {
		t.Fatalf("demotion attempt failed: %v", err)
	}
	if rows != 0 {
		t.Fatalf("demotion rows want 0 got %d", rows)
	}

	stored, err := repo.GetByID(user.ID)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if stored.CurrentRole != constants.RoleMandalCoordinator || stored.RoleLevel != constants.RoleLevelMandal {
		t.Fatalf("role want mandal L%d got %s L%d", constants.RoleLevelMandal, stored.CurrentRole, stored.RoleLevel)
	}
}

func TestCountersIncrementAtomically(t *testing.T) {
	repo, db := setupUserRepositoryTest(t)
	user := createRepoTestUser(t, db, "+919000000031", nil)

	for i := 0; i < 3; i++ {
		if err := repo.IncrementTeamSize(user.ID, 1); err != nil {
			t.Fatalf("increment team size failed: %v", err)
		}
	}
	if err := repo.IncrementDirectReferrals(user.ID, 1); err != nil {
		t.Fatalf("increment direct referrals failed: %v", err)
	}

	stored, err := repo.GetByID(user.ID)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if stored.TotalTeamSize != 3 {
		t.Fatalf("team size want 3 got %d", stored.TotalTeamSize)
	}
	if stored.DirectReferralCount != 1 {
		t.Fatalf("direct count want 1 got %d", stored.DirectReferralCount)
	}
}

func TestListActiveLeadersRequiresLocationAndRank(t *testing.T) {
	repo, db := setupUserRepositoryTest(t)
	lat, lng := 17.4, 78.5

	leader := createRepoTestUser(t, db, "+919000000041", func(u *models.User) {
		u.CurrentRole = constants.RoleTeamLeader
		u.RoleLevel = constants.RoleLevelTeamLeader
		u.ReferralStatus = constants.ReferralStatusActive
		u.Latitude = &lat
		u.Longitude = &lng
	})
	// Below minimum rank.
	createRepoTestUser(t, db, "+919000000042", func(u *models.User) {
		u.ReferralStatus = constants.ReferralStatusActive
		u.Latitude = &lat
		u.Longitude = &lng
	})
	// No coordinates.
	createRepoTestUser(t, db, "+919000000043", func(u *models.User) {
		u.CurrentRole = constants.RoleTeamLeader
		u.RoleLevel = constants.RoleLevelTeamLeader
		u.ReferralStatus = constants.ReferralStatusActive
	})
	// Not an active member yet.
	createRepoTestUser(t, db, "+919000000044", func(u *models.User) {
		u.CurrentRole = constants.RoleTeamLeader
		u.RoleLevel = constants.RoleLevelTeamLeader
		u.Latitude = &lat
		u.Longitude = &lng
	})

	leaders, err := repo.ListActiveLeaders(constants.RoleLevelTeamLeader)
	if err != nil {
		t.Fatalf("list leaders failed: %v", err)
	}
	if len(leaders) != 1 {
		t.Fatalf("leaders len want 1 got %d", len(leaders))
	}
	if leaders[0].ID != leader.ID {
		t.Fatalf("leader want id=%d got id=%d", leader.ID, leaders[0].ID)
	}
}

func TestListPendingOrphansFindsUnlinkedMembers(t *testing.T) {
	repo, db := setupUserRepositoryTest(t)

	orphan := createRepoTestUser(t, db, "+919000000051", nil)
	createRepoTestUser(t, db, "+919000000052", func(u *models.User) {
		u.ReferredBy = "TALABC123"
	})
	createRepoTestUser(t, db, "+919000000053", func(u *models.User) {
		u.ReferralStatus = constants.ReferralStatusActive
	})

	rows, total, err := repo.ListPendingOrphans(OrphanListFilter{Page: 1, PageSize: 20})
	if err != nil {
		t.Fatalf("list orphans failed: %v", err)
	}
	if total != 1 {
		t.Fatalf("total want 1 got %d", total)
	}
	if len(rows) != 1 || rows[0].ID != orphan.ID {
		t.Fatalf("orphan want id=%d got %+v", orphan.ID, rows)
	}
}

func TestListMembersFilters(t *testing.T) {
	repo, db := setupUserRepositoryTest(t)

	createRepoTestUser(t, db, "+919000000061", func(u *models.User) {
		u.FullName = "Anita Rao"
		u.CurrentRole = constants.RoleVolunteer
		u.RoleLevel = constants.RoleLevelVolunteer
		u.ReferralStatus = constants.ReferralStatusActive
	})
	createRepoTestUser(t, db, "+919000000062", func(u *models.User) {
		u.FullName = "Bhaskar Reddy"
	})

	t.Run("by keyword", func(t *testing.T) {
		rows, total, err := repo.ListMembers(MemberListFilter{Page: 1, PageSize: 20, Keyword: "Anita"})
		if err != nil {
			t.Fatalf("list by keyword failed: %v", err)
		}
		if total != 1 || len(rows) != 1 {
			t.Fatalf("want single Anita row, got total=%d len=%d", total, len(rows))
		}
		if rows[0].FullName != "Anita Rao" {
			t.Fatalf("unexpected member %s", rows[0].FullName)
		}
	})

	t.Run("by role and status", func(t *testing.T) {
		rows, total, err := repo.ListMembers(MemberListFilter{
			Page:           1,
			PageSize:       20,
			Role:           constants.RoleVolunteer,
			ReferralStatus: constants.ReferralStatusActive,
		})
		if err != nil {
			t.Fatalf("list by role failed: %v", err)
		}
		if total != 1 || len(rows) != 1 {
			t.Fatalf("want single volunteer row, got total=%d len=%d", total, len(rows))
		}
	})

	t.Run("by minimum role level", func(t *testing.T) {
		_, total, err := repo.ListMembers(MemberListFilter{Page: 1, PageSize: 20, MinRoleLevel: constants.RoleLevelVolunteer})
		if err != nil {
			t.Fatalf("list by level failed: %v", err)
		}
		if total != 1 {
			t.Fatalf("total want 1 got %d", total)
		}
	})
}
