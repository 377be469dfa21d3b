package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/talowa-app/internal/constants"
	"github.com/talowa-app/internal/models"
	"github.com/talowa-app/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func TestIssueCodeReservesBrandedCode(t *testing.T) {
	svc, db := setupCodeServiceTest(t, 8, 10)

	user := createCodeTestUser(t, db, "+911200000001")
	issued, err := svc.IssueCode(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("issue code failed: %v", err)
	}
	if !strings.HasPrefix(issued.Code, "TAL") {
		t.Fatalf("expected TAL prefix, got %s", issued.Code)
	}
	if !ValidCodeFormat(issued.Code) {
		t.Fatalf("issued code fails format check: %s", issued.Code)
	}
	if len(issued.Code) != len("TAL")+8 {
		t.Fatalf("expected 8-char suffix, got %s", issued.Code)
	}
	for _, r := range issued.Code[3:] {
		if strings.ContainsRune("0O1I", r) {
			t.Fatalf("ambiguous character %c in code %s", r, issued.Code)
		}
	}

	var reloaded models.User
	if err := db.First(&reloaded, user.ID).Error; err != nil {
		t.Fatalf("reload user failed: %v", err)
	}
	if reloaded.ReferralCode == nil || *reloaded.ReferralCode != issued.Code {
		t.Fatalf("expected user column %s, got %+v", issued.Code, reloaded.ReferralCode)
	}
}

func TestIssueCodeIsIdempotent(t *testing.T) {
	svc, db := setupCodeServiceTest(t, 8, 10)

	user := createCodeTestUser(t, db, "+911200000010")
	first, err := svc.IssueCode(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("first issue failed: %v", err)
	}
	second, err := svc.IssueCode(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("second issue failed: %v", err)
	}
	if first.Code != second.Code {
		t.Fatalf("expected same code on reissue, got %s and %s", first.Code, second.Code)
	}

	var count int64
	if err := db.Model(&models.ReferralCode{}).Where("user_id = ?", user.ID).Count(&count).Error; err != nil {
		t.Fatalf("count codes failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one reserved code, got %d", count)
	}
}

func TestIssueCodeBackfillsUserColumn(t *testing.T) {
	svc, db := setupCodeServiceTest(t, 8, 10)

	// A reserved code row whose user write-back never landed.
	user := createCodeTestUser(t, db, "+911200000015")
	row := models.ReferralCode{
		Code:       "TALHALFDN1",
		UserID:     user.ID,
		IsActive:   true,
		ReservedAt: time.Now(),
	}
	if err := db.Create(&row).Error; err != nil {
		t.Fatalf("seed code row failed: %v", err)
	}

	issued, err := svc.IssueCode(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("issue code failed: %v", err)
	}
	if issued.Code != "TALHALFDN1" {
		t.Fatalf("expected existing reservation, got %s", issued.Code)
	}

	var reloaded models.User
	if err := db.First(&reloaded, user.ID).Error; err != nil {
		t.Fatalf("reload user failed: %v", err)
	}
	if reloaded.ReferralCode == nil || *reloaded.ReferralCode != "TALHALFDN1" {
		t.Fatalf("expected user column backfilled, got %+v", reloaded.ReferralCode)
	}

	var count int64
	if err := db.Model(&models.ReferralCode{}).Where("user_id = ?", user.ID).Count(&count).Error; err != nil {
		t.Fatalf("count codes failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one reserved code, got %d", count)
	}
}

func TestIssueCodeUnknownUser(t *testing.T) {
	svc, _ := setupCodeServiceTest(t, 8, 10)

	if _, err := svc.IssueCode(context.Background(), 9999); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestIssueCodeRetriesPastCollisions(t *testing.T) {
	// A 1-char suffix over a 32-char alphabet collides fast; with enough
	// attempts the issuer must still find free codes for a handful of
	// members.
	svc, db := setupCodeServiceTest(t, 1, 64)

	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		user := createCodeTestUser(t, db, fmt.Sprintf("+9112000001%02d", i))
		issued, err := svc.IssueCode(context.Background(), user.ID)
		if err != nil {
			t.Fatalf("issue for user %d failed: %v", user.ID, err)
		}
		if seen[issued.Code] {
			t.Fatalf("duplicate code issued: %s", issued.Code)
		}
		seen[issued.Code] = true
	}
}

func TestValidCodeFormat(t *testing.T) {
	cases := []struct {
		code string
		ok   bool
	}{
		{"TALABCDEF", true},
		{"TALABCDEFGH", true},
		{"TAL234567", true},
		{"TALABCDE", false},     // 5-char suffix
		{"TALABCDEFGHI", false}, // 9-char suffix
		{"XYZABCDEF", false},
		{"talabcdef", false}, // normalization is the caller's job
		{"", false},
	}
	for _, c := range cases {
		if got := ValidCodeFormat(c.code); got != c.ok {
			t.Fatalf("ValidCodeFormat(%q) = %v, want %v", c.code, got, c.ok)
		}
	}
}

func TestNormalizeCode(t *testing.T) {
	if got := NormalizeCode("  talAbCdEf \n"); got != "TALABCDEF" {
		t.Fatalf("unexpected normalization: %q", got)
	}
}

func setupCodeServiceTest(t *testing.T, suffixLength, maxAttempts int) (*ReferralCodeService, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:code_service_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.ReferralCode{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	return NewReferralCodeService(
		repository.NewReferralCodeRepository(db),
		repository.NewUserRepository(db),
		suffixLength,
		maxAttempts,
	), db
}

func createCodeTestUser(t *testing.T, db *gorm.DB, phone string) models.User {
	t.Helper()

	row := models.User{
		Phone:          phone,
		PasswordHash:   "hash",
		Status:         constants.UserStatusActive,
		ReferralStatus: constants.ReferralStatusPendingPayment,
		CurrentRole:    constants.RoleMember,
		RoleLevel:      constants.RoleLevelMember,
	}
	if err := db.Create(&row).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	return row
}
