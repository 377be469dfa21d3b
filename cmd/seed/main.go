package main

import (
	"fmt"
	"os"
	"time"

	"github.com/talowa-app/internal/config"
	"github.com/talowa-app/internal/constants"
	"github.com/talowa-app/internal/logger"
	"github.com/talowa-app/internal/models"

	"golang.org/x/crypto/bcrypt"
)

const rootReferralCode = "TALOWAROOT"

func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()

	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	if err := models.InitDefaultAdmin(
		os.Getenv("TAL_DEFAULT_ADMIN_USERNAME"),
		os.Getenv("TAL_DEFAULT_ADMIN_PASSWORD"),
	); err != nil {
		stdLog.Printf("Failed to initialize default admin: %v", err)
	}

	// The network root is the fallback account orphans attach to when no
	// geo candidate exists. Point referral.admin_user_id at it.
	rootPhone := os.Getenv("TAL_ROOT_PHONE")
	if rootPhone == "" {
		rootPhone = "+911000000000"
	}
	rootPassword := os.Getenv("TAL_ROOT_PASSWORD")
	if rootPassword == "" {
		rootPassword = "talowa-root-2026"
		stdLog.Printf("TAL_ROOT_PASSWORD not set, using the development default")
	}

	var root models.User
	if err := models.DB.Where("phone = ?", rootPhone).First(&root).Error; err != nil {
		hash, hashErr := bcrypt.GenerateFromPassword([]byte(rootPassword), bcrypt.DefaultCost)
		if hashErr != nil {
			stdLog.Fatalf("Failed to hash root password: %v", hashErr)
		}
		now := time.Now()
		code := rootReferralCode
		root = models.User{
			Phone:          rootPhone,
			PasswordHash:   string(hash),
			FullName:       "TALOWA Network",
			Status:         constants.UserStatusActive,
			ReferralCode:   &code,
			ReferralStatus: constants.ReferralStatusActive,
			CurrentRole:    constants.RoleStateCoordinator,
			RoleLevel:      constants.RoleLevelState,
			ActivatedAt:    &now,
		}
		if err := models.DB.Create(&root).Error; err != nil {
			stdLog.Fatalf("Failed to create network root account: %v", err)
		}
		stdLog.Printf("Created network root account: %s (id=%d)", rootPhone, root.ID)
	} else {
		stdLog.Printf("Network root account already exists: %s (id=%d)", rootPhone, root.ID)
	}

	var codeRow models.ReferralCode
	if err := models.DB.Where("code = ?", rootReferralCode).First(&codeRow).Error; err != nil {
		codeRow = models.ReferralCode{
			Code:       rootReferralCode,
			UserID:     root.ID,
			IsActive:   true,
			ReservedAt: time.Now(),
		}
		if err := models.DB.Create(&codeRow).Error; err != nil {
			stdLog.Printf("Failed to reserve root referral code: %v", err)
		} else {
			stdLog.Printf("Reserved root referral code: %s", rootReferralCode)
		}
	} else {
		stdLog.Printf("Root referral code already reserved: %s", rootReferralCode)
	}

	fmt.Println("\nSeed complete.")
	fmt.Printf("- Root account id: %d\n", root.ID)
	fmt.Printf("- Root referral code: %s\n", rootReferralCode)
	fmt.Printf("- Set referral.admin_user_id: %d in config.yml to route orphans here\n", root.ID)
}
