package models

import (
	"strings"

	"github.com/talowa-app/internal/logger"

	"golang.org/x/crypto/bcrypt"
)

// AutoMigrate creates or updates all tables.
func AutoMigrate() error {
	return DB.AutoMigrate(
		&User{},
		&ReferralCode{},
		&Referral{},
		&RoleChange{},
		&MembershipPayment{},
		&Notification{},
		&Admin{},
	)
}

// InitDefaultAdmin creates the default back-office account when none exists.
func InitDefaultAdmin(username, password string) error {
	var count int64
	DB.Model(&Admin{}).Count(&count)

	// With admins already present, make sure the default account keeps
	// super privileges across upgrades.
	if count > 0 {
		if err := DB.Model(&Admin{}).Where("username = ?", "admin").Update("is_super", true).Error; err != nil {
			logger.Warnw("ensure_default_admin_super_failed", "error", err)
		}
		return nil
	}

	if username == "" {
		username = "admin"
	}
	if password == "" {
		password = "admin123"
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := Admin{
		Username:     username,
		PasswordHash: string(hash),
		IsSuper:      strings.EqualFold(strings.TrimSpace(username), "admin"),
	}

	if err := DB.Create(&admin).Error; err != nil {
		return err
	}

	if password == "admin123" {
		logger.Warnw("default_admin_created_with_default_password", "username", username)
		logger.Warnw("default_admin_password_change_required", "username", username)
	} else {
		logger.Warnw("default_admin_created", "username", username, "password_hidden", true)
	}

	return nil
}
