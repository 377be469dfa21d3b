package service

import (
	"unicode"

	"github.com/talowa-app/internal/config"
)

func validatePassword(policy config.PasswordPolicyConfig, password string) error {
	if policy.MinLength <= 0 && !policy.RequireNumber && !policy.RequireLetter {
		return nil
	}

	if policy.MinLength > 0 {
		if len([]rune(password)) < policy.MinLength {
			return ErrWeakPassword
		}
	}

	var hasNumber, hasLetter bool
	for _, r := range password {
		switch {
		case unicode.IsDigit(r):
			hasNumber = true
		case unicode.IsLetter(r):
			hasLetter = true
		}
	}

	if policy.RequireNumber && !hasNumber {
		return ErrWeakPassword
	}
	if policy.RequireLetter && !hasLetter {
		return ErrWeakPassword
	}
	return nil
}
