package service

import (
	"context"
	"crypto/rand"
	"math/big"
	"regexp"
	"strings"
	"time"

	"github.com/talowa-app/internal/models"
	"github.com/talowa-app/internal/repository"

	"github.com/sethvargo/go-retry"
	"gorm.io/gorm"
)

const (
	// referralCodePrefix brands every issued code.
	referralCodePrefix = "TAL"
	// referralCodeAlphabet drops 0, O, 1 and I to keep codes readable
	// over the phone.
	referralCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// referralCodePattern accepts the historical 6-char suffixes alongside
// the current 8-char ones.
var referralCodePattern = regexp.MustCompile(`^TAL[A-Z0-9]{6,8}$`)

// ReferralCodeService issues and validates referral codes.
type ReferralCodeService struct {
	codeRepo     repository.ReferralCodeRepository
	userRepo     repository.UserRepository
	suffixLength int
	maxAttempts  int
}

// NewReferralCodeService creates a referral code service.
func NewReferralCodeService(
	codeRepo repository.ReferralCodeRepository,
	userRepo repository.UserRepository,
	suffixLength int,
	maxAttempts int,
) *ReferralCodeService {
	if suffixLength <= 0 {
		suffixLength = 8
	}
	if maxAttempts <= 0 {
		maxAttempts = 10
	}
	return &ReferralCodeService{
		codeRepo:     codeRepo,
		userRepo:     userRepo,
		suffixLength: suffixLength,
		maxAttempts:  maxAttempts,
	}
}

// NormalizeCode uppercases and trims a user-typed code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidCodeFormat reports whether a normalized code matches the issued
// code shape.
func ValidCodeFormat(code string) bool {
	return referralCodePattern.MatchString(code)
}

// IssueCode returns the member's referral code, reserving a fresh one on
// first call. Repeated calls return the same code.
func (s *ReferralCodeService) IssueCode(ctx context.Context, userID uint) (*models.ReferralCode, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}

	existing, err := s.codeRepo.GetByUserID(userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		// Repair a half-written reservation: the code row may exist
		// while the user column is still empty.
		if _, err := s.userRepo.SetReferralCode(userID, existing.Code); err != nil {
			return nil, err
		}
		return existing, nil
	}

	var reserved *models.ReferralCode
	backoff := retry.WithMaxRetries(uint64(s.maxAttempts-1), retry.NewConstant(time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		code, genErr := s.generateCode()
		if genErr != nil {
			return genErr
		}
		now := time.Now()
		candidate := &models.ReferralCode{
			Code:       code,
			UserID:     userID,
			IsActive:   true,
			ReservedAt: now,
		}
		txErr := s.userRepo.Transaction(func(tx *gorm.DB) error {
			if createErr := s.codeRepo.WithTx(tx).Create(candidate); createErr != nil {
				return createErr
			}
			_, updErr := s.userRepo.WithTx(tx).SetReferralCode(userID, candidate.Code)
			return updErr
		})
		if txErr != nil {
			if isUniqueViolation(txErr) {
				// Another member drew the same suffix, try again.
				return retry.RetryableError(txErr)
			}
			return txErr
		}
		reserved = candidate
		return nil
	})
	if err != nil {
		if isUniqueViolation(err) {
			// A concurrent call for the same member may have won the
			// user_id index; hand back its reservation.
			winner, getErr := s.codeRepo.GetByUserID(userID)
			if getErr == nil && winner != nil {
				if _, updErr := s.userRepo.SetReferralCode(userID, winner.Code); updErr != nil {
					return nil, updErr
				}
				return winner, nil
			}
			return nil, ErrCodeGenerationExhausted
		}
		return nil, err
	}
	return reserved, nil
}

// GetByUserID returns the member's code without reserving one.
func (s *ReferralCodeService) GetByUserID(userID uint) (*models.ReferralCode, error) {
	return s.codeRepo.GetByUserID(userID)
}

func (s *ReferralCodeService) generateCode() (string, error) {
	var builder strings.Builder
	builder.Grow(len(referralCodePrefix) + s.suffixLength)
	builder.WriteString(referralCodePrefix)
	max := big.NewInt(int64(len(referralCodeAlphabet)))
	for i := 0; i < s.suffixLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		builder.WriteByte(referralCodeAlphabet[n.Int64()])
	}
	return builder.String(), nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
