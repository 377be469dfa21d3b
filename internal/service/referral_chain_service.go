package service

import (
	"time"

	"github.com/talowa-app/internal/constants"
	"github.com/talowa-app/internal/models"
	"github.com/talowa-app/internal/repository"

	"gorm.io/gorm"
)

// ReferralChainService attaches new members to their referrer's
// ancestry chain.
type ReferralChainService struct {
	userRepo     repository.UserRepository
	codeRepo     repository.ReferralCodeRepository
	referralRepo repository.ReferralRepository
}

// NewReferralChainService creates a chain service.
func NewReferralChainService(
	userRepo repository.UserRepository,
	codeRepo repository.ReferralCodeRepository,
	referralRepo repository.ReferralRepository,
) *ReferralChainService {
	return &ReferralChainService{
		userRepo:     userRepo,
		codeRepo:     codeRepo,
		referralRepo: referralRepo,
	}
}

// AttachInput describes an attachment produced outside the normal
// code-application flow (orphan auto or admin assignment).
type AttachInput struct {
	Source             string
	ReferralStatus     string
	AssignmentReason   string
	AssignmentDistance *float64
}

// ApplyCode validates a referral code and links the member under its
// owner. Replaying the same code is a no-op returning the stored
// referrer; a different code conflicts.
func (s *ReferralChainService) ApplyCode(userID uint, rawCode string) (uint, error) {
	code := NormalizeCode(rawCode)
	if !ValidCodeFormat(code) {
		return 0, ErrInvalidCodeFormat
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return 0, err
	}
	if user == nil {
		return 0, ErrNotFound
	}

	if user.ReferredBy != "" {
		if user.ReferredBy == code {
			existing, err := s.referralRepo.GetByRefereeID(userID)
			if err != nil {
				return 0, err
			}
			if existing != nil {
				return existing.ReferrerID, nil
			}
		}
		return 0, ErrAlreadyReferred
	}

	rc, err := s.codeRepo.GetByCode(code)
	if err != nil {
		return 0, err
	}
	if rc == nil {
		return 0, ErrCodeNotFound
	}
	if !rc.IsActive {
		return 0, ErrCodeInactive
	}
	if rc.UserID == userID {
		return 0, ErrSelfReferral
	}

	referrer, err := s.userRepo.GetByID(rc.UserID)
	if err != nil {
		return 0, err
	}
	if referrer == nil {
		return 0, ErrCodeNotFound
	}
	// A member cannot attach under their own descendant.
	if referrer.ReferralChain.Contains(userID) {
		return 0, ErrSelfReferral
	}

	err = s.attach(user, referrer, code, AttachInput{
		Source: constants.ReferralSourceCode,
	})
	if err != nil {
		return 0, err
	}
	return referrer.ID, nil
}

// Attach links a member under a referrer outside the code flow; the
// orphan resolver uses it for auto and admin assignments.
func (s *ReferralChainService) Attach(userID uint, referrerID uint, input AttachInput) error {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrNotFound
	}
	if user.ReferredBy != "" {
		return ErrAlreadyReferred
	}

	referrer, err := s.userRepo.GetByID(referrerID)
	if err != nil {
		return err
	}
	if referrer == nil {
		return ErrNotFound
	}
	if referrer.ID == userID || referrer.ReferralChain.Contains(userID) {
		return ErrSelfReferral
	}

	code := ""
	if referrer.ReferralCode != nil {
		code = *referrer.ReferralCode
	}
	if code == "" {
		// The user column may lag behind the code row; fall back to it.
		rc, err := s.codeRepo.GetByUserID(referrer.ID)
		if err != nil {
			return err
		}
		if rc != nil {
			code = rc.Code
		}
	}
	if code == "" {
		// Without a code the referred_by link would be empty and the
		// member would keep matching the orphan listing. The target
		// account must be issued a code before it can take referrals.
		return ErrCodeNotFound
	}
	return s.attach(user, referrer, code, input)
}

// attach performs the three-way write: the referee's referrer link and
// frozen chain, the relationship record, and the referrer's direct
// counter, all in one transaction.
func (s *ReferralChainService) attach(user, referrer *models.User, code string, input AttachInput) error {
	// Ancestors are copied, not referenced: the referee's chain stays
	// fixed even if the referrer is later reassigned.
	chain := referrer.ReferralChain.Clone()
	chain = append(chain, referrer.ID)

	return s.referralRepo.Transaction(func(tx *gorm.DB) error {
		userTx := s.userRepo.WithTx(tx)
		referralTx := s.referralRepo.WithTx(tx)

		rows, err := userTx.SetReferrer(user.ID, code, chain, input.ReferralStatus)
		if err != nil {
			return err
		}
		if rows == 0 {
			// Lost a race with a concurrent attachment.
			return ErrAlreadyReferred
		}

		record := &models.Referral{
			ReferrerID:         referrer.ID,
			RefereeID:          user.ID,
			Code:               code,
			Status:             constants.ReferralRecordStatusPending,
			Source:             input.Source,
			AssignmentReason:   input.AssignmentReason,
			AssignmentDistance: input.AssignmentDistance,
			CreatedAt:          time.Now(),
		}
		if err := referralTx.Create(record); err != nil {
			if isUniqueViolation(err) {
				return ErrAlreadyReferred
			}
			return err
		}

		return userTx.IncrementDirectReferrals(referrer.ID, 1)
	})
}
