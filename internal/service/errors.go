package service

import "errors"

// Sentinel errors returned by the service layer. The HTTP layer maps
// them onto the error envelope.
var (
	ErrNotFound                = errors.New("resource not found")
	ErrInvalidCodeFormat       = errors.New("referral code format is invalid")
	ErrCodeNotFound            = errors.New("referral code not found")
	ErrCodeInactive            = errors.New("referral code is inactive")
	ErrSelfReferral            = errors.New("cannot apply your own referral code")
	ErrAlreadyReferred         = errors.New("a referrer is already recorded")
	ErrCodeGenerationExhausted = errors.New("could not reserve a unique referral code")
	ErrPhoneExists             = errors.New("phone number already registered")
	ErrWeakPassword            = errors.New("password does not meet the policy")
	ErrInvalidCredentials      = errors.New("invalid credentials")
	ErrUserDisabled            = errors.New("account is disabled")
	ErrCaptchaInvalid          = errors.New("captcha verification failed")
	ErrInvalidSignature        = errors.New("payload signature mismatch")
	ErrInvalidPayload          = errors.New("payload is malformed")
	ErrNotOrphan               = errors.New("member already has a referrer")
)
