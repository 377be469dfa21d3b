package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/talowa-app/internal/cache"
	"github.com/talowa-app/internal/config"
	"github.com/talowa-app/internal/constants"
	"github.com/talowa-app/internal/logger"
	"github.com/talowa-app/internal/models"
	"github.com/talowa-app/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// phonePattern accepts E.164-style numbers with an optional plus.
var phonePattern = regexp.MustCompile(`^\+?[1-9][0-9]{7,14}$`)

// UserAuthService registers and authenticates members.
type UserAuthService struct {
	cfg          *config.Config
	userRepo     repository.UserRepository
	chainService *ReferralChainService
}

// NewUserAuthService creates a member auth service.
func NewUserAuthService(
	cfg *config.Config,
	userRepo repository.UserRepository,
	chainService *ReferralChainService,
) *UserAuthService {
	return &UserAuthService{
		cfg:          cfg,
		userRepo:     userRepo,
		chainService: chainService,
	}
}

// RegisterInput is the member sign-up payload.
type RegisterInput struct {
	Phone        string
	Password     string
	FullName     string
	ReferralCode string
	Latitude     *float64
	Longitude    *float64
	IsUrban      bool
}

// Register creates a member account. When a referral code is supplied
// the new member is attached under its owner in the same call; without
// one the member stays an orphan for the resolver to pick up.
func (s *UserAuthService) Register(input RegisterInput) (*models.User, error) {
	phone := strings.TrimSpace(input.Phone)
	if !phonePattern.MatchString(phone) {
		return nil, ErrInvalidPayload
	}
	if err := validatePassword(s.cfg.Security.PasswordPolicy, input.Password); err != nil {
		return nil, err
	}

	existing, err := s.userRepo.GetByPhone(phone)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrPhoneExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Phone:          phone,
		PasswordHash:   string(hash),
		FullName:       strings.TrimSpace(input.FullName),
		Status:         constants.UserStatusActive,
		ReferralStatus: constants.ReferralStatusPendingPayment,
		CurrentRole:    constants.RoleMember,
		RoleLevel:      constants.RoleLevelMember,
		Latitude:       input.Latitude,
		Longitude:      input.Longitude,
		IsUrban:        input.IsUrban,
	}
	if err := s.userRepo.Create(user); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrPhoneExists
		}
		return nil, err
	}

	if code := NormalizeCode(input.ReferralCode); code != "" {
		if _, err := s.chainService.ApplyCode(user.ID, code); err != nil {
			// Account creation stands; the member can re-apply the code
			// or fall to the orphan sweep.
			logger.Warnw("register_apply_code_failed", "user_id", user.ID, "error", err)
		}
	}

	logger.Infow("member_registered", "user_id", user.ID, "has_code", input.ReferralCode != "")
	return user, nil
}

// UserJWTClaims are the member token claims.
type UserJWTClaims struct {
	UserID       uint   `json:"user_id"`
	Phone        string `json:"phone"`
	TokenVersion uint64 `json:"token_version"`
	jwt.RegisteredClaims
}

// GenerateJWT signs a member token.
func (s *UserAuthService) GenerateJWT(user *models.User) (string, time.Time, error) {
	expiresAt := time.Now().Add(time.Duration(s.cfg.UserJWT.ExpireHours) * time.Hour)

	claims := UserJWTClaims{
		UserID:       user.ID,
		Phone:        user.Phone,
		TokenVersion: user.TokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.cfg.UserJWT.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseJWT validates a member token.
func (s *UserAuthService) ParseJWT(tokenString string) (*UserJWTClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(tokenString, &UserJWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.UserJWT.SecretKey), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*UserJWTClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}

// Login authenticates a member and issues a token.
func (s *UserAuthService) Login(phone, password string) (*models.User, string, time.Time, error) {
	user, err := s.userRepo.GetByPhone(phone)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if user == nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	if user.Status != constants.UserStatusActive {
		return nil, "", time.Time{}, ErrUserDisabled
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}

	token, expiresAt, err := s.GenerateJWT(user)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	_ = cache.SetUserAuthState(context.Background(), cache.BuildUserAuthState(user))

	return user, token, expiresAt, nil
}

// GetUser fetches a member by ID.
func (s *UserAuthService) GetUser(userID uint) (*models.User, error) {
	return s.userRepo.GetByID(userID)
}
