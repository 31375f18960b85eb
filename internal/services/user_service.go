package services

import (
	"context"
	"errors"
	"strings"

	"ledgerly-backend/internal/auth"
	"ledgerly-backend/internal/cache"
	"ledgerly-backend/internal/models"
	"ledgerly-backend/internal/repositories"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrTOTPRequired       = errors.New("totp code required")
	ErrInvalidTOTPCode    = errors.New("invalid totp code")
)

type UserService struct {
	Repo       *repositories.UserRepository
	SubRepo    *repositories.SubscriptionRepository
	JWTManager *auth.JWTManager
	TOTP       *TOTPService
	Audit      *AuditService
}

func NewUserService(repo *repositories.UserRepository, subRepo *repositories.SubscriptionRepository,
	jwtManager *auth.JWTManager, totpService *TOTPService, audit *AuditService) *UserService {
	return &UserService{
		Repo:       repo,
		SubRepo:    subRepo,
		JWTManager: jwtManager,
		TOTP:       totpService,
		Audit:      audit,
	}
}

// Signup registers a new user on the free plan and returns a session token
func (s *UserService) Signup(ctx context.Context, req *models.SignupRequest, ip, userAgent string) (*models.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, ErrInvalidCredentials
	}

	if existing, err := s.Repo.GetByEmail(ctx, email); err == nil && existing.ID != 0 {
		return nil, ErrEmailTaken
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: hash,
		Plan:         models.PlanFree,
	}
	if err := s.Repo.Create(ctx, user); err != nil {
		return nil, err
	}

	_ = s.SubRepo.Upsert(ctx, &models.Subscription{
		UserID: user.ID,
		Plan:   models.PlanFree,
		Status: models.SubscriptionStatusActive,
	})

	s.Audit.Record(user.ID, models.AuditActionSignup, ip, userAgent, "")

	token, err := s.JWTManager.GenerateToken(user)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{Token: token, User: user}, nil
}

// Login authenticates a user. When 2FA is enabled and no code was
// supplied, ErrTOTPRequired is returned along with a temp token the
// client exchanges in the second step.
func (s *UserService) Login(ctx context.Context, req *models.LoginRequest, ip, userAgent string) (*models.AuthResponse, string, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", ErrInvalidCredentials
	}

	// Bcrypt is deliberately slow, so valid credentials are cached briefly
	if cachedID, ok := cache.GetCachedAuth(ctx, email, req.Password); !ok || int(cachedID) != user.ID {
		if !auth.VerifyPassword(user.PasswordHash, req.Password) {
			return nil, "", ErrInvalidCredentials
		}
		cache.CacheAuth(ctx, email, req.Password, int64(user.ID))
	}

	if user.TOTPEnabled {
		if req.TOTPCode == "" {
			tempToken, err := s.JWTManager.GenerateTempToken(user)
			if err != nil {
				return nil, "", err
			}
			return nil, tempToken, ErrTOTPRequired
		}
		if !s.TOTP.Verify(user.TOTPSecret, req.TOTPCode) {
			return nil, "", ErrInvalidTOTPCode
		}
	}

	s.Audit.Record(user.ID, models.AuditActionLogin, ip, userAgent, "")

	token, err := s.JWTManager.GenerateToken(user)
	if err != nil {
		return nil, "", err
	}
	return &models.AuthResponse{Token: token, User: user}, "", nil
}

// LoginWithTempToken completes a 2FA login: the temp token from the
// first step is exchanged for a full session token once the one-time
// code verifies.
func (s *UserService) LoginWithTempToken(ctx context.Context, tempToken, code, ip, userAgent string) (*models.AuthResponse, error) {
	claims, err := s.JWTManager.ValidateTempToken(tempToken)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	user, err := s.Repo.Get(ctx, claims.UserID)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.TOTPEnabled || !s.TOTP.Verify(user.TOTPSecret, code) {
		return nil, ErrInvalidTOTPCode
	}

	s.Audit.Record(user.ID, models.AuditActionLogin, ip, userAgent, "2fa")

	token, err := s.JWTManager.GenerateToken(user)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{Token: token, User: user}, nil
}

func (s *UserService) Get(ctx context.Context, id int) (*models.User, error) {
	return s.Repo.Get(ctx, id)
}

// ChangePassword verifies the current password before setting a new one
func (s *UserService) ChangePassword(ctx context.Context, userID int, req *models.ChangePasswordRequest, ip, userAgent string) error {
	user, err := s.Repo.Get(ctx, userID)
	if err != nil {
		return err
	}

	if !auth.VerifyPassword(user.PasswordHash, req.CurrentPassword) {
		return ErrInvalidCredentials
	}
	if len(req.NewPassword) < 8 {
		return errors.New("password must be at least 8 characters")
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	if err := s.Repo.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}

	cache.InvalidateAuth(ctx, user.Email, req.CurrentPassword)
	s.Audit.Record(userID, models.AuditActionPasswordChange, ip, userAgent, "")
	return nil
}
