package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image/png"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"

	"ledgerly-backend/internal/models"
	"ledgerly-backend/internal/repositories"
)

const totpIssuer = "Ledgerly"

var ErrNoTOTPSecret = errors.New("2fa setup has not been started")

type TOTPService struct {
	userRepo *repositories.UserRepository
}

func NewTOTPService(userRepo *repositories.UserRepository) *TOTPService {
	return &TOTPService{userRepo: userRepo}
}

// GenerateSetup creates a new TOTP secret and QR code for a user. The
// secret stays disabled until the first code verifies.
func (s *TOTPService) GenerateSetup(ctx context.Context, user *models.User) (*models.TOTPSetupResponse, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: user.Email,
		Period:      30,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.SetTOTPSecret(ctx, user.ID, key.Secret()); err != nil {
		return nil, err
	}

	qrImage, err := key.Image(200, 200)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, qrImage); err != nil {
		return nil, err
	}

	return &models.TOTPSetupResponse{
		Secret:    key.Secret(),
		QRCodePNG: "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()),
	}, nil
}

// VerifyAndEnable verifies a code against the pending secret and turns
// 2FA on
func (s *TOTPService) VerifyAndEnable(ctx context.Context, userID int, code string) error {
	user, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		return err
	}
	if user.TOTPSecret == "" {
		return ErrNoTOTPSecret
	}
	if !s.Verify(user.TOTPSecret, code) {
		return ErrInvalidTOTPCode
	}
	return s.userRepo.SetTOTPEnabled(ctx, userID, true)
}

// Disable turns 2FA off after verifying a current code
func (s *TOTPService) Disable(ctx context.Context, userID int, code string) error {
	user, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		return err
	}
	if !user.TOTPEnabled {
		return ErrNoTOTPSecret
	}
	if !s.Verify(user.TOTPSecret, code) {
		return ErrInvalidTOTPCode
	}
	return s.userRepo.SetTOTPEnabled(ctx, userID, false)
}

// Verify checks a 6-digit code against a secret
func (s *TOTPService) Verify(secret, code string) bool {
	return totp.Validate(code, secret)
}
