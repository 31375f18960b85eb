package models

import "time"

type User struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never expose in JSON
	TOTPSecret   string    `json:"-"`
	TOTPEnabled  bool      `json:"totp_enabled"`
	Plan         string    `json:"plan"` // kept in sync with the subscription row
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// SignupRequest represents the request body for signup
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	TOTPCode string `json:"totp_code,omitempty"`
}

// AuthResponse represents the response after successful authentication
type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// ChangePasswordRequest represents the request body for a password change
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// TOTPSetupResponse carries the provisioning data for enabling 2FA
type TOTPSetupResponse struct {
	Secret    string `json:"secret"`
	QRCodePNG string `json:"qr_code_png"` // base64-encoded PNG
}

// TOTPVerifyRequest carries a one-time code for 2FA verify/disable
type TOTPVerifyRequest struct {
	Code string `json:"code"`
}

// TOTPLoginRequest is the second login step for 2FA accounts: the temp
// token from the first step plus a fresh one-time code
type TOTPLoginRequest struct {
	TempToken string `json:"temp_token"`
	Code      string `json:"code"`
}
