package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"ledgerly-backend/internal/middleware"
	"ledgerly-backend/internal/models"
	"ledgerly-backend/internal/services"
	"ledgerly-backend/pkg/utils"
)

type AuthHandler struct {
	Service *services.UserService
}

func NewAuthHandler(s *services.UserService) *AuthHandler {
	return &AuthHandler{Service: s}
}

// Signup handles user registration
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	authResp, err := h.Service.Signup(r.Context(), &req, getIPAddress(r), r.UserAgent())
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			utils.Error(w, http.StatusConflict, err.Error())
			return
		}
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.JSON(w, http.StatusCreated, authResp)
}

// Login handles user authentication, including the 2FA second step
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	authResp, tempToken, err := h.Service.Login(r.Context(), &req, getIPAddress(r), r.UserAgent())
	if err != nil {
		if errors.Is(err, services.ErrTOTPRequired) {
			utils.JSON(w, http.StatusOK, map[string]interface{}{
				"totp_required": true,
				"temp_token":    tempToken,
			})
			return
		}
		utils.Error(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	utils.JSON(w, http.StatusOK, authResp)
}

// LoginTOTP completes a 2FA login by exchanging the temp token plus a
// one-time code for a session token
func (h *AuthHandler) LoginTOTP(w http.ResponseWriter, r *http.Request) {
	var req models.TOTPLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.TempToken == "" || req.Code == "" {
		utils.Error(w, http.StatusBadRequest, "Temp token and code are required")
		return
	}

	authResp, err := h.Service.LoginWithTempToken(r.Context(), req.TempToken, req.Code, getIPAddress(r), r.UserAgent())
	if err != nil {
		utils.Error(w, http.StatusUnauthorized, "Invalid or expired code")
		return
	}

	utils.JSON(w, http.StatusOK, authResp)
}

// Me returns the authenticated user's profile
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	user, err := h.Service.Get(r.Context(), userID)
	if err != nil {
		utils.Error(w, http.StatusNotFound, "User not found")
		return
	}
	utils.JSON(w, http.StatusOK, user)
}

// ChangePassword handles POST /api/auth/change-password
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req models.ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.Service.ChangePassword(r.Context(), userID, &req, getIPAddress(r), r.UserAgent()); err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			utils.Error(w, http.StatusUnauthorized, "Current password is incorrect")
			return
		}
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.JSON(w, http.StatusOK, map[string]string{"message": "Password updated"})
}

// getIPAddress extracts the client IP, preferring proxy headers
func getIPAddress(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if idx := strings.Index(forwarded, ","); idx != -1 {
			return strings.TrimSpace(forwarded[:idx])
		}
		return strings.TrimSpace(forwarded)
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}
