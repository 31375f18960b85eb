package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"ledgerly-backend/internal/middleware"
	"ledgerly-backend/internal/models"
	"ledgerly-backend/internal/services"
	"ledgerly-backend/pkg/utils"
)

type TOTPHandler struct {
	Service     *services.TOTPService
	UserService *services.UserService
	Audit       *services.AuditService
}

func NewTOTPHandler(s *services.TOTPService, userService *services.UserService, audit *services.AuditService) *TOTPHandler {
	return &TOTPHandler{Service: s, UserService: userService, Audit: audit}
}

// Setup starts 2FA enrollment and returns the secret plus QR code
func (h *TOTPHandler) Setup(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	user, err := h.UserService.Get(r.Context(), userID)
	if err != nil {
		utils.Error(w, http.StatusNotFound, "User not found")
		return
	}

	resp, err := h.Service.GenerateSetup(r.Context(), user)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "Failed to start 2FA setup")
		return
	}
	utils.JSON(w, http.StatusOK, resp)
}

// Verify confirms the first code and enables 2FA
func (h *TOTPHandler) Verify(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req models.TOTPVerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.Service.VerifyAndEnable(r.Context(), userID, req.Code); err != nil {
		if errors.Is(err, services.ErrInvalidTOTPCode) {
			utils.Error(w, http.StatusBadRequest, "Invalid code")
			return
		}
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	h.Audit.Record(userID, models.AuditActionTOTPEnabled, getIPAddress(r), r.UserAgent(), "")
	utils.JSON(w, http.StatusOK, map[string]string{"message": "2FA enabled"})
}

// Disable turns 2FA off after verifying a current code
func (h *TOTPHandler) Disable(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req models.TOTPVerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.Service.Disable(r.Context(), userID, req.Code); err != nil {
		if errors.Is(err, services.ErrInvalidTOTPCode) {
			utils.Error(w, http.StatusBadRequest, "Invalid code")
			return
		}
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	h.Audit.Record(userID, models.AuditActionTOTPDisabled, getIPAddress(r), r.UserAgent(), "")
	utils.JSON(w, http.StatusOK, map[string]string{"message": "2FA disabled"})
}
