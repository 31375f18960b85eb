package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"ledgerly-backend/internal/middleware"
	"ledgerly-backend/internal/models"
	"ledgerly-backend/internal/services"
	"ledgerly-backend/pkg/utils"
)

type SettingsHandler struct {
	Service *services.SettingsService
	Audit   *services.AuditService
}

func NewSettingsHandler(s *services.SettingsService, audit *services.AuditService) *SettingsHandler {
	return &SettingsHandler{Service: s, Audit: audit}
}

// Get handles GET /api/settings/invoice
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	settings, err := h.Service.Get(r.Context(), userID)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "Failed to load settings")
		return
	}
	utils.JSON(w, http.StatusOK, settings)
}

// Update handles PUT /api/settings/invoice. The sequence counter is
// not editable through this endpoint.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req models.UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	settings, err := h.Service.Update(r.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidTaxRate) {
			utils.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		utils.Error(w, http.StatusInternalServerError, "Failed to update settings")
		return
	}

	h.Audit.Record(userID, models.AuditActionSettingsUpdated, getIPAddress(r), r.UserAgent(), "")
	utils.JSON(w, http.StatusOK, settings)
}

// SecurityAudit handles GET /api/settings/security-audit. With
// export=true the trail is returned as a CSV download.
func (h *SettingsHandler) SecurityAudit(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	q := r.URL.Query()
	if q.Get("export") == "true" {
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition",
			fmt.Sprintf(`attachment; filename="security-audit-%d.csv"`, userID))
		if err := h.Audit.ExportCSV(r.Context(), userID, w); err != nil {
			utils.Error(w, http.StatusInternalServerError, "Export failed")
		}
		return
	}

	limit := 100
	if raw := q.Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}

	entries, err := h.Audit.List(r.Context(), userID, limit)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "Failed to load audit log")
		return
	}
	utils.JSON(w, http.StatusOK, entries)
}
