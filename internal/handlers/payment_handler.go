package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"ledgerly-backend/internal/middleware"
	"ledgerly-backend/internal/services"
	"ledgerly-backend/pkg/utils"
)

type PaymentHandler struct {
	Service *services.PaymentService
}

func NewPaymentHandler(s *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{Service: s}
}

// List handles GET /api/payments with optional days, status and search
// filters
func (h *PaymentHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	q := r.URL.Query()
	sinceDays := 0
	if raw := q.Get("days"); raw != "" {
		d, err := strconv.Atoi(raw)
		if err != nil || d < 0 {
			utils.Error(w, http.StatusBadRequest, "Invalid days filter")
			return
		}
		sinceDays = d
	}

	resp, err := h.Service.List(r.Context(), userID, sinceDays, q.Get("status"), q.Get("search"))
	if err != nil {
		if errors.Is(err, services.ErrInvalidPaymentStatus) {
			utils.Error(w, http.StatusBadRequest, "Invalid status filter")
			return
		}
		utils.Error(w, http.StatusInternalServerError, "Failed to list payments")
		return
	}
	utils.JSON(w, http.StatusOK, resp)
}
