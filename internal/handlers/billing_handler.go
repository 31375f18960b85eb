package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"ledgerly-backend/internal/middleware"
	"ledgerly-backend/internal/models"
	"ledgerly-backend/internal/services"
	"ledgerly-backend/pkg/utils"
)

type BillingHandler struct {
	Service *services.RazorpayService
}

func NewBillingHandler(s *services.RazorpayService) *BillingHandler {
	return &BillingHandler{Service: s}
}

// Checkout handles POST /api/billing/checkout. The checkout only needs
// the caller's id and email, both already in the token claims.
func (h *BillingHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	email, _ := middleware.GetEmailFromContext(r.Context())

	resp, err := h.Service.CreateCheckout(r.Context(), &models.User{ID: userID, Email: email})
	if err != nil {
		if errors.Is(err, services.ErrBillingNotConfigured) {
			utils.Error(w, http.StatusServiceUnavailable, "Billing is not configured")
			return
		}
		if errors.Is(err, services.ErrAlreadySubscribed) {
			utils.Error(w, http.StatusConflict, "Subscription is already active")
			return
		}
		log.Printf("[Billing] checkout failed for user %d: %v", userID, err)
		utils.Error(w, http.StatusBadGateway, "Failed to start checkout")
		return
	}
	utils.JSON(w, http.StatusOK, resp)
}

// Portal handles POST /api/billing/portal
func (h *BillingHandler) Portal(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	resp, err := h.Service.GetPortal(r.Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrBillingNotConfigured) {
			utils.Error(w, http.StatusServiceUnavailable, "Billing is not configured")
			return
		}
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.JSON(w, http.StatusOK, resp)
}

// Webhook handles POST /api/billing/webhook. The signature is checked
// against the raw body before any parsing.
func (h *BillingHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Failed to read body")
		return
	}

	signature := r.Header.Get("X-Razorpay-Signature")
	if !h.Service.VerifyWebhookSignature(body, signature) {
		utils.Error(w, http.StatusUnauthorized, "Invalid signature")
		return
	}

	var event struct {
		Event   string                 `json:"event"`
		Payload map[string]interface{} `json:"payload"`
	}
	if err := json.Unmarshal(body, &event); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid payload")
		return
	}

	if err := h.Service.ProcessWebhook(r.Context(), event.Event, event.Payload); err != nil {
		log.Printf("[Billing] webhook %s failed: %v", event.Event, err)
		utils.Error(w, http.StatusInternalServerError, "Webhook processing failed")
		return
	}

	utils.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
