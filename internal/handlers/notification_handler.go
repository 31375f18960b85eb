package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"ledgerly-backend/internal/middleware"
	"ledgerly-backend/internal/services"
	"ledgerly-backend/pkg/utils"
)

type NotificationHandler struct {
	Service *services.NotificationService
}

func NewNotificationHandler(s *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{Service: s}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	unreadOnly := r.URL.Query().Get("unread") == "true"
	notifications, err := h.Service.List(r.Context(), userID, unreadOnly)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "Failed to list notifications")
		return
	}
	utils.JSON(w, http.StatusOK, notifications)
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid notification id")
		return
	}

	updated, err := h.Service.MarkRead(r.Context(), userID, id)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "Failed to update notification")
		return
	}
	if !updated {
		utils.Error(w, http.StatusNotFound, "Notification not found")
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := h.Service.MarkAllRead(r.Context(), userID); err != nil {
		utils.Error(w, http.StatusInternalServerError, "Failed to update notifications")
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
