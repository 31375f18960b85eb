package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"ledgerly-backend/internal/middleware"
	"ledgerly-backend/internal/models"
	"ledgerly-backend/internal/repositories"
	"ledgerly-backend/internal/services"
	"ledgerly-backend/pkg/utils"
)

// QuotaErrorCode is the machine-readable code attached to free plan
// limit rejections
const QuotaErrorCode = "FREE_PLAN_LIMIT_REACHED"

type InvoiceHandler struct {
	Service *services.InvoiceService
}

func NewInvoiceHandler(s *services.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{Service: s}
}

func requestIdentity(r *http.Request) (userID int, plan string, ok bool) {
	userID, ok = middleware.GetUserIDFromContext(r.Context())
	if !ok {
		return 0, "", false
	}
	plan, _ = middleware.GetPlanFromContext(r.Context())
	if plan == "" {
		plan = models.PlanFree
	}
	return userID, plan, true
}

func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, plan, ok := requestIdentity(r)
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req models.CreateInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	inv, err := h.Service.Create(r.Context(), userID, plan, &req)
	if err != nil {
		if errors.Is(err, repositories.ErrQuotaExceeded) {
			utils.ErrorWithCode(w, http.StatusForbidden,
				"Monthly invoice limit reached. Upgrade to pro for unlimited invoices.", QuotaErrorCode)
			return
		}
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.JSON(w, http.StatusCreated, inv)
}

func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := requestIdentity(r)
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	q := r.URL.Query()
	resp, err := h.Service.List(r.Context(), userID, q.Get("status"), q.Get("search"))
	if err != nil {
		if errors.Is(err, services.ErrInvalidStatus) {
			utils.Error(w, http.StatusBadRequest, "Unknown status filter")
			return
		}
		utils.Error(w, http.StatusInternalServerError, "Failed to list invoices")
		return
	}
	utils.JSON(w, http.StatusOK, resp)
}

func (h *InvoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := requestIdentity(r)
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid invoice id")
		return
	}

	inv, err := h.Service.Get(r.Context(), userID, id)
	if err != nil {
		utils.Error(w, http.StatusNotFound, "Invoice not found")
		return
	}
	utils.JSON(w, http.StatusOK, inv)
}

func (h *InvoiceHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := requestIdentity(r)
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid invoice id")
		return
	}

	var req models.UpdateInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	inv, err := h.Service.Update(r.Context(), userID, id, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotEditable):
			utils.Error(w, http.StatusConflict, err.Error())
		case errors.Is(err, services.ErrNoLineItems):
			utils.Error(w, http.StatusBadRequest, err.Error())
		default:
			utils.Error(w, http.StatusNotFound, "Invoice not found")
		}
		return
	}
	utils.JSON(w, http.StatusOK, inv)
}

func (h *InvoiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := requestIdentity(r)
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid invoice id")
		return
	}

	deleted, err := h.Service.Delete(r.Context(), userID, id, getIPAddress(r), r.UserAgent())
	if err != nil || !deleted {
		utils.Error(w, http.StatusNotFound, "Invoice not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Recalculate recomputes an invoice's totals from its line items
func (h *InvoiceHandler) Recalculate(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := requestIdentity(r)
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid invoice id")
		return
	}

	inv, err := h.Service.Recalculate(r.Context(), userID, id)
	if err != nil {
		utils.Error(w, http.StatusNotFound, "Invoice not found")
		return
	}
	utils.JSON(w, http.StatusOK, inv)
}

// Duplicate copies an invoice into a new draft with the next number
func (h *InvoiceHandler) Duplicate(w http.ResponseWriter, r *http.Request) {
	userID, plan, ok := requestIdentity(r)
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid invoice id")
		return
	}

	inv, err := h.Service.Duplicate(r.Context(), userID, plan, id)
	if err != nil {
		if errors.Is(err, repositories.ErrQuotaExceeded) {
			utils.ErrorWithCode(w, http.StatusForbidden,
				"Monthly invoice limit reached. Upgrade to pro for unlimited invoices.", QuotaErrorCode)
			return
		}
		utils.Error(w, http.StatusNotFound, "Invoice not found")
		return
	}
	utils.JSON(w, http.StatusCreated, inv)
}

// Send marks a draft invoice as sent
func (h *InvoiceHandler) Send(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := requestIdentity(r)
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid invoice id")
		return
	}

	inv, err := h.Service.Send(r.Context(), userID, id, getIPAddress(r), r.UserAgent())
	if err != nil {
		if errors.Is(err, services.ErrInvalidTransition) {
			utils.Error(w, http.StatusConflict, "Only draft invoices can be sent")
			return
		}
		utils.Error(w, http.StatusNotFound, "Invoice not found")
		return
	}
	utils.JSON(w, http.StatusOK, inv)
}

// UpdateStatus moves an invoice through its lifecycle
func (h *InvoiceHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := requestIdentity(r)
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid invoice id")
		return
	}

	var req models.TransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	inv, err := h.Service.Transition(r.Context(), userID, id, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidStatus):
			utils.Error(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, services.ErrInvalidTransition):
			utils.Error(w, http.StatusConflict, err.Error())
		default:
			utils.Error(w, http.StatusNotFound, "Invoice not found")
		}
		return
	}
	utils.JSON(w, http.StatusOK, inv)
}

// Usage handles GET /api/usage
func (h *InvoiceHandler) Usage(w http.ResponseWriter, r *http.Request) {
	userID, plan, ok := requestIdentity(r)
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	usage, err := h.Service.CurrentUsage(r.Context(), userID, plan)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "Failed to load usage")
		return
	}
	utils.JSON(w, http.StatusOK, usage)
}
