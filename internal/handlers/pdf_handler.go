package handlers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"ledgerly-backend/internal/middleware"
	"ledgerly-backend/internal/services"
	"ledgerly-backend/pkg/utils"
)

type PDFHandler struct {
	Invoices *services.InvoiceService
	Settings *services.SettingsService
	PDF      *services.PDFService
	Archive  *services.ArchiveService
}

func NewPDFHandler(invoices *services.InvoiceService, settings *services.SettingsService,
	pdf *services.PDFService, archive *services.ArchiveService) *PDFHandler {
	return &PDFHandler{
		Invoices: invoices,
		Settings: settings,
		PDF:      pdf,
		Archive:  archive,
	}
}

// Render handles GET /api/pdf/{id}, streaming the invoice PDF. The
// rendered document is archived in the background.
func (h *PDFHandler) Render(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid invoice id")
		return
	}

	inv, err := h.Invoices.Get(r.Context(), userID, id)
	if err != nil {
		utils.Error(w, http.StatusNotFound, "Invoice not found")
		return
	}

	settings, err := h.Settings.Get(r.Context(), userID)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "Failed to load settings")
		return
	}

	plan, _ := middleware.GetPlanFromContext(r.Context())

	pdfBytes, err := h.PDF.RenderInvoice(inv, settings, plan)
	if err != nil {
		log.Printf("[PDF] render failed for %s: %v", inv.Number, err)
		utils.Error(w, http.StatusInternalServerError, "PDF generation failed")
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := h.Archive.StoreInvoicePDF(ctx, inv, pdfBytes); err != nil {
			log.Printf("[PDF] %v", err)
		}
	}()

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`inline; filename="%s.pdf"`, inv.Number))
	w.Header().Set("Content-Length", strconv.Itoa(len(pdfBytes)))
	w.Write(pdfBytes)
}
