package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerly-backend/internal/billing"
	"ledgerly-backend/internal/models"
)

func pdfInvoice(status models.InvoiceStatus) *models.Invoice {
	due := time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC)
	return &models.Invoice{
		ID:          1,
		UserID:      1,
		Number:      "INV-0001",
		ClientName:  "Acme Corp",
		ClientEmail: "billing@acme.test",
		IssueDate:   time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		DueDate:     &due,
		LineItems: []billing.LineItem{
			billing.NewLineItem("Consulting", 10, 150),
			billing.NewLineItem("Hosting", 1, "49.99"),
		},
		SubtotalCents: 154999,
		TaxCents:      15500,
		TotalCents:    170499,
		Currency:      "USD",
		Status:        status,
		Notes:         "Payable within 14 days.",
	}
}

func pdfSettings() *models.InvoiceSettings {
	return &models.InvoiceSettings{
		UserID:          1,
		InvoicePrefix:   "INV",
		DefaultCurrency: "USD",
		CompanyName:     "Ledgerly Test Co",
		CompanyAddress:  "1 Main St\nSpringfield",
		CompanyEmail:    "hello@ledgerly.test",
		FooterText:      "Thank you for your business",
	}
}

func TestRenderInvoiceProducesPDF(t *testing.T) {
	svc := NewPDFService()

	data, err := svc.RenderInvoice(pdfInvoice(models.InvoiceStatusSent), pdfSettings(), models.PlanPro)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	assert.Equal(t, "%PDF", string(data[:4]))
}

func TestRenderInvoiceWatermarks(t *testing.T) {
	svc := NewPDFService()

	sentPro, err := svc.RenderInvoice(pdfInvoice(models.InvoiceStatusSent), pdfSettings(), models.PlanPro)
	require.NoError(t, err)
	draft, err := svc.RenderInvoice(pdfInvoice(models.InvoiceStatusDraft), pdfSettings(), models.PlanPro)
	require.NoError(t, err)
	sentFree, err := svc.RenderInvoice(pdfInvoice(models.InvoiceStatusSent), pdfSettings(), models.PlanFree)
	require.NoError(t, err)

	// Watermarks add drawing operations, so watermarked renders are
	// never byte-identical to the clean pro render
	assert.NotEqual(t, sentPro, draft)
	assert.NotEqual(t, sentPro, sentFree)
}

func TestRenderInvoiceMinimalSettings(t *testing.T) {
	svc := NewPDFService()

	inv := pdfInvoice(models.InvoiceStatusPaid)
	inv.DueDate = nil
	inv.Notes = ""

	data, err := svc.RenderInvoice(inv, &models.InvoiceSettings{UserID: 1, InvoicePrefix: "INV"}, models.PlanFree)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(data[:4]))
}

func TestTrimQuantity(t *testing.T) {
	assert.Equal(t, "10", trimQuantity(10))
	assert.Equal(t, "2.5", trimQuantity(2.5))
	assert.Equal(t, "0.25", trimQuantity(0.25))
}
