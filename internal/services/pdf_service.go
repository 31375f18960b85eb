package services

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf/v2"

	"ledgerly-backend/internal/billing"
	"ledgerly-backend/internal/metrics"
	"ledgerly-backend/internal/models"
	"ledgerly-backend/internal/timeutil"
)

type PDFService struct{}

func NewPDFService() *PDFService {
	return &PDFService{}
}

// RenderInvoice renders an invoice as an A4 PDF. Free plan renders
// carry a branded watermark; draft and cancelled invoices carry a
// status watermark on any plan.
func (s *PDFService) RenderInvoice(inv *models.Invoice, settings *models.InvoiceSettings, plan string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	switch {
	case inv.Status == models.InvoiceStatusDraft:
		drawWatermark(pdf, "DRAFT")
	case inv.Status == models.InvoiceStatusCancelled:
		drawWatermark(pdf, "CANCELLED")
	case plan == models.PlanFree:
		drawWatermark(pdf, "Ledgerly Free Plan")
	}

	// Header
	pdf.SetFont("Arial", "B", 20)
	pdf.CellFormat(180, 12, "INVOICE", "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(180, 6, inv.Number, "", 1, "L", false, 0, "")
	pdf.Ln(4)

	// Sender block from settings
	if settings.CompanyName != "" {
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(90, 6, settings.CompanyName, "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		for _, line := range strings.Split(settings.CompanyAddress, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				pdf.CellFormat(90, 5, line, "", 1, "L", false, 0, "")
			}
		}
		if settings.CompanyEmail != "" {
			pdf.CellFormat(90, 5, settings.CompanyEmail, "", 1, "L", false, 0, "")
		}
		if settings.CompanyPhone != "" {
			pdf.CellFormat(90, 5, settings.CompanyPhone, "", 1, "L", false, 0, "")
		}
		pdf.Ln(4)
	}

	// Recipient and dates
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(90, 6, "Billed to", "", 0, "L", false, 0, "")
	pdf.CellFormat(90, 6, "Details", "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(90, 5, inv.ClientName, "", 0, "L", false, 0, "")
	pdf.CellFormat(90, 5, fmt.Sprintf("Issued: %s", inv.IssueDate.Format(timeutil.DisplayLayout)), "", 1, "L", false, 0, "")
	due := ""
	if inv.DueDate != nil {
		due = fmt.Sprintf("Due: %s", inv.DueDate.Format(timeutil.DisplayLayout))
	}
	pdf.CellFormat(90, 5, inv.ClientEmail, "", 0, "L", false, 0, "")
	pdf.CellFormat(90, 5, due, "", 1, "L", false, 0, "")
	pdf.CellFormat(90, 5, "", "", 0, "L", false, 0, "")
	pdf.CellFormat(90, 5, fmt.Sprintf("Status: %s", strings.ToUpper(string(inv.Status))), "", 1, "L", false, 0, "")
	pdf.Ln(6)

	// Line item table
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(85, 7, "Description", "1", 0, "L", true, 0, "")
	pdf.CellFormat(25, 7, "Qty", "1", 0, "C", true, 0, "")
	pdf.CellFormat(35, 7, "Unit Price", "1", 0, "R", true, 0, "")
	pdf.CellFormat(35, 7, "Amount", "1", 1, "R", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	for _, item := range inv.LineItems {
		desc := item.Description
		if len(desc) > 45 {
			desc = desc[:42] + "..."
		}
		pdf.CellFormat(85, 6, desc, "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 6, trimQuantity(item.Quantity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 6, billing.FormatCents(item.UnitPriceCents), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 6, billing.FormatCents(item.AmountCents), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(2)

	// Totals
	pdf.CellFormat(110, 6, "", "", 0, "L", false, 0, "")
	pdf.CellFormat(35, 6, "Subtotal", "", 0, "R", false, 0, "")
	pdf.CellFormat(35, 6, billing.FormatCents(inv.SubtotalCents)+" "+inv.Currency, "", 1, "R", false, 0, "")
	pdf.CellFormat(110, 6, "", "", 0, "L", false, 0, "")
	pdf.CellFormat(35, 6, "Tax", "", 0, "R", false, 0, "")
	pdf.CellFormat(35, 6, billing.FormatCents(inv.TaxCents)+" "+inv.Currency, "", 1, "R", false, 0, "")
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(110, 8, "", "", 0, "L", false, 0, "")
	pdf.CellFormat(35, 8, "Total", "T", 0, "R", false, 0, "")
	pdf.CellFormat(35, 8, billing.FormatCents(inv.TotalCents)+" "+inv.Currency, "T", 1, "R", false, 0, "")

	// Notes and footer
	if inv.Notes != "" {
		pdf.Ln(6)
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(180, 6, "Notes", "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.MultiCell(180, 5, inv.Notes, "", "L", false)
	}
	if settings.FooterText != "" {
		pdf.SetY(-30)
		pdf.SetFont("Arial", "I", 9)
		pdf.SetTextColor(120, 120, 120)
		pdf.MultiCell(180, 5, settings.FooterText, "", "C", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}

	metrics.PDFRendersTotal.Inc()
	return buf.Bytes(), nil
}

// drawWatermark paints a large rotated label across the page
func drawWatermark(pdf *gofpdf.Fpdf, text string) {
	size := 60.0
	if len(text) > 10 {
		size = 32
	}
	pdf.SetFont("Arial", "B", size)
	pdf.SetTextColor(225, 225, 225)
	pdf.TransformBegin()
	pdf.TransformRotate(45, 105, 148)
	pdf.Text(40, 160, text)
	pdf.TransformEnd()
	pdf.SetTextColor(0, 0, 0)
}

func trimQuantity(q float64) string {
	s := fmt.Sprintf("%.2f", q)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}
