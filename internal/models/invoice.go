package models

import (
	"time"

	"ledgerly-backend/internal/billing"
)

// InvoiceStatus is the lifecycle state of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusSent      InvoiceStatus = "sent"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusOverdue   InvoiceStatus = "overdue"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// statusTransitions is the allowed transition table. Paid and
// cancelled are terminal.
var statusTransitions = map[InvoiceStatus][]InvoiceStatus{
	InvoiceStatusDraft:   {InvoiceStatusSent},
	InvoiceStatusSent:    {InvoiceStatusPaid, InvoiceStatusOverdue, InvoiceStatusCancelled},
	InvoiceStatusOverdue: {InvoiceStatusPaid, InvoiceStatusCancelled},
}

// Valid reports whether s is a known invoice status
func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPaid,
		InvoiceStatusOverdue, InvoiceStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether the transition s -> to is allowed
func (s InvoiceStatus) CanTransitionTo(to InvoiceStatus) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Invoice is a billing document owned by a user. Client name and email
// are denormalized copies taken at creation time. All amounts are cents.
type Invoice struct {
	ID            int                `json:"id"`
	UserID        int                `json:"user_id"`
	Number        string             `json:"number"`
	ClientName    string             `json:"client_name"`
	ClientEmail   string             `json:"client_email"`
	IssueDate     time.Time          `json:"issue_date"`
	DueDate       *time.Time         `json:"due_date,omitempty"`
	LineItems     []billing.LineItem `json:"line_items"`
	SubtotalCents int64              `json:"subtotal_cents"`
	TaxCents      int64              `json:"tax_cents"`
	TotalCents    int64              `json:"total_cents"`
	Currency      string             `json:"currency"`
	Status        InvoiceStatus      `json:"status"`
	Notes         string             `json:"notes"`
	SentAt        *time.Time         `json:"sent_at,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// LineItemRequest is a raw line item as submitted by a client. Quantity
// and unit price accept JSON numbers or numeric strings; malformed
// values coerce to the documented defaults instead of failing.
type LineItemRequest struct {
	Description string      `json:"description"`
	Quantity    interface{} `json:"quantity"`
	UnitPrice   interface{} `json:"unit_price"`
}

// CreateInvoiceRequest represents the request body for creating an invoice
type CreateInvoiceRequest struct {
	ClientName  string            `json:"client_name"`
	ClientEmail string            `json:"client_email"`
	IssueDate   string            `json:"issue_date"` // YYYY-MM-DD, defaults to today
	DueDate     string            `json:"due_date,omitempty"`
	LineItems   []LineItemRequest `json:"line_items"`
	TaxRate     interface{}       `json:"tax_rate"` // percent; falls back to settings default
	Currency    string            `json:"currency"` // falls back to settings default
	Notes       string            `json:"notes"`
}

// UpdateInvoiceRequest replaces an invoice's editable fields. Line
// items are replaced wholesale, not diffed.
type UpdateInvoiceRequest struct {
	ClientName  string            `json:"client_name"`
	ClientEmail string            `json:"client_email"`
	IssueDate   string            `json:"issue_date"`
	DueDate     string            `json:"due_date,omitempty"`
	LineItems   []LineItemRequest `json:"line_items"`
	TaxRate     interface{}       `json:"tax_rate"`
	Notes       string            `json:"notes"`
}

// TransitionRequest represents an explicit status transition
type TransitionRequest struct {
	Status InvoiceStatus `json:"status"`
}

// InvoiceStats are the aggregates returned alongside the invoice list
type InvoiceStats struct {
	Total              int   `json:"total"`
	Draft              int   `json:"draft"`
	Sent               int   `json:"sent"`
	Paid               int   `json:"paid"`
	Overdue            int   `json:"overdue"`
	Cancelled          int   `json:"cancelled"`
	TotalAmountCents   int64 `json:"total_amount_cents"`
	PaidAmountCents    int64 `json:"paid_amount_cents"`
	PendingAmountCents int64 `json:"pending_amount_cents"`
}

// InvoiceListResponse is the payload of GET /api/invoices
type InvoiceListResponse struct {
	Invoices []*Invoice   `json:"invoices"`
	Stats    InvoiceStats `json:"stats"`
}
