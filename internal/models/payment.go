package models

import "time"

// Payment statuses
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
)

// Payment is a recorded payment against an invoice, either entered
// manually when an invoice is marked paid or created from a processor
// webhook charge event.
type Payment struct {
	ID            int       `json:"id"`
	UserID        int       `json:"user_id"`
	InvoiceID     *int      `json:"invoice_id"`
	InvoiceNumber string    `json:"invoice_number"`
	ClientName    string    `json:"client_name"`
	AmountCents   int64     `json:"amount_cents"`
	Currency      string    `json:"currency"`
	Status        string    `json:"status"`
	Method        string    `json:"method"`
	TransactionID string    `json:"transaction_id"`
	CreatedAt     time.Time `json:"created_at"`
}

// PaymentFilter narrows the payment listing
type PaymentFilter struct {
	UserID int
	Since  time.Time
	Status string
	Search string
}

// PaymentStats are the aggregates returned alongside the payment list
type PaymentStats struct {
	TotalPayments        int   `json:"total_payments"`
	TotalAmountCents     int64 `json:"total_amount_cents"`
	PendingAmountCents   int64 `json:"pending_amount_cents"`
	CompletedAmountCents int64 `json:"completed_amount_cents"`
	FailedPayments       int   `json:"failed_payments"`
}

// PaymentListResponse is the payload of GET /api/payments
type PaymentListResponse struct {
	Payments []*Payment   `json:"payments"`
	Stats    PaymentStats `json:"stats"`
}
