package models

import "time"

// Notification types
const (
	NotificationInvoiceSent     = "invoice_sent"
	NotificationPaymentRecorded = "payment_recorded"
	NotificationQuotaWarning    = "quota_warning"
)

// Notification is an in-app message shown to a user
type Notification struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}
