package models

import "time"

// FreeTierInvoiceLimit is the number of invoices a free-plan user may
// create per calendar month.
const FreeTierInvoiceLimit = 10

// UsageCounter meters invoice creation per user and calendar month.
// PeriodStart is always the first of the month (UTC). The count is
// never negative.
type UsageCounter struct {
	UserID          int       `json:"user_id"`
	PeriodStart     time.Time `json:"period_start"`
	InvoicesCreated int       `json:"invoices_created"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// UsageResponse is the payload of GET /api/usage. Limit is -1 for
// unlimited (pro) accounts.
type UsageResponse struct {
	Current int  `json:"current"`
	Limit   int  `json:"limit"`
	IsPro   bool `json:"is_pro"`
}
