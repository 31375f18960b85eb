package models

import "time"

// InvoiceSettings is the per-user singleton controlling numbering,
// currency and tax defaults, and the rendered PDF footer. The row is
// created lazily on first read.
type InvoiceSettings struct {
	ID              int       `json:"id"`
	UserID          int       `json:"user_id"`
	InvoicePrefix   string    `json:"invoice_prefix"`
	NextNumber      int       `json:"next_number"`
	DefaultCurrency string    `json:"default_currency"`
	DefaultTaxRate  float64   `json:"default_tax_rate"`
	CompanyName     string    `json:"company_name"`
	CompanyAddress  string    `json:"company_address"`
	CompanyEmail    string    `json:"company_email"`
	CompanyPhone    string    `json:"company_phone"`
	FooterText      string    `json:"footer_text"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// UpdateSettingsRequest represents the request body for PUT /api/settings/invoice.
// The next sequence number is deliberately not editable here; it only
// moves through number assignment.
type UpdateSettingsRequest struct {
	InvoicePrefix   string  `json:"invoice_prefix"`
	DefaultCurrency string  `json:"default_currency"`
	DefaultTaxRate  float64 `json:"default_tax_rate"`
	CompanyName     string  `json:"company_name"`
	CompanyAddress  string  `json:"company_address"`
	CompanyEmail    string  `json:"company_email"`
	CompanyPhone    string  `json:"company_phone"`
	FooterText      string  `json:"footer_text"`
}
