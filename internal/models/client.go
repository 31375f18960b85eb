package models

import "time"

// Client is a billable customer owned by a user. Invoices copy the
// client's name and email at creation time; editing a client never
// rewrites historical invoices.
type Client struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	Company   string    `json:"company"`
	TaxID     string    `json:"tax_id"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ClientRequest represents the request body for creating or updating a client
type ClientRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Company string `json:"company"`
	TaxID   string `json:"tax_id"`
	Notes   string `json:"notes"`
}
