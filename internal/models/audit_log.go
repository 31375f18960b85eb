package models

import "time"

// Audit actions recorded in the security audit log
const (
	AuditActionLogin           = "login"
	AuditActionSignup          = "signup"
	AuditActionPasswordChange  = "password_change"
	AuditActionTOTPEnabled     = "2fa_enabled"
	AuditActionTOTPDisabled    = "2fa_disabled"
	AuditActionSettingsUpdated = "settings_updated"
	AuditActionInvoiceSent     = "invoice_sent"
	AuditActionInvoiceDeleted  = "invoice_deleted"
)

// AuditLogEntry is one row of the per-user security audit trail
type AuditLogEntry struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	Action    string    `json:"action"`
	IPAddress string    `json:"ip_address"`
	UserAgent string    `json:"user_agent"`
	Details   string    `json:"details"`
	CreatedAt time.Time `json:"created_at"`
}
