package models

import "time"

// Subscription plans mirrored from the payment processor. The gating
// logic only ever reads the two-valued plan and its status.
const (
	PlanFree = "free"
	PlanPro  = "pro"

	SubscriptionStatusActive   = "active"
	SubscriptionStatusCanceled = "canceled"
)

type Subscription struct {
	ID                     int       `json:"id"`
	UserID                 int       `json:"user_id"`
	Plan                   string    `json:"plan"`
	Status                 string    `json:"status"`
	RazorpayCustomerID     string    `json:"-"`
	RazorpaySubscriptionID string    `json:"-"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
}

// IsPro reports whether the subscription exempts the user from the
// free-tier invoice quota
func (s *Subscription) IsPro() bool {
	return s != nil && s.Plan == PlanPro && s.Status == SubscriptionStatusActive
}

// CheckoutResponse carries the hosted payment page for an upgrade
type CheckoutResponse struct {
	SubscriptionID string `json:"subscription_id"`
	CheckoutURL    string `json:"checkout_url"`
	KeyID          string `json:"key_id"`
}

// PortalResponse carries the hosted subscription management page
type PortalResponse struct {
	PortalURL string `json:"portal_url"`
}
