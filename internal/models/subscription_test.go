package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsPro(t *testing.T) {
	var none *Subscription
	assert.False(t, none.IsPro())

	assert.True(t, (&Subscription{Plan: PlanPro, Status: SubscriptionStatusActive}).IsPro())

	// A cancelled pro subscription no longer counts
	assert.False(t, (&Subscription{Plan: PlanPro, Status: SubscriptionStatusCanceled}).IsPro())
	assert.False(t, (&Subscription{Plan: PlanFree, Status: SubscriptionStatusActive}).IsPro())
}
