package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestListRejectsUnknownStatusFilter(t *testing.T) {
	svc := NewPaymentService(nil)

	// Rejected before any query runs
	_, err := svc.List(context.Background(), 1, 0, "refunded", "")
	assert.ErrorIs(t, err, ErrInvalidPaymentStatus)

	_, err = svc.List(context.Background(), 1, 0, "PENDING", "")
	assert.ErrorIs(t, err, ErrInvalidPaymentStatus)
}
