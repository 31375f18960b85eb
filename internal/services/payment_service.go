package services

import (
	"context"
	"errors"

	"ledgerly-backend/internal/models"
	"ledgerly-backend/internal/repositories"
	"ledgerly-backend/internal/timeutil"
)

var ErrInvalidPaymentStatus = errors.New("unknown payment status")

type PaymentService struct {
	Repo *repositories.PaymentRepository
}

func NewPaymentService(repo *repositories.PaymentRepository) *PaymentService {
	return &PaymentService{Repo: repo}
}

// RecordForInvoice stores a completed payment covering an invoice's
// full total
func (s *PaymentService) RecordForInvoice(ctx context.Context, inv *models.Invoice, method, transactionID string) (*models.Payment, error) {
	invoiceID := inv.ID
	p := &models.Payment{
		UserID:        inv.UserID,
		InvoiceID:     &invoiceID,
		AmountCents:   inv.TotalCents,
		Currency:      inv.Currency,
		Status:        models.PaymentStatusCompleted,
		Method:        method,
		TransactionID: transactionID,
	}
	if err := s.Repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// RecordSubscriptionCharge stores a billing charge that is not tied to
// an invoice (plan renewals reported by the payment provider)
func (s *PaymentService) RecordSubscriptionCharge(ctx context.Context, userID int, amountCents int64, currency, transactionID string) (*models.Payment, error) {
	p := &models.Payment{
		UserID:        userID,
		AmountCents:   amountCents,
		Currency:      currency,
		Status:        models.PaymentStatusCompleted,
		Method:        "subscription",
		TransactionID: transactionID,
	}
	if err := s.Repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// List returns payments with aggregates, optionally narrowed to the
// last N days
func (s *PaymentService) List(ctx context.Context, userID, sinceDays int, status, search string) (*models.PaymentListResponse, error) {
	switch status {
	case "", models.PaymentStatusPending, models.PaymentStatusCompleted, models.PaymentStatusFailed:
	default:
		return nil, ErrInvalidPaymentStatus
	}

	filter := models.PaymentFilter{
		UserID: userID,
		Status: status,
		Search: search,
	}
	if sinceDays > 0 {
		filter.Since = timeutil.Now().AddDate(0, 0, -sinceDays)
	}

	payments, err := s.Repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	stats, err := s.Repo.Stats(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &models.PaymentListResponse{Payments: payments, Stats: *stats}, nil
}
