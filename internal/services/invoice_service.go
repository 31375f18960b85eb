package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"ledgerly-backend/internal/billing"
	"ledgerly-backend/internal/cache"
	"ledgerly-backend/internal/metrics"
	"ledgerly-backend/internal/models"
	"ledgerly-backend/internal/repositories"
	"ledgerly-backend/internal/timeutil"
)

var (
	ErrNoLineItems       = errors.New("invoice needs at least one line item")
	ErrNotEditable       = errors.New("only draft invoices can be edited")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInvalidStatus     = errors.New("unknown invoice status")
)

// Narrow store interfaces so the service can be tested without a
// database.
type invoiceStore interface {
	Create(ctx context.Context, inv *models.Invoice) error
	Get(ctx context.Context, userID, id int) (*models.Invoice, error)
	List(ctx context.Context, userID int, status, search string) ([]*models.Invoice, error)
	Update(ctx context.Context, inv *models.Invoice) error
	Delete(ctx context.Context, userID, id int) (bool, error)
	Stats(ctx context.Context, userID int) (*models.InvoiceStats, error)
}

type usageStore interface {
	Reserve(ctx context.Context, userID int, periodStart time.Time, limit int) (int, error)
	Release(ctx context.Context, userID int, periodStart time.Time) error
	Current(ctx context.Context, userID int, periodStart time.Time) (*models.UsageCounter, error)
}

type settingsSource interface {
	Get(ctx context.Context, userID int) (*models.InvoiceSettings, error)
	NextInvoiceNumber(ctx context.Context, userID int) (string, error)
}

type paymentRecorder interface {
	RecordForInvoice(ctx context.Context, inv *models.Invoice, method, transactionID string) (*models.Payment, error)
}

type notifier interface {
	Push(userID int, typ, title, message string)
}

type auditor interface {
	Record(userID int, action, ip, userAgent, details string)
}

type InvoiceService struct {
	Store    invoiceStore
	Usage    usageStore
	Settings settingsSource
	Payments paymentRecorder
	Notify   notifier
	Audit    auditor
}

func NewInvoiceService(store invoiceStore, usage usageStore, settings settingsSource,
	payments paymentRecorder, notify notifier, audit auditor) *InvoiceService {
	return &InvoiceService{
		Store:    store,
		Usage:    usage,
		Settings: settings,
		Payments: payments,
		Notify:   notify,
		Audit:    audit,
	}
}

// quotaLimit returns the monthly invoice cap for a plan, -1 for
// unlimited
func quotaLimit(plan string) int {
	if plan == models.PlanPro {
		return -1
	}
	return models.FreeTierInvoiceLimit
}

func parseDate(value string) (time.Time, error) {
	return time.Parse(timeutil.DateLayout, value)
}

// buildLineItems coerces the raw request items into canonical line
// items. Blank descriptions are kept; only a fully empty list is an
// error.
func buildLineItems(reqs []models.LineItemRequest) ([]billing.LineItem, error) {
	if len(reqs) == 0 {
		return nil, ErrNoLineItems
	}
	items := make([]billing.LineItem, 0, len(reqs))
	for _, r := range reqs {
		items = append(items, billing.NewLineItem(r.Description, r.Quantity, r.UnitPrice))
	}
	return items, nil
}

// Create reserves quota, claims an invoice number and persists the new
// draft. The quota reservation is released if any later step fails.
func (s *InvoiceService) Create(ctx context.Context, userID int, plan string, req *models.CreateInvoiceRequest) (*models.Invoice, error) {
	items, err := buildLineItems(req.LineItems)
	if err != nil {
		return nil, err
	}

	settings, err := s.Settings.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	taxRate := billing.CoerceTaxRate(req.TaxRate, settings.DefaultTaxRate)
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if len(currency) != 3 {
		currency = settings.DefaultCurrency
	}

	issueDate := timeutil.StartOfDay(timeutil.Now())
	if req.IssueDate != "" {
		if issueDate, err = parseDate(req.IssueDate); err != nil {
			return nil, fmt.Errorf("invalid issue_date: %w", err)
		}
	}
	var dueDate *time.Time
	if req.DueDate != "" {
		d, err := parseDate(req.DueDate)
		if err != nil {
			return nil, fmt.Errorf("invalid due_date: %w", err)
		}
		dueDate = &d
	}

	period := timeutil.CurrentPeriodStart()
	limit := quotaLimit(plan)
	count, err := s.Usage.Reserve(ctx, userID, period, limit)
	if err != nil {
		if errors.Is(err, repositories.ErrQuotaExceeded) {
			metrics.QuotaRejectionsTotal.Inc()
		}
		return nil, err
	}

	number, err := s.Settings.NextInvoiceNumber(ctx, userID)
	if err != nil {
		_ = s.Usage.Release(ctx, userID, period)
		return nil, err
	}

	totals := billing.ComputeTotals(items, taxRate)

	inv := &models.Invoice{
		UserID:        userID,
		Number:        number,
		ClientName:    strings.TrimSpace(req.ClientName),
		ClientEmail:   strings.TrimSpace(req.ClientEmail),
		IssueDate:     issueDate,
		DueDate:       dueDate,
		LineItems:     items,
		SubtotalCents: totals.SubtotalCents,
		TaxCents:      totals.TaxCents,
		TotalCents:    totals.TotalCents,
		Currency:      currency,
		Status:        models.InvoiceStatusDraft,
		Notes:         req.Notes,
	}
	if err := s.Store.Create(ctx, inv); err != nil {
		_ = s.Usage.Release(ctx, userID, period)
		return nil, err
	}

	metrics.InvoicesCreatedTotal.Inc()
	cache.InvalidateInvoiceStats(ctx, userID)

	if limit > 0 && count == limit {
		s.Notify.Push(userID, models.NotificationQuotaWarning,
			"Monthly invoice limit reached",
			fmt.Sprintf("You have used all %d invoices on the free plan this month.", limit))
	}

	return inv, nil
}

func (s *InvoiceService) Get(ctx context.Context, userID, id int) (*models.Invoice, error) {
	return s.Store.Get(ctx, userID, id)
}

// List returns the user's invoices with dashboard stats. Stats are
// served from cache when fresh.
func (s *InvoiceService) List(ctx context.Context, userID int, status, search string) (*models.InvoiceListResponse, error) {
	if status != "" && !models.InvoiceStatus(status).Valid() {
		return nil, ErrInvalidStatus
	}

	invoices, err := s.Store.List(ctx, userID, status, search)
	if err != nil {
		return nil, err
	}

	stats, err := s.cachedStats(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &models.InvoiceListResponse{Invoices: invoices, Stats: *stats}, nil
}

func (s *InvoiceService) cachedStats(ctx context.Context, userID int) (*models.InvoiceStats, error) {
	if data, ok := cache.GetCachedInvoiceStats(ctx, userID); ok {
		var stats models.InvoiceStats
		if err := json.Unmarshal(data, &stats); err == nil {
			return &stats, nil
		}
	}
	stats, err := s.Store.Stats(ctx, userID)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(stats); err == nil {
		cache.CacheInvoiceStats(ctx, userID, data)
	}
	return stats, nil
}

// Update replaces the editable fields of a draft invoice and
// recomputes its totals
func (s *InvoiceService) Update(ctx context.Context, userID, id int, req *models.UpdateInvoiceRequest) (*models.Invoice, error) {
	inv, err := s.Store.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if inv.Status != models.InvoiceStatusDraft {
		return nil, ErrNotEditable
	}

	items, err := buildLineItems(req.LineItems)
	if err != nil {
		return nil, err
	}

	// Absent tax rate keeps the invoice's effective rate instead of
	// resetting to the settings default
	currentRate := billing.EffectiveTaxRate(inv.SubtotalCents, inv.TaxCents)
	taxRate := billing.CoerceTaxRate(req.TaxRate, currentRate)

	if req.IssueDate != "" {
		d, err := parseDate(req.IssueDate)
		if err != nil {
			return nil, fmt.Errorf("invalid issue_date: %w", err)
		}
		inv.IssueDate = d
	}
	if req.DueDate != "" {
		d, err := parseDate(req.DueDate)
		if err != nil {
			return nil, fmt.Errorf("invalid due_date: %w", err)
		}
		inv.DueDate = &d
	}

	totals := billing.ComputeTotals(items, taxRate)
	inv.ClientName = strings.TrimSpace(req.ClientName)
	inv.ClientEmail = strings.TrimSpace(req.ClientEmail)
	inv.LineItems = items
	inv.SubtotalCents = totals.SubtotalCents
	inv.TaxCents = totals.TaxCents
	inv.TotalCents = totals.TotalCents
	inv.Notes = req.Notes

	if err := s.Store.Update(ctx, inv); err != nil {
		return nil, err
	}
	cache.InvalidateInvoiceStats(ctx, userID)
	return inv, nil
}

// Delete removes an invoice. The monthly quota slot is handed back
// only when the invoice was created in the current period.
func (s *InvoiceService) Delete(ctx context.Context, userID, id int, ip, userAgent string) (bool, error) {
	inv, err := s.Store.Get(ctx, userID, id)
	if err != nil {
		return false, err
	}

	deleted, err := s.Store.Delete(ctx, userID, id)
	if err != nil || !deleted {
		return deleted, err
	}

	period := timeutil.CurrentPeriodStart()
	if timeutil.SamePeriod(inv.CreatedAt, timeutil.Now()) {
		if err := s.Usage.Release(ctx, userID, period); err != nil {
			log.Printf("[Invoice] usage release failed for user %d: %v", userID, err)
		}
	}

	cache.InvalidateInvoiceStats(ctx, userID)
	s.Audit.Record(userID, models.AuditActionInvoiceDeleted, ip, userAgent, inv.Number)
	return true, nil
}

// Recalculate recomputes totals from the stored line items, reapplying
// the invoice's effective tax rate to the fresh subtotal
func (s *InvoiceService) Recalculate(ctx context.Context, userID, id int) (*models.Invoice, error) {
	inv, err := s.Store.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	rate := billing.EffectiveTaxRate(inv.SubtotalCents, inv.TaxCents)
	totals := billing.ComputeTotals(inv.LineItems, rate)

	inv.SubtotalCents = totals.SubtotalCents
	inv.TaxCents = totals.TaxCents
	inv.TotalCents = totals.TotalCents

	if err := s.Store.Update(ctx, inv); err != nil {
		return nil, err
	}
	cache.InvalidateInvoiceStats(ctx, userID)
	return inv, nil
}

// Duplicate copies an invoice into a new draft. The copy goes through
// the normal creation path, so it consumes quota and gets the next
// number in the sequence.
func (s *InvoiceService) Duplicate(ctx context.Context, userID int, plan string, id int) (*models.Invoice, error) {
	src, err := s.Store.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	req := &models.CreateInvoiceRequest{
		ClientName:  src.ClientName,
		ClientEmail: src.ClientEmail,
		TaxRate:     billing.EffectiveTaxRate(src.SubtotalCents, src.TaxCents),
		Currency:    src.Currency,
		Notes:       src.Notes,
	}
	for _, item := range src.LineItems {
		req.LineItems = append(req.LineItems, models.LineItemRequest{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   float64(item.UnitPriceCents) / 100,
		})
	}

	return s.Create(ctx, userID, plan, req)
}

// Send marks a draft invoice as sent
func (s *InvoiceService) Send(ctx context.Context, userID, id int, ip, userAgent string) (*models.Invoice, error) {
	inv, err := s.Transition(ctx, userID, id, models.InvoiceStatusSent)
	if err != nil {
		return nil, err
	}

	s.Audit.Record(userID, models.AuditActionInvoiceSent, ip, userAgent, inv.Number)
	s.Notify.Push(userID, models.NotificationInvoiceSent,
		"Invoice sent",
		fmt.Sprintf("Invoice %s to %s was marked as sent.", inv.Number, inv.ClientName))
	return inv, nil
}

// Transition moves an invoice through its lifecycle. Reaching paid
// records a payment for the full total.
func (s *InvoiceService) Transition(ctx context.Context, userID, id int, to models.InvoiceStatus) (*models.Invoice, error) {
	if !to.Valid() {
		return nil, ErrInvalidStatus
	}

	inv, err := s.Store.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if !inv.Status.CanTransitionTo(to) {
		return nil, ErrInvalidTransition
	}

	inv.Status = to
	if to == models.InvoiceStatusSent && inv.SentAt == nil {
		now := timeutil.Now()
		inv.SentAt = &now
	}

	if err := s.Store.Update(ctx, inv); err != nil {
		return nil, err
	}
	cache.InvalidateInvoiceStats(ctx, userID)

	if to == models.InvoiceStatusPaid && s.Payments != nil {
		if _, err := s.Payments.RecordForInvoice(ctx, inv, "manual", ""); err != nil {
			log.Printf("[Invoice] payment record failed for %s: %v", inv.Number, err)
		} else {
			s.Notify.Push(userID, models.NotificationPaymentRecorded,
				"Payment recorded",
				fmt.Sprintf("Payment of %s %s recorded for invoice %s.",
					billing.FormatCents(inv.TotalCents), inv.Currency, inv.Number))
		}
	}

	return inv, nil
}

// CurrentUsage returns the quota snapshot for GET /api/usage
func (s *InvoiceService) CurrentUsage(ctx context.Context, userID int, plan string) (*models.UsageResponse, error) {
	counter, err := s.Usage.Current(ctx, userID, timeutil.CurrentPeriodStart())
	if err != nil {
		return nil, err
	}
	return &models.UsageResponse{
		Current: counter.InvoicesCreated,
		Limit:   quotaLimit(plan),
		IsPro:   plan == models.PlanPro,
	}, nil
}
