package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerly-backend/internal/models"
	"ledgerly-backend/internal/repositories"
	"ledgerly-backend/internal/timeutil"
)

type memStore struct {
	invoices   map[int]*models.Invoice
	nextID     int
	failCreate bool
}

func newMemStore() *memStore {
	return &memStore{invoices: map[int]*models.Invoice{}, nextID: 1}
}

func (m *memStore) Create(ctx context.Context, inv *models.Invoice) error {
	if m.failCreate {
		return errors.New("insert failed")
	}
	inv.ID = m.nextID
	m.nextID++
	inv.CreatedAt = timeutil.Now()
	m.invoices[inv.ID] = inv
	return nil
}

func (m *memStore) Get(ctx context.Context, userID, id int) (*models.Invoice, error) {
	inv, ok := m.invoices[id]
	if !ok || inv.UserID != userID {
		return nil, errors.New("not found")
	}
	cp := *inv
	return &cp, nil
}

func (m *memStore) List(ctx context.Context, userID int, status, search string) ([]*models.Invoice, error) {
	var out []*models.Invoice
	for _, inv := range m.invoices {
		if inv.UserID == userID {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (m *memStore) Update(ctx context.Context, inv *models.Invoice) error {
	m.invoices[inv.ID] = inv
	return nil
}

func (m *memStore) Delete(ctx context.Context, userID, id int) (bool, error) {
	if inv, ok := m.invoices[id]; ok && inv.UserID == userID {
		delete(m.invoices, id)
		return true, nil
	}
	return false, nil
}

func (m *memStore) Stats(ctx context.Context, userID int) (*models.InvoiceStats, error) {
	s := &models.InvoiceStats{}
	for _, inv := range m.invoices {
		if inv.UserID == userID {
			s.Total++
		}
	}
	return s, nil
}

type memUsage struct {
	counts map[string]int
}

func newMemUsage() *memUsage {
	return &memUsage{counts: map[string]int{}}
}

func usageKey(userID int, period time.Time) string {
	return fmt.Sprintf("%d:%s", userID, period.Format(timeutil.DateLayout))
}

func (m *memUsage) Reserve(ctx context.Context, userID int, periodStart time.Time, limit int) (int, error) {
	key := usageKey(userID, periodStart)
	if limit >= 0 && m.counts[key] >= limit {
		return 0, repositories.ErrQuotaExceeded
	}
	m.counts[key]++
	return m.counts[key], nil
}

func (m *memUsage) Release(ctx context.Context, userID int, periodStart time.Time) error {
	key := usageKey(userID, periodStart)
	if m.counts[key] > 0 {
		m.counts[key]--
	}
	return nil
}

func (m *memUsage) Current(ctx context.Context, userID int, periodStart time.Time) (*models.UsageCounter, error) {
	return &models.UsageCounter{
		UserID:          userID,
		PeriodStart:     periodStart,
		InvoicesCreated: m.counts[usageKey(userID, periodStart)],
	}, nil
}

type memSettings struct {
	settings models.InvoiceSettings
	next     int
}

func newMemSettings() *memSettings {
	return &memSettings{
		settings: models.InvoiceSettings{
			InvoicePrefix:   "INV",
			DefaultCurrency: "USD",
			DefaultTaxRate:  10,
		},
		next: 1,
	}
}

func (m *memSettings) Get(ctx context.Context, userID int) (*models.InvoiceSettings, error) {
	cp := m.settings
	return &cp, nil
}

func (m *memSettings) NextInvoiceNumber(ctx context.Context, userID int) (string, error) {
	n := fmt.Sprintf("%s-%04d", m.settings.InvoicePrefix, m.next)
	m.next++
	return n, nil
}

type stubPayments struct {
	recorded []*models.Payment
}

func (s *stubPayments) RecordForInvoice(ctx context.Context, inv *models.Invoice, method, transactionID string) (*models.Payment, error) {
	p := &models.Payment{UserID: inv.UserID, AmountCents: inv.TotalCents, Method: method}
	s.recorded = append(s.recorded, p)
	return p, nil
}

type stubNotify struct {
	types []string
}

func (s *stubNotify) Push(userID int, typ, title, message string) {
	s.types = append(s.types, typ)
}

type stubAudit struct {
	actions []string
}

func (s *stubAudit) Record(userID int, action, ip, userAgent, details string) {
	s.actions = append(s.actions, action)
}

type invoiceFixture struct {
	svc      *InvoiceService
	store    *memStore
	usage    *memUsage
	settings *memSettings
	payments *stubPayments
	notify   *stubNotify
	audit    *stubAudit
}

func newInvoiceFixture() *invoiceFixture {
	f := &invoiceFixture{
		store:    newMemStore(),
		usage:    newMemUsage(),
		settings: newMemSettings(),
		payments: &stubPayments{},
		notify:   &stubNotify{},
		audit:    &stubAudit{},
	}
	f.svc = NewInvoiceService(f.store, f.usage, f.settings, f.payments, f.notify, f.audit)
	return f
}

func createReq() *models.CreateInvoiceRequest {
	return &models.CreateInvoiceRequest{
		ClientName:  "Acme Corp",
		ClientEmail: "billing@acme.test",
		LineItems: []models.LineItemRequest{
			{Description: "Consulting", Quantity: 10, UnitPrice: 150},
			{Description: "Hosting", Quantity: 1, UnitPrice: "49.99"},
		},
	}
}

func TestCreateInvoice(t *testing.T) {
	f := newInvoiceFixture()
	ctx := context.Background()

	inv, err := f.svc.Create(ctx, 1, models.PlanFree, createReq())
	require.NoError(t, err)

	assert.Equal(t, "INV-0001", inv.Number)
	assert.Equal(t, models.InvoiceStatusDraft, inv.Status)
	assert.Equal(t, "USD", inv.Currency)
	// 10*150.00 + 49.99 = 1549.99, 10% tax
	assert.Equal(t, int64(154999), inv.SubtotalCents)
	assert.Equal(t, int64(15500), inv.TaxCents)
	assert.Equal(t, int64(170499), inv.TotalCents)

	usage, err := f.svc.CurrentUsage(ctx, 1, models.PlanFree)
	require.NoError(t, err)
	assert.Equal(t, 1, usage.Current)
	assert.Equal(t, models.FreeTierInvoiceLimit, usage.Limit)
}

func TestCreateInvoiceSequentialNumbers(t *testing.T) {
	f := newInvoiceFixture()
	ctx := context.Background()

	first, err := f.svc.Create(ctx, 1, models.PlanFree, createReq())
	require.NoError(t, err)
	second, err := f.svc.Create(ctx, 1, models.PlanFree, createReq())
	require.NoError(t, err)

	assert.Equal(t, "INV-0001", first.Number)
	assert.Equal(t, "INV-0002", second.Number)
}

func TestCreateInvoiceQuotaExceeded(t *testing.T) {
	f := newInvoiceFixture()
	ctx := context.Background()

	for i := 0; i < models.FreeTierInvoiceLimit; i++ {
		_, err := f.svc.Create(ctx, 1, models.PlanFree, createReq())
		require.NoError(t, err)
	}

	_, err := f.svc.Create(ctx, 1, models.PlanFree, createReq())
	assert.ErrorIs(t, err, repositories.ErrQuotaExceeded)

	// Exhausting the quota pushes a warning once
	assert.Contains(t, f.notify.types, models.NotificationQuotaWarning)
}

func TestCreateInvoiceProPlanUnlimited(t *testing.T) {
	f := newInvoiceFixture()
	ctx := context.Background()

	for i := 0; i < models.FreeTierInvoiceLimit+5; i++ {
		_, err := f.svc.Create(ctx, 1, models.PlanPro, createReq())
		require.NoError(t, err)
	}

	usage, err := f.svc.CurrentUsage(ctx, 1, models.PlanPro)
	require.NoError(t, err)
	assert.Equal(t, models.FreeTierInvoiceLimit+5, usage.Current)
	assert.Equal(t, -1, usage.Limit)
	assert.True(t, usage.IsPro)
}

func TestCreateInvoiceReleasesQuotaOnFailure(t *testing.T) {
	f := newInvoiceFixture()
	f.store.failCreate = true
	ctx := context.Background()

	_, err := f.svc.Create(ctx, 1, models.PlanFree, createReq())
	require.Error(t, err)

	usage, err := f.svc.CurrentUsage(ctx, 1, models.PlanFree)
	require.NoError(t, err)
	assert.Equal(t, 0, usage.Current)
}

func TestCreateInvoiceNoLineItems(t *testing.T) {
	f := newInvoiceFixture()

	req := createReq()
	req.LineItems = nil
	_, err := f.svc.Create(context.Background(), 1, models.PlanFree, req)
	assert.ErrorIs(t, err, ErrNoLineItems)
}

func TestCreateInvoiceLenientLineItems(t *testing.T) {
	f := newInvoiceFixture()

	req := createReq()
	req.LineItems = []models.LineItemRequest{
		{Description: "Mystery", Quantity: "abc", UnitPrice: nil},
	}
	req.TaxRate = 0

	inv, err := f.svc.Create(context.Background(), 1, models.PlanFree, req)
	require.NoError(t, err)

	// Malformed quantity defaults to 1, missing price to 0
	assert.Equal(t, float64(1), inv.LineItems[0].Quantity)
	assert.Equal(t, int64(0), inv.TotalCents)
}

func TestUpdateInvoiceOnlyDraft(t *testing.T) {
	f := newInvoiceFixture()
	ctx := context.Background()

	inv, err := f.svc.Create(ctx, 1, models.PlanFree, createReq())
	require.NoError(t, err)

	_, err = f.svc.Transition(ctx, 1, inv.ID, models.InvoiceStatusSent)
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, 1, inv.ID, &models.UpdateInvoiceRequest{
		ClientName: "Other",
		LineItems:  []models.LineItemRequest{{Description: "x", Quantity: 1, UnitPrice: 1}},
	})
	assert.ErrorIs(t, err, ErrNotEditable)
}

func TestTransitionLifecycle(t *testing.T) {
	f := newInvoiceFixture()
	ctx := context.Background()

	inv, err := f.svc.Create(ctx, 1, models.PlanFree, createReq())
	require.NoError(t, err)

	// Draft cannot jump straight to paid
	_, err = f.svc.Transition(ctx, 1, inv.ID, models.InvoiceStatusPaid)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	sent, err := f.svc.Transition(ctx, 1, inv.ID, models.InvoiceStatusSent)
	require.NoError(t, err)
	require.NotNil(t, sent.SentAt)

	paid, err := f.svc.Transition(ctx, 1, inv.ID, models.InvoiceStatusPaid)
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceStatusPaid, paid.Status)

	// Marking paid records a payment for the full total and tells the
	// user about it
	require.Len(t, f.payments.recorded, 1)
	assert.Equal(t, inv.TotalCents, f.payments.recorded[0].AmountCents)
	assert.Contains(t, f.notify.types, models.NotificationPaymentRecorded)

	// Paid is terminal
	_, err = f.svc.Transition(ctx, 1, inv.ID, models.InvoiceStatusCancelled)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestRecalculateKeepsEffectiveRate(t *testing.T) {
	f := newInvoiceFixture()
	ctx := context.Background()

	inv, err := f.svc.Create(ctx, 1, models.PlanFree, createReq())
	require.NoError(t, err)

	recalced, err := f.svc.Recalculate(ctx, 1, inv.ID)
	require.NoError(t, err)

	// Recalculating unchanged items is a no-op
	assert.Equal(t, inv.SubtotalCents, recalced.SubtotalCents)
	assert.Equal(t, inv.TaxCents, recalced.TaxCents)
	assert.Equal(t, inv.TotalCents, recalced.TotalCents)
}

func TestDuplicateConsumesQuotaAndNumber(t *testing.T) {
	f := newInvoiceFixture()
	ctx := context.Background()

	src, err := f.svc.Create(ctx, 1, models.PlanFree, createReq())
	require.NoError(t, err)

	dup, err := f.svc.Duplicate(ctx, 1, models.PlanFree, src.ID)
	require.NoError(t, err)

	assert.Equal(t, "INV-0002", dup.Number)
	assert.Equal(t, models.InvoiceStatusDraft, dup.Status)
	assert.Equal(t, src.TotalCents, dup.TotalCents)

	usage, err := f.svc.CurrentUsage(ctx, 1, models.PlanFree)
	require.NoError(t, err)
	assert.Equal(t, 2, usage.Current)
}

func TestDeleteReleasesQuota(t *testing.T) {
	f := newInvoiceFixture()
	ctx := context.Background()

	inv, err := f.svc.Create(ctx, 1, models.PlanFree, createReq())
	require.NoError(t, err)

	deleted, err := f.svc.Delete(ctx, 1, inv.ID, "127.0.0.1", "test")
	require.NoError(t, err)
	require.True(t, deleted)

	usage, err := f.svc.CurrentUsage(ctx, 1, models.PlanFree)
	require.NoError(t, err)
	assert.Equal(t, 0, usage.Current)
	assert.Contains(t, f.audit.actions, models.AuditActionInvoiceDeleted)
}

func TestDeletePastPeriodKeepsCounter(t *testing.T) {
	f := newInvoiceFixture()
	ctx := context.Background()

	old, err := f.svc.Create(ctx, 1, models.PlanFree, createReq())
	require.NoError(t, err)
	// Backdate the first invoice into the previous month
	f.store.invoices[old.ID].CreatedAt = timeutil.CurrentPeriodStart().AddDate(0, 0, -1)

	current, err := f.svc.Create(ctx, 1, models.PlanFree, createReq())
	require.NoError(t, err)

	deleted, err := f.svc.Delete(ctx, 1, old.ID, "127.0.0.1", "test")
	require.NoError(t, err)
	require.True(t, deleted)

	// Deleting a past-month invoice never refunds this month's quota
	usage, err := f.svc.CurrentUsage(ctx, 1, models.PlanFree)
	require.NoError(t, err)
	assert.Equal(t, 2, usage.Current)

	deleted, err = f.svc.Delete(ctx, 1, current.ID, "127.0.0.1", "test")
	require.NoError(t, err)
	require.True(t, deleted)

	usage, err = f.svc.CurrentUsage(ctx, 1, models.PlanFree)
	require.NoError(t, err)
	assert.Equal(t, 1, usage.Current)
}

func TestSendAuditsAndNotifies(t *testing.T) {
	f := newInvoiceFixture()
	ctx := context.Background()

	inv, err := f.svc.Create(ctx, 1, models.PlanFree, createReq())
	require.NoError(t, err)

	sent, err := f.svc.Send(ctx, 1, inv.ID, "127.0.0.1", "test")
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceStatusSent, sent.Status)
	assert.Contains(t, f.audit.actions, models.AuditActionInvoiceSent)
	assert.Contains(t, f.notify.types, models.NotificationInvoiceSent)
}

func TestUserOwnershipEnforced(t *testing.T) {
	f := newInvoiceFixture()
	ctx := context.Background()

	inv, err := f.svc.Create(ctx, 1, models.PlanFree, createReq())
	require.NoError(t, err)

	_, err = f.svc.Get(ctx, 2, inv.ID)
	assert.Error(t, err)
}
