package repositories

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"

	"ledgerly-backend/internal/models"
)

type PaymentRepository struct {
	DB *pgxpool.Pool
}

func NewPaymentRepository(db *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{DB: db}
}

func (r *PaymentRepository) Create(ctx context.Context, p *models.Payment) error {
	return r.DB.QueryRow(ctx,
		`INSERT INTO payments(user_id, invoice_id, amount_cents, currency, status, method, transaction_id)
         VALUES($1, $2, $3, $4, $5, $6, $7)
         RETURNING id, created_at`,
		p.UserID, p.InvoiceID, p.AmountCents, p.Currency, p.Status, p.Method, p.TransactionID,
	).Scan(&p.ID, &p.CreatedAt)
}

// List returns payments joined with their invoice number and client name
func (r *PaymentRepository) List(ctx context.Context, f models.PaymentFilter) ([]*models.Payment, error) {
	query := `SELECT p.id, p.user_id, p.invoice_id, COALESCE(i.number, ''), COALESCE(i.client_name, ''),
                     p.amount_cents, p.currency, p.status, p.method, p.transaction_id, p.created_at
              FROM payments p
              LEFT JOIN invoices i ON i.id = p.invoice_id
              WHERE p.user_id=$1`
	args := []interface{}{f.UserID}

	if !f.Since.IsZero() {
		args = append(args, f.Since)
		query += ` AND p.created_at >= $2`
	}
	if f.Status != "" {
		args = append(args, f.Status)
		query += ` AND p.status=$` + strconv.Itoa(len(args))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		n := strconv.Itoa(len(args))
		query += ` AND (i.number ILIKE $` + n + ` OR i.client_name ILIKE $` + n + ` OR p.transaction_id ILIKE $` + n + `)`
	}
	query += ` ORDER BY p.created_at DESC`

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := []*models.Payment{}
	for rows.Next() {
		var p models.Payment
		if err := rows.Scan(&p.ID, &p.UserID, &p.InvoiceID, &p.InvoiceNumber, &p.ClientName,
			&p.AmountCents, &p.Currency, &p.Status, &p.Method, &p.TransactionID, &p.CreatedAt); err != nil {
			return nil, err
		}
		payments = append(payments, &p)
	}
	return payments, rows.Err()
}

func (r *PaymentRepository) Stats(ctx context.Context, userID int) (*models.PaymentStats, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT COUNT(*),
                COALESCE(SUM(amount_cents), 0),
                COALESCE(SUM(amount_cents) FILTER (WHERE status='pending'), 0),
                COALESCE(SUM(amount_cents) FILTER (WHERE status='completed'), 0),
                COUNT(*) FILTER (WHERE status='failed')
         FROM payments WHERE user_id=$1`, userID)

	var s models.PaymentStats
	err := row.Scan(&s.TotalPayments, &s.TotalAmountCents, &s.PendingAmountCents,
		&s.CompletedAmountCents, &s.FailedPayments)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
