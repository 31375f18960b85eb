package repositories

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"ledgerly-backend/internal/models"
)

type InvoiceRepository struct {
	DB *pgxpool.Pool
}

func NewInvoiceRepository(db *pgxpool.Pool) *InvoiceRepository {
	return &InvoiceRepository{DB: db}
}

const invoiceColumns = `id, user_id, number, client_name, client_email, issue_date, due_date,
	line_items, subtotal_cents, tax_cents, total_cents, currency, status, notes,
	sent_at, created_at, updated_at`

func scanInvoice(row interface{ Scan(...interface{}) error }) (*models.Invoice, error) {
	var inv models.Invoice
	var items []byte
	err := row.Scan(&inv.ID, &inv.UserID, &inv.Number, &inv.ClientName, &inv.ClientEmail,
		&inv.IssueDate, &inv.DueDate, &items, &inv.SubtotalCents, &inv.TaxCents,
		&inv.TotalCents, &inv.Currency, &inv.Status, &inv.Notes, &inv.SentAt,
		&inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, &inv.LineItems); err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *InvoiceRepository) Create(ctx context.Context, inv *models.Invoice) error {
	items, err := json.Marshal(inv.LineItems)
	if err != nil {
		return err
	}
	return r.DB.QueryRow(ctx,
		`INSERT INTO invoices(user_id, number, client_name, client_email, issue_date, due_date,
             line_items, subtotal_cents, tax_cents, total_cents, currency, status, notes)
         VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
         RETURNING id, created_at, updated_at`,
		inv.UserID, inv.Number, inv.ClientName, inv.ClientEmail, inv.IssueDate, inv.DueDate,
		items, inv.SubtotalCents, inv.TaxCents, inv.TotalCents, inv.Currency, inv.Status, inv.Notes,
	).Scan(&inv.ID, &inv.CreatedAt, &inv.UpdatedAt)
}

// Get returns an invoice only when it belongs to userID
func (r *InvoiceRepository) Get(ctx context.Context, userID, id int) (*models.Invoice, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT `+invoiceColumns+` FROM invoices WHERE id=$1 AND user_id=$2`, id, userID)
	return scanInvoice(row)
}

func (r *InvoiceRepository) List(ctx context.Context, userID int, status, search string) ([]*models.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE user_id=$1`
	args := []interface{}{userID}

	if status != "" {
		args = append(args, status)
		query += ` AND status=$2`
	}
	if search != "" {
		args = append(args, "%"+search+"%")
		if status != "" {
			query += ` AND (number ILIKE $3 OR client_name ILIKE $3 OR client_email ILIKE $3)`
		} else {
			query += ` AND (number ILIKE $2 OR client_name ILIKE $2 OR client_email ILIKE $2)`
		}
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	invoices := []*models.Invoice{}
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

func (r *InvoiceRepository) Update(ctx context.Context, inv *models.Invoice) error {
	items, err := json.Marshal(inv.LineItems)
	if err != nil {
		return err
	}
	_, err = r.DB.Exec(ctx,
		`UPDATE invoices SET client_name=$1, client_email=$2, issue_date=$3, due_date=$4,
             line_items=$5, subtotal_cents=$6, tax_cents=$7, total_cents=$8, notes=$9,
             status=$10, sent_at=$11, updated_at=CURRENT_TIMESTAMP
         WHERE id=$12 AND user_id=$13`,
		inv.ClientName, inv.ClientEmail, inv.IssueDate, inv.DueDate,
		items, inv.SubtotalCents, inv.TaxCents, inv.TotalCents, inv.Notes,
		inv.Status, inv.SentAt, inv.ID, inv.UserID)
	return err
}

func (r *InvoiceRepository) Delete(ctx context.Context, userID, id int) (bool, error) {
	tag, err := r.DB.Exec(ctx,
		`DELETE FROM invoices WHERE id=$1 AND user_id=$2`, id, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Stats aggregates counts and amounts across all of a user's invoices.
// Cancelled invoices are excluded from the amount totals.
func (r *InvoiceRepository) Stats(ctx context.Context, userID int) (*models.InvoiceStats, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT COUNT(*),
                COUNT(*) FILTER (WHERE status='draft'),
                COUNT(*) FILTER (WHERE status='sent'),
                COUNT(*) FILTER (WHERE status='paid'),
                COUNT(*) FILTER (WHERE status='overdue'),
                COUNT(*) FILTER (WHERE status='cancelled'),
                COALESCE(SUM(total_cents) FILTER (WHERE status != 'cancelled'), 0),
                COALESCE(SUM(total_cents) FILTER (WHERE status='paid'), 0),
                COALESCE(SUM(total_cents) FILTER (WHERE status IN ('sent', 'overdue')), 0)
         FROM invoices WHERE user_id=$1`, userID)

	var s models.InvoiceStats
	err := row.Scan(&s.Total, &s.Draft, &s.Sent, &s.Paid, &s.Overdue, &s.Cancelled,
		&s.TotalAmountCents, &s.PaidAmountCents, &s.PendingAmountCents)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// MarkOverdue flips sent invoices whose due date has passed. Returns
// the number of invoices transitioned.
func (r *InvoiceRepository) MarkOverdue(ctx context.Context) (int64, error) {
	tag, err := r.DB.Exec(ctx,
		`UPDATE invoices SET status='overdue', updated_at=CURRENT_TIMESTAMP
         WHERE status='sent' AND due_date IS NOT NULL AND due_date < CURRENT_DATE`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// CountByStatus returns system-wide invoice counts for the monitoring server
func (r *InvoiceRepository) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT status, COUNT(*) FROM invoices GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}
