package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"ledgerly-backend/internal/models"
)

type SettingsRepository struct {
	DB *pgxpool.Pool
}

func NewSettingsRepository(db *pgxpool.Pool) *SettingsRepository {
	return &SettingsRepository{DB: db}
}

const settingsColumns = `id, user_id, invoice_prefix, next_number, default_currency, default_tax_rate,
	company_name, company_address, company_email, company_phone, footer_text, created_at, updated_at`

func scanSettings(row interface{ Scan(...interface{}) error }) (*models.InvoiceSettings, error) {
	var s models.InvoiceSettings
	err := row.Scan(&s.ID, &s.UserID, &s.InvoicePrefix, &s.NextNumber, &s.DefaultCurrency,
		&s.DefaultTaxRate, &s.CompanyName, &s.CompanyAddress, &s.CompanyEmail,
		&s.CompanyPhone, &s.FooterText, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Get returns the user's settings row, creating it with defaults on
// first access.
func (r *SettingsRepository) Get(ctx context.Context, userID int) (*models.InvoiceSettings, error) {
	row := r.DB.QueryRow(ctx,
		`INSERT INTO invoice_settings(user_id) VALUES($1)
         ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
         RETURNING `+settingsColumns, userID)
	return scanSettings(row)
}

func (r *SettingsRepository) Update(ctx context.Context, userID int, req *models.UpdateSettingsRequest) (*models.InvoiceSettings, error) {
	row := r.DB.QueryRow(ctx,
		`UPDATE invoice_settings
         SET invoice_prefix=$1, default_currency=$2, default_tax_rate=$3, company_name=$4,
             company_address=$5, company_email=$6, company_phone=$7, footer_text=$8,
             updated_at=CURRENT_TIMESTAMP
         WHERE user_id=$9
         RETURNING `+settingsColumns,
		req.InvoicePrefix, req.DefaultCurrency, req.DefaultTaxRate, req.CompanyName,
		req.CompanyAddress, req.CompanyEmail, req.CompanyPhone, req.FooterText, userID)
	return scanSettings(row)
}

// NextInvoiceNumber atomically claims the next sequence number and
// returns the prefix with the claimed value. Two concurrent creations
// can never observe the same number.
func (r *SettingsRepository) NextInvoiceNumber(ctx context.Context, userID int) (string, int, error) {
	// Make sure the row exists before bumping it
	if _, err := r.Get(ctx, userID); err != nil {
		return "", 0, err
	}

	var prefix string
	var seq int
	err := r.DB.QueryRow(ctx,
		`UPDATE invoice_settings
         SET next_number = next_number + 1, updated_at = CURRENT_TIMESTAMP
         WHERE user_id=$1
         RETURNING invoice_prefix, next_number - 1`,
		userID).Scan(&prefix, &seq)
	if err != nil {
		return "", 0, err
	}
	return prefix, seq, nil
}
