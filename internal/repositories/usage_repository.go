package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ledgerly-backend/internal/models"
)

// ErrQuotaExceeded is returned when a reservation would push a user
// past their monthly invoice limit.
var ErrQuotaExceeded = errors.New("monthly invoice limit reached")

type UsageRepository struct {
	DB *pgxpool.Pool
}

func NewUsageRepository(db *pgxpool.Pool) *UsageRepository {
	return &UsageRepository{DB: db}
}

// Reserve increments the counter for the given period if and only if
// the current count is below limit. The check and increment happen in
// a single statement so concurrent creations cannot overshoot the cap.
// A limit < 0 means unlimited.
func (r *UsageRepository) Reserve(ctx context.Context, userID int, periodStart time.Time, limit int) (int, error) {
	if limit < 0 {
		var count int
		err := r.DB.QueryRow(ctx,
			`INSERT INTO usage_counters(user_id, period_start, invoices_created)
             VALUES($1, $2, 1)
             ON CONFLICT (user_id, period_start)
             DO UPDATE SET invoices_created = usage_counters.invoices_created + 1, updated_at = NOW()
             RETURNING invoices_created`,
			userID, periodStart).Scan(&count)
		return count, err
	}

	var count int
	err := r.DB.QueryRow(ctx,
		`INSERT INTO usage_counters(user_id, period_start, invoices_created)
         VALUES($1, $2, 1)
         ON CONFLICT (user_id, period_start)
         DO UPDATE SET invoices_created = usage_counters.invoices_created + 1, updated_at = NOW()
         WHERE usage_counters.invoices_created < $3
         RETURNING invoices_created`,
		userID, periodStart, limit).Scan(&count)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrQuotaExceeded
	}
	return count, err
}

// Release decrements the counter, clamping at zero. Used when an
// invoice is deleted within the same period it was created.
func (r *UsageRepository) Release(ctx context.Context, userID int, periodStart time.Time) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE usage_counters
         SET invoices_created = GREATEST(invoices_created - 1, 0), updated_at = NOW()
         WHERE user_id=$1 AND period_start=$2`,
		userID, periodStart)
	return err
}

// Current returns the counter for the period, zero when no row exists
func (r *UsageRepository) Current(ctx context.Context, userID int, periodStart time.Time) (*models.UsageCounter, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT user_id, period_start, invoices_created, updated_at
         FROM usage_counters WHERE user_id=$1 AND period_start=$2`,
		userID, periodStart)

	var c models.UsageCounter
	err := row.Scan(&c.UserID, &c.PeriodStart, &c.InvoicesCreated, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return &models.UsageCounter{UserID: userID, PeriodStart: periodStart}, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}
