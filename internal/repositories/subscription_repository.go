package repositories

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ledgerly-backend/internal/models"
)

type SubscriptionRepository struct {
	DB *pgxpool.Pool
}

func NewSubscriptionRepository(db *pgxpool.Pool) *SubscriptionRepository {
	return &SubscriptionRepository{DB: db}
}

const subscriptionColumns = `id, user_id, plan, status, razorpay_customer_id, razorpay_subscription_id, created_at, updated_at`

func scanSubscription(row pgx.Row) (*models.Subscription, error) {
	var s models.Subscription
	err := row.Scan(&s.ID, &s.UserID, &s.Plan, &s.Status,
		&s.RazorpayCustomerID, &s.RazorpaySubscriptionID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetByUser returns the user's subscription, defaulting to a free row
// when none exists.
func (r *SubscriptionRepository) GetByUser(ctx context.Context, userID int) (*models.Subscription, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions WHERE user_id=$1`, userID)
	sub, err := scanSubscription(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return &models.Subscription{
			UserID: userID,
			Plan:   models.PlanFree,
			Status: models.SubscriptionStatusActive,
		}, nil
	}
	return sub, err
}

func (r *SubscriptionRepository) GetByRazorpaySubscription(ctx context.Context, subscriptionID string) (*models.Subscription, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions WHERE razorpay_subscription_id=$1`,
		subscriptionID)
	return scanSubscription(row)
}

// Upsert writes the subscription row keyed by user
func (r *SubscriptionRepository) Upsert(ctx context.Context, s *models.Subscription) error {
	return r.DB.QueryRow(ctx,
		`INSERT INTO subscriptions(user_id, plan, status, razorpay_customer_id, razorpay_subscription_id)
         VALUES($1, $2, $3, $4, $5)
         ON CONFLICT (user_id)
         DO UPDATE SET plan=EXCLUDED.plan, status=EXCLUDED.status,
             razorpay_customer_id=EXCLUDED.razorpay_customer_id,
             razorpay_subscription_id=EXCLUDED.razorpay_subscription_id,
             updated_at=CURRENT_TIMESTAMP
         RETURNING id, created_at, updated_at`,
		s.UserID, s.Plan, s.Status, s.RazorpayCustomerID, s.RazorpaySubscriptionID,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
}
