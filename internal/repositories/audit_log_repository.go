package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"ledgerly-backend/internal/models"
)

type AuditLogRepository struct {
	DB *pgxpool.Pool
}

func NewAuditLogRepository(db *pgxpool.Pool) *AuditLogRepository {
	return &AuditLogRepository{DB: db}
}

func (r *AuditLogRepository) Insert(ctx context.Context, e *models.AuditLogEntry) error {
	return r.DB.QueryRow(ctx,
		`INSERT INTO audit_log(user_id, action, ip_address, user_agent, details)
         VALUES($1, $2, $3, $4, $5)
         RETURNING id, created_at`,
		e.UserID, e.Action, e.IPAddress, e.UserAgent, e.Details,
	).Scan(&e.ID, &e.CreatedAt)
}

// List returns the most recent entries for a user, newest first
func (r *AuditLogRepository) List(ctx context.Context, userID, limit int) ([]*models.AuditLogEntry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := r.DB.Query(ctx,
		`SELECT id, user_id, action, ip_address, user_agent, details, created_at
         FROM audit_log WHERE user_id=$1
         ORDER BY created_at DESC LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []*models.AuditLogEntry{}
	for rows.Next() {
		var e models.AuditLogEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Action, &e.IPAddress, &e.UserAgent,
			&e.Details, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}
