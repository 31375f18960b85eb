package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"ledgerly-backend/internal/models"
)

type UserRepository struct {
	DB *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	if u.Plan == "" {
		u.Plan = models.PlanFree
	}
	u.IsActive = true
	return r.DB.QueryRow(ctx,
		`INSERT INTO users(name, email, password_hash, plan, is_active)
         VALUES($1, $2, $3, $4, $5)
         RETURNING id, created_at, updated_at`,
		u.Name, u.Email, u.PasswordHash, u.Plan, u.IsActive,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
}

func (r *UserRepository) Get(ctx context.Context, id int) (*models.User, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT id, name, email, password_hash, totp_secret, totp_enabled, plan, is_active, created_at, updated_at
         FROM users WHERE id=$1`, id)

	var user models.User
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash,
		&user.TOTPSecret, &user.TOTPEnabled, &user.Plan, &user.IsActive,
		&user.CreatedAt, &user.UpdatedAt)
	return &user, err
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT id, name, email, password_hash, totp_secret, totp_enabled, plan, is_active, created_at, updated_at
         FROM users WHERE email=$1`, email)

	var user models.User
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash,
		&user.TOTPSecret, &user.TOTPEnabled, &user.Plan, &user.IsActive,
		&user.CreatedAt, &user.UpdatedAt)
	return &user, err
}

func (r *UserRepository) UpdatePassword(ctx context.Context, userID int, passwordHash string) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE users SET password_hash=$1, updated_at=CURRENT_TIMESTAMP WHERE id=$2`,
		passwordHash, userID)
	return err
}

func (r *UserRepository) UpdatePlan(ctx context.Context, userID int, plan string) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE users SET plan=$1, updated_at=CURRENT_TIMESTAMP WHERE id=$2`,
		plan, userID)
	return err
}

// SetTOTPSecret stores a pending secret; enabled stays false until the
// first code is verified
func (r *UserRepository) SetTOTPSecret(ctx context.Context, userID int, secret string) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE users SET totp_secret=$1, totp_enabled=FALSE, updated_at=CURRENT_TIMESTAMP WHERE id=$2`,
		secret, userID)
	return err
}

func (r *UserRepository) SetTOTPEnabled(ctx context.Context, userID int, enabled bool) error {
	if enabled {
		_, err := r.DB.Exec(ctx,
			`UPDATE users SET totp_enabled=TRUE, updated_at=CURRENT_TIMESTAMP WHERE id=$1`, userID)
		return err
	}
	_, err := r.DB.Exec(ctx,
		`UPDATE users SET totp_enabled=FALSE, totp_secret='', updated_at=CURRENT_TIMESTAMP WHERE id=$1`, userID)
	return err
}
