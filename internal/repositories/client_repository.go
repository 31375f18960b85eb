package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"ledgerly-backend/internal/models"
)

type ClientRepository struct {
	DB *pgxpool.Pool
}

func NewClientRepository(db *pgxpool.Pool) *ClientRepository {
	return &ClientRepository{DB: db}
}

func (r *ClientRepository) Create(ctx context.Context, c *models.Client) error {
	return r.DB.QueryRow(ctx,
		`INSERT INTO clients(user_id, name, email, phone, address, company, tax_id, notes)
         VALUES($1, $2, $3, $4, $5, $6, $7, $8)
         RETURNING id, created_at, updated_at`,
		c.UserID, c.Name, c.Email, c.Phone, c.Address, c.Company, c.TaxID, c.Notes,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

// Get returns a client only when it belongs to userID
func (r *ClientRepository) Get(ctx context.Context, userID, id int) (*models.Client, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT id, user_id, name, email, phone, address, company, tax_id, notes, created_at, updated_at
         FROM clients WHERE id=$1 AND user_id=$2`, id, userID)

	var c models.Client
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Email, &c.Phone, &c.Address,
		&c.Company, &c.TaxID, &c.Notes, &c.CreatedAt, &c.UpdatedAt)
	return &c, err
}

func (r *ClientRepository) List(ctx context.Context, userID int, search string) ([]*models.Client, error) {
	query := `SELECT id, user_id, name, email, phone, address, company, tax_id, notes, created_at, updated_at
              FROM clients WHERE user_id=$1`
	args := []interface{}{userID}

	if search != "" {
		query += ` AND (name ILIKE $2 OR email ILIKE $2 OR company ILIKE $2)`
		args = append(args, "%"+search+"%")
	}
	query += ` ORDER BY name ASC`

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	clients := []*models.Client{}
	for rows.Next() {
		var c models.Client
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Email, &c.Phone, &c.Address,
			&c.Company, &c.TaxID, &c.Notes, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		clients = append(clients, &c)
	}
	return clients, rows.Err()
}

func (r *ClientRepository) Update(ctx context.Context, c *models.Client) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE clients SET name=$1, email=$2, phone=$3, address=$4, company=$5, tax_id=$6, notes=$7, updated_at=CURRENT_TIMESTAMP
         WHERE id=$8 AND user_id=$9`,
		c.Name, c.Email, c.Phone, c.Address, c.Company, c.TaxID, c.Notes, c.ID, c.UserID)
	return err
}

func (r *ClientRepository) Delete(ctx context.Context, userID, id int) (bool, error) {
	tag, err := r.DB.Exec(ctx,
		`DELETE FROM clients WHERE id=$1 AND user_id=$2`, id, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
