package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/username/claimfolio/src/models"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) CreateCompany(ctx context.Context, name string) (*models.Company, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO companies (name) VALUES (?)`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create company %s: %w", name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &models.Company{ID: id, Name: name}, nil
}

// CreateUser inserts a new user and sets its id.
func (r *UserRepository) CreateUser(ctx context.Context, u *models.User) error {
	if u.Role == "" {
		u.Role = models.RoleFinalUser
	}
	res, err := r.db.ExecContext(ctx, `INSERT INTO users
		(email, first_name, last_name, role, company_id, address, country, phone_number)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		u.Email, u.FirstName, u.LastName, string(u.Role), nullableID(u.CompanyID), u.Address, u.Country, u.PhoneNumber)
	if err != nil {
		return fmt.Errorf("failed to create user %s: %w", u.Email, err)
	}
	u.ID, err = res.LastInsertId()
	return err
}

func (r *UserRepository) GetUser(ctx context.Context, id int64) (*models.User, error) {
	users, err := r.GetUsers(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	u, ok := users[id]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	return &u, nil
}

// GetUsers loads several users at once, keyed by id. Unknown ids are absent.
func (r *UserRepository) GetUsers(ctx context.Context, ids []int64) (map[int64]models.User, error) {
	users := make(map[int64]models.User, len(ids))
	if len(ids) == 0 {
		return users, nil
	}
	query := `SELECT id, email, first_name, last_name, role, company_id, address, country, phone_number
		FROM users WHERE id IN (` + placeholders(len(ids)) + `)`
	rows, err := r.db.QueryContext(ctx, query, int64Args(ids)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			u         models.User
			role      string
			companyID sql.NullInt64
		)
		if err := rows.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &role, &companyID, &u.Address, &u.Country, &u.PhoneNumber); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		u.Role = models.ParseRole(role)
		u.CompanyID = companyID.Int64
		users[u.ID] = u
	}
	if err := rows.Err(); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	return users, nil
}
