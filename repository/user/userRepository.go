package userrepo

import (
	"context"
	"database/sql"

	"github.com/sumaro2101/EasyLibrary/model"
)

type Repo interface {
	Create(ctx context.Context, u *model.User) error
	ByEmail(ctx context.Context, email string) (*model.User, error)
	ByID(ctx context.Context, id int64) (*model.User, error)
	Update(ctx context.Context, u *model.User) error
	Deactivate(ctx context.Context, id int64) error
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

const userColumns = `id, username, first_name, last_name, email, phone,
	password_hash, is_librarian, is_superuser, is_active, created_at`

func scanUser(row *sql.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Username, &u.FirstName, &u.LastName, &u.Email,
		&u.Phone, &u.PasswordHash, &u.IsLibrarian, &u.IsSuperuser,
		&u.IsActive, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repo) Create(ctx context.Context, u *model.User) error {
	const q = `
		INSERT INTO users (username, first_name, last_name, email, phone, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, q,
		u.Username, u.FirstName, u.LastName, u.Email, u.Phone, u.PasswordHash,
	).Scan(&u.ID, &u.CreatedAt)
}

func (r *repo) ByEmail(ctx context.Context, email string) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE email = $1 AND is_active`
	u, err := scanUser(r.db.QueryRowContext(ctx, q, email))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return u, err
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(r.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return u, err
}

func (r *repo) Update(ctx context.Context, u *model.User) error {
	const q = `
		UPDATE users
		SET first_name = $2, last_name = $3, phone = $4, password_hash = $5
		WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, u.ID, u.FirstName, u.LastName, u.Phone, u.PasswordHash)
	return err
}

func (r *repo) Deactivate(ctx context.Context, id int64) error {
	const q = `UPDATE users SET is_active = FALSE WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}
