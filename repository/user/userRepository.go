package userrepo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/lena-biju/library-managment/model"
	"github.com/lena-biju/library-managment/util/database"
)

var ErrNotFound = errors.New("user not found")

type Repo interface {
	Create(ctx context.Context, u *model.User) error
	ByPhone(ctx context.Context, phone string) (*model.User, error)
	ByID(ctx context.Context, id int64) (*model.User, error)
	SetRole(ctx context.Context, id int64, role model.Role) error
	SetPlan(ctx context.Context, id int64, plan model.Plan) error
	EnsureLibrarian(ctx context.Context, u *model.User) error
}

type repo struct{ db *database.DB }

func New(db *database.DB) Repo { return &repo{db} }

func (r *repo) Create(ctx context.Context, u *model.User) error {
	return r.db.Pool.QueryRow(ctx, `
		INSERT INTO users(name, phone, email, password_hash, role, plan)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id, created_at`,
		u.Name, u.Phone, u.Email, u.PasswordHash, u.Role, u.Plan,
	).Scan(&u.ID, &u.CreatedAt)
}

func (r *repo) ByPhone(ctx context.Context, phone string) (*model.User, error) {
	u := &model.User{}
	err := r.db.Pool.QueryRow(ctx, `
        SELECT id, name, phone, email, password_hash, role, plan, created_at
        FROM users
        WHERE phone = $1`,
		phone,
	).Scan(&u.ID, &u.Name, &u.Phone, &u.Email, &u.PasswordHash, &u.Role, &u.Plan, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.User, error) {
	u := &model.User{}
	err := r.db.Pool.QueryRow(ctx, `
        SELECT id, name, phone, email, password_hash, role, plan, created_at
        FROM users
        WHERE id = $1`,
		id,
	).Scan(&u.ID, &u.Name, &u.Phone, &u.Email, &u.PasswordHash, &u.Role, &u.Plan, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *repo) SetRole(ctx context.Context, id int64, role model.Role) error {
	tag, err := r.db.Pool.Exec(ctx, `UPDATE users SET role=$2 WHERE id=$1`, id, role)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repo) SetPlan(ctx context.Context, id int64, plan model.Plan) error {
	tag, err := r.db.Pool.Exec(ctx, `UPDATE users SET plan=$2 WHERE id=$1`, id, plan)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// EnsureLibrarian provisions the bootstrap admin identity. Safe to run on
// every startup; an existing row with the same phone is left untouched.
func (r *repo) EnsureLibrarian(ctx context.Context, u *model.User) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO users(name, phone, email, password_hash, role, plan)
		VALUES ($1,$2,$3,$4,'librarian','premium')
		ON CONFLICT (phone) DO NOTHING`,
		u.Name, u.Phone, u.Email, u.PasswordHash,
	)
	return err
}
