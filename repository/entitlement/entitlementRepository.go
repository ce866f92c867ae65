// Package entitlementrepo is the append-only transactions table. Rows are
// never updated or deleted here; reversals are new rows.
package entitlementrepo

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/lena-biju/library-managment/model"
	"github.com/lena-biju/library-managment/util/database"
)

var (
	ErrNotFound      = errors.New("ledger entry not found")
	ErrQuotaExceeded = errors.New("rental quota exceeded")
)

type Repo interface {
	// Append writes the entry inside one transaction: the user row is
	// locked, the rental quota is checked against unexpired rentals, and a
	// duplicate payment_ref returns the already-recorded entry instead of
	// a second row.
	Append(ctx context.Context, t *model.Transaction, rentalLimit int) (*model.Transaction, error)
	ByPaymentRef(ctx context.Context, ref string) (*model.Transaction, error)
	ByID(ctx context.Context, id int64) (*model.Transaction, error)
	ListForUser(ctx context.Context, userID int64) ([]model.Transaction, error)
	ListForUserBook(ctx context.Context, userID, bookID int64) ([]model.Transaction, error)
}

type repo struct{ db *database.DB }

func New(db *database.DB) Repo { return &repo{db} }

const txCols = `id, user_id, book_id, kind, amount, payment_ref, reversed_id, created_at, expires_at`

func scanTx(row pgx.Row) (*model.Transaction, error) {
	t := &model.Transaction{}
	err := row.Scan(&t.ID, &t.UserID, &t.BookID, &t.Kind, &t.Amount,
		&t.PaymentRef, &t.ReversedID, &t.CreatedAt, &t.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *repo) Append(ctx context.Context, t *model.Transaction, rentalLimit int) (*model.Transaction, error) {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// Serialize concurrent grants for this user so the quota check cannot
	// race with another in-flight rental.
	if _, err := tx.Exec(ctx, `SELECT id FROM users WHERE id=$1 FOR UPDATE`, t.UserID); err != nil {
		return nil, err
	}

	if t.Kind == model.TxRental {
		var held int
		err := tx.QueryRow(ctx, `
			SELECT count(*)
			FROM transactions r
			WHERE r.user_id = $1
			  AND r.kind = 'rental'
			  AND r.expires_at > now()
			  AND NOT EXISTS (
				SELECT 1 FROM transactions v
				WHERE v.kind = 'reversal' AND v.reversed_id = r.id
			  )`, t.UserID).Scan(&held)
		if err != nil {
			return nil, err
		}
		if held >= rentalLimit {
			return nil, ErrQuotaExceeded
		}
	}

	row := tx.QueryRow(ctx, `
		INSERT INTO transactions(user_id, book_id, kind, amount, payment_ref, reversed_id, expires_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING `+txCols,
		t.UserID, t.BookID, t.Kind, t.Amount, t.PaymentRef, t.ReversedID, t.ExpiresAt)

	out, err := scanTx(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			// Lost the payment_ref race: the grant already exists.
			return r.ByPaymentRef(ctx, t.PaymentRef)
		}
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repo) ByPaymentRef(ctx context.Context, ref string) (*model.Transaction, error) {
	return scanTx(r.db.Pool.QueryRow(ctx, `
		SELECT `+txCols+` FROM transactions WHERE payment_ref=$1`, ref))
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.Transaction, error) {
	return scanTx(r.db.Pool.QueryRow(ctx, `
		SELECT `+txCols+` FROM transactions WHERE id=$1`, id))
}

func (r *repo) ListForUser(ctx context.Context, userID int64) ([]model.Transaction, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+txCols+`
		FROM transactions
		WHERE user_id=$1
		ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

func (r *repo) ListForUserBook(ctx context.Context, userID, bookID int64) ([]model.Transaction, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+txCols+`
		FROM transactions
		WHERE user_id=$1 AND book_id=$2
		ORDER BY created_at ASC, id ASC`, userID, bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

func collect(rows pgx.Rows) ([]model.Transaction, error) {
	var out []model.Transaction
	for rows.Next() {
		var t model.Transaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.BookID, &t.Kind, &t.Amount,
			&t.PaymentRef, &t.ReversedID, &t.CreatedAt, &t.ExpiresAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
