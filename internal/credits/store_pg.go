package credits

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

type pgStore struct {
	DB *sql.DB
}

// NewPGStore constructs a Postgres-backed credit store.
func NewPGStore(db *sql.DB) *pgStore {
	return &pgStore{DB: db}
}

func (s *pgStore) Get(ctx context.Context, userID string, now time.Time) (Balance, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return Balance{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	b, err := s.lockAndEnsure(ctx, tx, userID, now)
	if err != nil {
		return Balance{}, err
	}
	if err = tx.Commit(); err != nil {
		return Balance{}, err
	}
	return b, nil
}

func (s *pgStore) Apply(ctx context.Context, userID string, amount int, reason string, now time.Time) (Balance, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return Balance{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	b, err := s.lockAndEnsure(ctx, tx, userID, now)
	if err != nil {
		return Balance{}, err
	}
	if b.Balance+amount < 0 {
		err = ErrInsufficientCredits
		return Balance{}, err
	}
	b.Balance += amount
	b.UpdatedAt = now

	if _, err = tx.ExecContext(ctx, `
UPDATE user_credits SET balance = $1, updated_at = $2 WHERE user_id = $3`, b.Balance, now, userID); err != nil {
		return Balance{}, err
	}
	if _, err = tx.ExecContext(ctx, `
INSERT INTO credit_transactions (id, user_id, amount, reason, created_at) VALUES ($1, $2, $3, $4, $5)`,
		uuid.NewString(), userID, amount, reason, now); err != nil {
		return Balance{}, err
	}
	if err = tx.Commit(); err != nil {
		return Balance{}, err
	}
	return b, nil
}

func (s *pgStore) Transactions(ctx context.Context, userID string, limit, offset int) ([]Transaction, error) {
	rows, err := s.DB.QueryContext(ctx, `
SELECT id, user_id, amount, reason, created_at
FROM credit_transactions
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Transaction
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Amount, &t.Reason, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *pgStore) lockAndEnsure(ctx context.Context, tx *sql.Tx, userID string, now time.Time) (Balance, error) {
	b, err := selectForUpdate(ctx, tx, userID)
	if !errors.Is(err, sql.ErrNoRows) {
		return b, err
	}
	// A missing row cannot be locked, so a concurrent first request may insert it first.
	def := defaultBalance(userID, now)
	if _, err := tx.ExecContext(ctx, `
INSERT INTO user_credits (user_id, balance, plan, updated_at) VALUES ($1, $2, $3, $4)
ON CONFLICT (user_id) DO NOTHING`,
		userID, def.Balance, def.Plan, def.UpdatedAt); err != nil {
		return Balance{}, err
	}
	return selectForUpdate(ctx, tx, userID)
}

func selectForUpdate(ctx context.Context, tx *sql.Tx, userID string) (Balance, error) {
	b := Balance{UserID: userID}
	row := tx.QueryRowContext(ctx, `
SELECT balance, plan, updated_at FROM user_credits WHERE user_id = $1 FOR UPDATE`, userID)
	if err := row.Scan(&b.Balance, &b.Plan, &b.UpdatedAt); err != nil {
		return Balance{}, err
	}
	return b, nil
}
