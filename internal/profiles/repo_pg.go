package profiles

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Get(ctx context.Context, userID string) (Profile, error) {
	const query = `
SELECT user_id, username, full_name, headline, avatar_key, created_at, updated_at
FROM profiles
WHERE user_id = $1
LIMIT 1`
	var p Profile
	var avatarKey sql.NullString
	err := r.DB.QueryRowContext(ctx, query, userID).Scan(
		&p.UserID,
		&p.Username,
		&p.FullName,
		&p.Headline,
		&avatarKey,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Profile{}, ErrNotFound
		}
		return Profile{}, err
	}
	if avatarKey.Valid {
		p.AvatarKey = avatarKey.String
	}
	return p, nil
}

func (r *PGRepo) Save(ctx context.Context, p Profile) error {
	const query = `
INSERT INTO profiles (user_id, username, full_name, headline, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (user_id) DO UPDATE SET
  username = EXCLUDED.username,
  full_name = EXCLUDED.full_name,
  headline = EXCLUDED.headline,
  updated_at = EXCLUDED.updated_at`
	_, err := r.DB.ExecContext(ctx, query, p.UserID, p.Username, p.FullName, p.Headline, p.CreatedAt, p.UpdatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrUsernameTaken
	}
	return err
}

func (r *PGRepo) UsernameTaken(ctx context.Context, username, exceptUserID string) (bool, error) {
	var taken bool
	err := r.DB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM profiles WHERE username = $1 AND user_id <> $2)`,
		username, exceptUserID).Scan(&taken)
	return taken, err
}

func (r *PGRepo) SetAvatar(ctx context.Context, userID, key string, at time.Time) error {
	result, err := r.DB.ExecContext(ctx,
		`UPDATE profiles SET avatar_key = $2, updated_at = $3 WHERE user_id = $1`,
		userID, nullableString(key), at)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullableString(v string) sql.NullString {
	if v == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: v, Valid: true}
}
