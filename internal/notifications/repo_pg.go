package notifications

import (
	"context"
	"database/sql"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a notification.
func (r *PGRepo) Create(ctx context.Context, n Notification) error {
	_, err := r.DB.ExecContext(ctx, `
INSERT INTO notifications (id, user_id, kind, title, body, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`,
		n.ID, n.UserID, n.Kind, n.Title, n.Body, n.CreatedAt)
	return err
}

// List returns notifications newest first.
func (r *PGRepo) List(ctx context.Context, userID string, f ListFilter) ([]Notification, error) {
	rows, err := r.DB.QueryContext(ctx, `
SELECT id, user_id, kind, title, body, read_at, created_at
FROM notifications
WHERE user_id = $1 AND (NOT $2 OR read_at IS NULL)
ORDER BY created_at DESC
LIMIT $3 OFFSET $4`, userID, f.UnreadOnly, f.Limit, f.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		var n Notification
		var readAt sql.NullTime
		if err := rows.Scan(&n.ID, &n.UserID, &n.Kind, &n.Title, &n.Body, &readAt, &n.CreatedAt); err != nil {
			return nil, err
		}
		if readAt.Valid {
			t := readAt.Time
			n.ReadAt = &t
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkRead sets read_at once; re-marking keeps the first timestamp.
func (r *PGRepo) MarkRead(ctx context.Context, userID, id string, at time.Time) error {
	result, err := r.DB.ExecContext(ctx, `
UPDATE notifications SET read_at = COALESCE(read_at, $3) WHERE user_id = $1 AND id = $2`, userID, id, at)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkAllRead marks every unread notification and returns how many changed.
func (r *PGRepo) MarkAllRead(ctx context.Context, userID string, at time.Time) (int, error) {
	result, err := r.DB.ExecContext(ctx, `
UPDATE notifications SET read_at = $2 WHERE user_id = $1 AND read_at IS NULL`, userID, at)
	if err != nil {
		return 0, err
	}
	n, err := result.RowsAffected()
	return int(n), err
}

// CountUnread returns the unread badge count.
func (r *PGRepo) CountUnread(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND read_at IS NULL`, userID).Scan(&n)
	return n, err
}
