package resumes

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const selectColumns = `id, user_id, title, template, data, is_default, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResume(row rowScanner) (Resume, error) {
	var r Resume
	var raw []byte
	if err := row.Scan(&r.ID, &r.UserID, &r.Title, &r.Template, &raw, &r.IsDefault, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return Resume{}, err
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &r.Data); err != nil {
			return Resume{}, fmt.Errorf("decode resume data: %w", err)
		}
	}
	r.Data.Normalize()
	return r, nil
}

// Create inserts a new résumé.
func (r *PGRepo) Create(ctx context.Context, res Resume) error {
	const query = `
INSERT INTO resumes (id, user_id, title, template, data, is_default, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	data, err := json.Marshal(res.Data)
	if err != nil {
		return fmt.Errorf("encode resume data: %w", err)
	}
	_, err = r.DB.ExecContext(ctx, query,
		res.ID,
		res.UserID,
		res.Title,
		res.Template,
		data,
		res.IsDefault,
		res.CreatedAt,
		res.UpdatedAt,
	)
	return err
}

// Get fetches a résumé by id for a user.
func (r *PGRepo) Get(ctx context.Context, userID, id string) (Resume, error) {
	query := `SELECT ` + selectColumns + ` FROM resumes WHERE user_id = $1 AND id = $2`
	res, err := scanResume(r.DB.QueryRowContext(ctx, query, userID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Resume{}, ErrNotFound
	}
	return res, err
}

// List returns a user's résumés, most recently updated first.
func (r *PGRepo) List(ctx context.Context, userID string, limit, offset int) ([]Resume, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	query := `SELECT ` + selectColumns + `
FROM resumes
WHERE user_id = $1
ORDER BY updated_at DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Resume{}
	for rows.Next() {
		res, err := scanResume(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

// Update writes the mutable fields, guarded by unmodifiedSince.
func (r *PGRepo) Update(ctx context.Context, res Resume, unmodifiedSince *time.Time) error {
	const query = `
UPDATE resumes
SET title = $1, template = $2, data = $3, updated_at = $4
WHERE user_id = $5 AND id = $6 AND ($7::timestamptz IS NULL OR updated_at <= $7)`

	data, err := json.Marshal(res.Data)
	if err != nil {
		return fmt.Errorf("encode resume data: %w", err)
	}
	var guard sql.NullTime
	if unmodifiedSince != nil {
		guard = sql.NullTime{Time: *unmodifiedSince, Valid: true}
	}

	result, err := r.DB.ExecContext(ctx, query, res.Title, res.Template, data, res.UpdatedAt, res.UserID, res.ID, guard)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n > 0 {
		return nil
	}
	return r.missOrConflict(ctx, res.UserID, res.ID)
}

func (r *PGRepo) missOrConflict(ctx context.Context, userID, id string) error {
	var exists bool
	err := r.DB.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM resumes WHERE user_id = $1 AND id = $2)`, userID, id).Scan(&exists)
	if err != nil {
		return err
	}
	if exists {
		return ErrConflict
	}
	return ErrNotFound
}

// SetDefault marks id as the user's default and clears the flag on the rest.
func (r *PGRepo) SetDefault(ctx context.Context, userID, id string, at time.Time) error {
	const query = `
UPDATE resumes
SET is_default = (id = $2), updated_at = CASE WHEN id = $2 THEN $3 ELSE updated_at END
WHERE user_id = $1 AND (id = $2 OR is_default)`

	result, err := r.DB.ExecContext(ctx, query, userID, id, at)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a résumé.
func (r *PGRepo) Delete(ctx context.Context, userID, id string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM resumes WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns how many résumés a user owns.
func (r *PGRepo) Count(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM resumes WHERE user_id = $1`, userID).Scan(&n)
	return n, err
}

var _ Repo = (*PGRepo)(nil)
