package applications

import (
	"context"
	"database/sql"
	"errors"
)

type PGRepo struct {
	DB *sql.DB
}

const selectColumns = `id, user_id, company, position, status, job_url, notes, resume_id, applied_at, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanApplication(row rowScanner) (Application, error) {
	var a Application
	var resumeID sql.NullString
	if err := row.Scan(&a.ID, &a.UserID, &a.Company, &a.Position, &a.Status, &a.JobURL, &a.Notes,
		&resumeID, &a.AppliedAt, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return Application{}, err
	}
	a.ResumeID = resumeID.String
	return a, nil
}

func nullable(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}

func (r *PGRepo) Create(ctx context.Context, a Application) error {
	const query = `
INSERT INTO job_applications (id, user_id, company, position, status, job_url, notes, resume_id, applied_at, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.DB.ExecContext(ctx, query, a.ID, a.UserID, a.Company, a.Position, string(a.Status),
		a.JobURL, a.Notes, nullable(a.ResumeID), a.AppliedAt, a.CreatedAt, a.UpdatedAt)
	return err
}

func (r *PGRepo) Get(ctx context.Context, userID, id string) (Application, error) {
	query := `SELECT ` + selectColumns + ` FROM job_applications WHERE user_id = $1 AND id = $2`
	a, err := scanApplication(r.DB.QueryRowContext(ctx, query, userID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Application{}, ErrNotFound
	}
	return a, err
}

// List returns applications newest first, optionally filtered by status.
func (r *PGRepo) List(ctx context.Context, userID string, f ListFilter) ([]Application, error) {
	query := `SELECT ` + selectColumns + ` FROM job_applications
WHERE user_id = $1 AND ($2 = '' OR status = $2)
ORDER BY applied_at DESC, created_at DESC
LIMIT $3 OFFSET $4`
	rows, err := r.DB.QueryContext(ctx, query, userID, string(f.Status), f.Limit, f.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Application
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *PGRepo) Update(ctx context.Context, a Application) error {
	const query = `
UPDATE job_applications
SET company = $3, position = $4, status = $5, job_url = $6, notes = $7, resume_id = $8, applied_at = $9, updated_at = $10
WHERE user_id = $1 AND id = $2`
	result, err := r.DB.ExecContext(ctx, query, a.UserID, a.ID, a.Company, a.Position, string(a.Status),
		a.JobURL, a.Notes, nullable(a.ResumeID), a.AppliedAt, a.UpdatedAt)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) Delete(ctx context.Context, userID, id string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM job_applications WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) CountByStatus(ctx context.Context, userID string) (map[Status]int, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM job_applications WHERE user_id = $1 GROUP BY status`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[Status]int, len(Statuses))
	for _, s := range Statuses {
		out[s] = 0
	}
	for rows.Next() {
		var s Status
		var n int
		if err := rows.Scan(&s, &n); err != nil {
			return nil, err
		}
		out[s] = n
	}
	return out, rows.Err()
}
