package certificates

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const selectColumns = `id, user_id, name, issuer, issue_date, expiry_date, credential_id, credential_url, file_key, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCertificate(row rowScanner) (Certificate, error) {
	var c Certificate
	var issue, expiry sql.NullTime
	var fileKey sql.NullString
	if err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Issuer, &issue, &expiry,
		&c.CredentialID, &c.CredentialURL, &fileKey, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return Certificate{}, err
	}
	if issue.Valid {
		t := issue.Time
		c.IssueDate = &t
	}
	if expiry.Valid {
		t := expiry.Time
		c.ExpiryDate = &t
	}
	c.FileKey = fileKey.String
	return c, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// Create inserts a certificate.
func (r *PGRepo) Create(ctx context.Context, c Certificate) error {
	const query = `
INSERT INTO certificates (id, user_id, name, issuer, issue_date, expiry_date, credential_id, credential_url, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.DB.ExecContext(ctx, query,
		c.ID, c.UserID, c.Name, c.Issuer, nullTime(c.IssueDate), nullTime(c.ExpiryDate),
		c.CredentialID, c.CredentialURL, c.CreatedAt, c.UpdatedAt)
	return err
}

func (r *PGRepo) Get(ctx context.Context, userID, id string) (Certificate, error) {
	query := `SELECT ` + selectColumns + ` FROM certificates WHERE user_id = $1 AND id = $2`
	c, err := scanCertificate(r.DB.QueryRowContext(ctx, query, userID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Certificate{}, ErrNotFound
	}
	return c, err
}

// List returns certificates, most recently issued first.
func (r *PGRepo) List(ctx context.Context, userID string, limit, offset int) ([]Certificate, error) {
	query := `SELECT ` + selectColumns + ` FROM certificates WHERE user_id = $1
ORDER BY issue_date DESC NULLS LAST, created_at DESC
LIMIT $2 OFFSET $3`
	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Certificate
	for rows.Next() {
		c, err := scanCertificate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PGRepo) Update(ctx context.Context, c Certificate) error {
	const query = `
UPDATE certificates
SET name = $3, issuer = $4, issue_date = $5, expiry_date = $6, credential_id = $7, credential_url = $8, updated_at = $9
WHERE user_id = $1 AND id = $2`
	result, err := r.DB.ExecContext(ctx, query, c.UserID, c.ID, c.Name, c.Issuer,
		nullTime(c.IssueDate), nullTime(c.ExpiryDate), c.CredentialID, c.CredentialURL, c.UpdatedAt)
	return affected(result, err)
}

func (r *PGRepo) SetFile(ctx context.Context, userID, id, key string, at time.Time) error {
	result, err := r.DB.ExecContext(ctx,
		`UPDATE certificates SET file_key = $3, updated_at = $4 WHERE user_id = $1 AND id = $2`,
		userID, id, key, at)
	return affected(result, err)
}

func (r *PGRepo) Delete(ctx context.Context, userID, id string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM certificates WHERE user_id = $1 AND id = $2`, userID, id)
	return affected(result, err)
}

func (r *PGRepo) Count(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM certificates WHERE user_id = $1`, userID).Scan(&n)
	return n, err
}

func affected(result sql.Result, err error) error {
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
