package branding

import (
	"context"
	"database/sql"
	"errors"
)

type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Get(ctx context.Context, userID string) (Branding, error) {
	const query = `
SELECT user_id, primary_color, secondary_color, font_family, logo_key, created_at, updated_at
FROM custom_branding
WHERE user_id = $1`
	var b Branding
	var logo sql.NullString
	err := r.DB.QueryRowContext(ctx, query, userID).Scan(
		&b.UserID, &b.PrimaryColor, &b.SecondaryColor, &b.FontFamily, &logo, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Branding{}, ErrNotFound
	}
	if err != nil {
		return Branding{}, err
	}
	b.LogoKey = logo.String
	return b, nil
}

// Save upserts the row keyed by user_id.
func (r *PGRepo) Save(ctx context.Context, b Branding) error {
	const query = `
INSERT INTO custom_branding (user_id, primary_color, secondary_color, font_family, logo_key, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (user_id) DO UPDATE SET
    primary_color = EXCLUDED.primary_color,
    secondary_color = EXCLUDED.secondary_color,
    font_family = EXCLUDED.font_family,
    logo_key = EXCLUDED.logo_key,
    updated_at = EXCLUDED.updated_at`
	logo := sql.NullString{String: b.LogoKey, Valid: b.LogoKey != ""}
	_, err := r.DB.ExecContext(ctx, query, b.UserID, b.PrimaryColor, b.SecondaryColor, b.FontFamily, logo, b.CreatedAt, b.UpdatedAt)
	return err
}
