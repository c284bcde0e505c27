package repository // repository defines data access for the settings singleton

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/openday-seat-reservation/internal/model"
)

// SettingsRepo reads and overwrites the singleton settings row.
type SettingsRepo struct {
	db *sql.DB
}

// NewSettingsRepo constructs a SettingsRepo with the given DB handle.
func NewSettingsRepo(db *sql.DB) *SettingsRepo {
	return &SettingsRepo{db: db}
}

// Get returns the settings row with id 1 or ErrSettingsNotFound.
func (r *SettingsRepo) Get(ctx context.Context) (*model.Settings, error) {
	const q = `SELECT id, num_rows, num_cols, logo_url, color_primary
	           FROM settings WHERE id = ?`
	var (
		s            model.Settings
		logoURL      sql.NullString
		colorPrimary sql.NullString
	)
	err := r.db.QueryRowContext(ctx, q, model.SettingsID).
		Scan(&s.ID, &s.NumRows, &s.NumCols, &logoURL, &colorPrimary)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSettingsNotFound
		}
		return nil, err
	}
	s.LogoURL = nullStringPtr(logoURL)
	s.ColorPrimary = nullStringPtr(colorPrimary)
	return &s, nil
}

// Update overwrites the settings row unconditionally. Values are
// persisted exactly as given.
func (r *SettingsRepo) Update(ctx context.Context, s model.Settings) error {
	const q = `UPDATE settings
	           SET num_rows = ?, num_cols = ?, logo_url = ?, color_primary = ?
	           WHERE id = ?`
	_, err := r.db.ExecContext(ctx, q, s.NumRows, s.NumCols, s.LogoURL, s.ColorPrimary, model.SettingsID)
	return err
}

func nullStringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}
