package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"subvention/internal/models"
)

// CreateSubvention inserts an active subvention. Used by seeding and tests.
func (d *DB) CreateSubvention(ctx context.Context, s *models.Subvention) error {
	s.Active = true
	return d.Pool.QueryRow(ctx, `
		INSERT INTO subventions (name, active)
		VALUES ($1, TRUE)
		RETURNING id, created_at
	`, s.Name).Scan(&s.ID, &s.CreatedAt)
}

// GetSubventionByID retrieves a subvention by its ID.
func (d *DB) GetSubventionByID(ctx context.Context, id int64) (*models.Subvention, error) {
	var s models.Subvention
	err := d.Pool.QueryRow(ctx, `
		SELECT id, name, active, deactivation_reason, deactivated_at, created_at
		FROM subventions
		WHERE id = $1
	`, id).Scan(&s.ID, &s.Name, &s.Active, &s.DeactivationReason, &s.DeactivatedAt, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSubventionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}
