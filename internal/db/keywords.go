package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"subvention/internal/models"
	"subvention/internal/validation"
)

// keywordColumns is the standard column list for exclusion keyword queries.
// The trailing column is the live exclusion count; the stored
// exclusion_count is never used for display.
const keywordColumns = `k.id, k.name, k.description, k.active, k.exclusion_count, k.created_at, k.updated_at,
	(SELECT COUNT(*) FROM announcements a
		WHERE a.status = 'excluded' AND a.exclusion_keywords @> ARRAY[k.name]) AS live_exclusion_count`

// scanKeyword scans a row into an ExclusionKeyword struct.
func scanKeyword(row pgx.Row) (*models.ExclusionKeyword, error) {
	var k models.ExclusionKeyword
	err := row.Scan(
		&k.ID,
		&k.Name,
		&k.Description,
		&k.Active,
		&k.ExclusionCount,
		&k.CreatedAt,
		&k.UpdatedAt,
		&k.LiveExclusionCount,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrKeywordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &k, nil
}

// scanKeywords scans multiple rows into a slice of ExclusionKeywords.
func scanKeywords(rows pgx.Rows) ([]models.ExclusionKeyword, error) {
	defer rows.Close()

	var keywords []models.ExclusionKeyword
	for rows.Next() {
		var k models.ExclusionKeyword
		if err := rows.Scan(
			&k.ID,
			&k.Name,
			&k.Description,
			&k.Active,
			&k.ExclusionCount,
			&k.CreatedAt,
			&k.UpdatedAt,
			&k.LiveExclusionCount,
		); err != nil {
			return nil, err
		}
		keywords = append(keywords, k)
	}

	return keywords, rows.Err()
}

// normalizeKeyword trims and validates an exclusion keyword name.
func normalizeKeyword(name string) (string, error) {
	keyword := validation.NormalizeKeyword(name)
	if keyword == "" {
		return "", ErrKeywordRequired
	}
	if valid, msg := validation.ValidateKeyword(keyword); !valid {
		return "", fmt.Errorf("%w: %s", ErrKeywordInvalid, msg)
	}
	return keyword, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// registerKeyword inserts a new active keyword or reactivates the newest
// inactive row with the same name, reusing its id. An active row with the
// same name yields ErrKeywordActive.
func registerKeyword(ctx context.Context, q querier, name, description string) (int64, error) {
	var id int64
	var active bool
	err := q.QueryRow(ctx, `
		SELECT id, active FROM exclusion_keywords
		WHERE name = $1
		ORDER BY active DESC, id DESC
		LIMIT 1
		FOR UPDATE
	`, name).Scan(&id, &active)

	switch {
	case errors.Is(err, pgx.ErrNoRows):
		err = q.QueryRow(ctx, `
			INSERT INTO exclusion_keywords (name, description, active, exclusion_count)
			VALUES ($1, $2, TRUE, 0)
			RETURNING id
		`, name, nullIfEmpty(description)).Scan(&id)
		if isUniqueViolation(err) {
			return 0, ErrKeywordActive
		}
		return id, err
	case err != nil:
		return 0, err
	case active:
		return 0, ErrKeywordActive
	}

	_, err = q.Exec(ctx, `
		UPDATE exclusion_keywords
		SET active = TRUE, description = $2, exclusion_count = 0, updated_at = NOW()
		WHERE id = $1
	`, id, nullIfEmpty(description))
	if isUniqueViolation(err) {
		return 0, ErrKeywordActive
	}
	return id, err
}

// deactivateKeyword soft-deletes an active keyword and returns its name.
func deactivateKeyword(ctx context.Context, q querier, id int64) (string, error) {
	var name string
	err := q.QueryRow(ctx, `
		UPDATE exclusion_keywords
		SET active = FALSE, exclusion_count = 0, updated_at = NOW()
		WHERE id = $1 AND active
		RETURNING name
	`, id).Scan(&name)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrKeywordNotFound
	}
	return name, err
}

// RegisterKeyword registers an exclusion keyword without reclassifying any
// announcement. ApplyExclusionKeyword is the workflow entry point; this is
// the registry operation on its own.
func (d *DB) RegisterKeyword(ctx context.Context, name, description string) (int64, error) {
	keyword, err := normalizeKeyword(name)
	if err != nil {
		return 0, err
	}

	var id int64
	err = d.InTx(ctx, "register keyword", func(ctx context.Context, tx pgx.Tx) error {
		id, err = registerKeyword(ctx, tx, keyword, description)
		return err
	})
	return id, err
}

// DeactivateKeyword soft-deletes a keyword without restoring announcements.
func (d *DB) DeactivateKeyword(ctx context.Context, id int64) (string, error) {
	name, err := deactivateKeyword(ctx, d.Pool, id)
	return name, storageErr("deactivate keyword", err)
}

// GetKeyword retrieves a keyword by id in any state.
func (d *DB) GetKeyword(ctx context.Context, id int64) (*models.ExclusionKeyword, error) {
	query := `SELECT ` + keywordColumns + ` FROM exclusion_keywords k WHERE k.id = $1`
	k, err := scanKeyword(d.Pool.QueryRow(ctx, query, id))
	return k, storageErr("get keyword", err)
}

// ListActiveKeywords returns active keywords, newest first, each with its
// live exclusion count.
func (d *DB) ListActiveKeywords(ctx context.Context) ([]models.ExclusionKeyword, error) {
	query := `
		SELECT ` + keywordColumns + `
		FROM exclusion_keywords k
		WHERE k.active
		ORDER BY k.created_at DESC, k.id DESC
	`
	rows, err := d.Pool.Query(ctx, query)
	if err != nil {
		return nil, storageErr("list keywords", err)
	}
	keywords, err := scanKeywords(rows)
	return keywords, storageErr("list keywords", err)
}

// ReconcileKeywordCounts copies live exclusion counts into the advisory
// exclusion_count column and returns the number of rows that drifted.
func (d *DB) ReconcileKeywordCounts(ctx context.Context) (int64, error) {
	tag, err := d.Pool.Exec(ctx, `
		UPDATE exclusion_keywords k
		SET exclusion_count = live.n, updated_at = NOW()
		FROM (
			SELECT k2.id,
				(SELECT COUNT(*) FROM announcements a
					WHERE a.status = 'excluded' AND a.exclusion_keywords @> ARRAY[k2.name]) AS n
			FROM exclusion_keywords k2
			WHERE k2.active
		) AS live
		WHERE k.id = live.id AND k.exclusion_count <> live.n
	`)
	if err != nil {
		return 0, storageErr("reconcile keyword counts", err)
	}
	return tag.RowsAffected(), nil
}
