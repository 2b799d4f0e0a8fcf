package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"subvention/internal/models"
)

// insertKeywordEvent records an apply or revoke in the audit log. It runs in
// the caller's transaction and is rolled back with it.
func insertKeywordEvent(ctx context.Context, q querier, ev *models.KeywordEvent) error {
	ev.ID = uuid.New()
	return q.QueryRow(ctx, `
		INSERT INTO exclusion_keyword_events
			(id, keyword_id, keyword, action, affected_count, changed_count, deactivated_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`,
		ev.ID,
		ev.KeywordID,
		ev.Keyword,
		ev.Action,
		ev.AffectedCount,
		ev.ChangedCount,
		ev.DeactivatedCount,
	).Scan(&ev.CreatedAt)
}

// ListKeywordEvents returns the audit log of a keyword, newest first. Events
// sharing a transaction timestamp fall back to insertion order.
func (d *DB) ListKeywordEvents(ctx context.Context, keywordID int64) ([]models.KeywordEvent, error) {
	rows, err := d.Pool.Query(ctx, `
		SELECT id, keyword_id, keyword, action, affected_count, changed_count, deactivated_count, created_at
		FROM exclusion_keyword_events
		WHERE keyword_id = $1
		ORDER BY created_at DESC, seq DESC
	`, keywordID)
	if err != nil {
		return nil, storageErr("list keyword events", err)
	}

	events, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.KeywordEvent, error) {
		var ev models.KeywordEvent
		err := row.Scan(
			&ev.ID,
			&ev.KeywordID,
			&ev.Keyword,
			&ev.Action,
			&ev.AffectedCount,
			&ev.ChangedCount,
			&ev.DeactivatedCount,
			&ev.CreatedAt,
		)
		return ev, err
	})
	return events, storageErr("list keyword events", err)
}
