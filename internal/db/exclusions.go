package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"subvention/internal/models"
	"subvention/internal/validation"
)

// ExclusionReason is recorded on every announcement an apply excludes.
const ExclusionReason = "exclusion keyword registered"

// DeactivationReason is recorded on subventions deactivated by keyword.
func DeactivationReason(keyword string) string {
	return "excluded by keyword " + keyword
}

// ApplyExclusionKeyword registers (or reactivates) keyword and, in the same
// transaction, excludes every matching announcement and deactivates the
// active subventions linked to them. Announcements already excluded by other
// keywords gain keyword in their tag set. Nothing is visible unless every
// step succeeds.
func (d *DB) ApplyExclusionKeyword(ctx context.Context, name, description string) (*models.ApplyResult, error) {
	keyword, err := normalizeKeyword(name)
	if err != nil {
		return nil, err
	}
	if valid, msg := validation.ValidateDescription(description); !valid {
		return nil, fmt.Errorf("%w: %s", ErrKeywordInvalid, msg)
	}

	var result models.ApplyResult
	err = d.InTx(ctx, "apply exclusion keyword", func(ctx context.Context, tx pgx.Tx) error {
		result = models.ApplyResult{Keyword: keyword}

		id, err := registerKeyword(ctx, tx, keyword, description)
		if err != nil {
			return err
		}
		result.KeywordID = id

		matches, err := findEligible(ctx, tx, keyword, true)
		if err != nil {
			return err
		}
		result.AffectedCount = int64(len(matches))

		if len(matches) > 0 {
			// SET expressions see the pre-update row, so prior_status captures
			// the eligible status before the row becomes excluded.
			tag, err := tx.Exec(ctx, `
				UPDATE announcements
				SET prior_status = CASE WHEN status = $3 THEN prior_status ELSE status END,
					status = $3,
					exclusion_keywords = array_append(exclusion_keywords, $2::text),
					exclusion_reason = $4,
					updated_at = NOW()
				WHERE id = ANY($1) AND NOT exclusion_keywords @> ARRAY[$2::text]
			`, models.MatchAnnouncementIDs(matches), keyword, models.StatusExcluded, ExclusionReason)
			if err != nil {
				return err
			}
			result.UpdatedCount = tag.RowsAffected()
		}

		if subventionIDs := models.MatchSubventionIDs(matches); len(subventionIDs) > 0 {
			tag, err := tx.Exec(ctx, `
				UPDATE subventions
				SET active = FALSE, deactivation_reason = $2, deactivated_at = NOW()
				WHERE id = ANY($1) AND active
			`, subventionIDs, DeactivationReason(keyword))
			if err != nil {
				return err
			}
			result.DeactivatedCount = tag.RowsAffected()
		}

		if err := refreshKeywordCount(ctx, tx, id, keyword); err != nil {
			return err
		}

		return insertKeywordEvent(ctx, tx, &models.KeywordEvent{
			KeywordID:        id,
			Keyword:          keyword,
			Action:           models.ActionApplied,
			AffectedCount:    result.AffectedCount,
			ChangedCount:     result.UpdatedCount,
			DeactivatedCount: result.DeactivatedCount,
		})
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// RevokeExclusionKeyword removes the keyword from every tag set that holds
// it and deactivates the keyword in one transaction. Announcements left with
// an empty tag set return to their prior eligible status; the rest stay
// excluded. Subventions are never reactivated.
func (d *DB) RevokeExclusionKeyword(ctx context.Context, id int64) (*models.RevokeResult, error) {
	var result models.RevokeResult
	err := d.InTx(ctx, "revoke exclusion keyword", func(ctx context.Context, tx pgx.Tx) error {
		result = models.RevokeResult{KeywordID: id}

		err := tx.QueryRow(ctx, `
			SELECT name FROM exclusion_keywords WHERE id = $1 AND active FOR UPDATE
		`, id).Scan(&result.Keyword)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrKeywordNotFound
		}
		if err != nil {
			return err
		}

		rows, err := tx.Query(ctx, `
			UPDATE announcements
			SET exclusion_keywords = array_remove(exclusion_keywords, $1::text),
				status = CASE WHEN cardinality(array_remove(exclusion_keywords, $1::text)) = 0
					THEN COALESCE(prior_status, $3) ELSE status END,
				prior_status = CASE WHEN cardinality(array_remove(exclusion_keywords, $1::text)) = 0
					THEN NULL ELSE prior_status END,
				exclusion_reason = CASE WHEN cardinality(array_remove(exclusion_keywords, $1::text)) = 0
					THEN NULL ELSE exclusion_reason END,
				updated_at = NOW()
			WHERE status = $2 AND exclusion_keywords @> ARRAY[$1::text]
			RETURNING status
		`, result.Keyword, models.StatusExcluded, models.StatusApproved)
		if err != nil {
			return err
		}
		statuses, err := pgx.CollectRows(rows, pgx.RowTo[string])
		if err != nil {
			return err
		}
		for _, status := range statuses {
			if status == models.StatusExcluded {
				result.UntaggedCount++
			} else {
				result.RestoredCount++
			}
		}

		if _, err := deactivateKeyword(ctx, tx, id); err != nil {
			return err
		}

		return insertKeywordEvent(ctx, tx, &models.KeywordEvent{
			KeywordID:     id,
			Keyword:       result.Keyword,
			Action:        models.ActionRevoked,
			AffectedCount: int64(len(statuses)),
			ChangedCount:  result.RestoredCount,
		})
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// refreshKeywordCount stores the keyword's live exclusion count in the
// advisory counter column.
func refreshKeywordCount(ctx context.Context, q querier, id int64, keyword string) error {
	_, err := q.Exec(ctx, `
		UPDATE exclusion_keywords
		SET exclusion_count = (
			SELECT COUNT(*) FROM announcements
			WHERE status = $3 AND exclusion_keywords @> ARRAY[$2::text]
		), updated_at = NOW()
		WHERE id = $1
	`, id, keyword, models.StatusExcluded)
	return err
}
