package db

import (
	"context"

	"github.com/jackc/pgx/v5"

	"subvention/internal/models"
)

// summaryColumns is the column list of the keyword detail view.
const summaryColumns = `id, site_type, site_code, title, origin_url, announcement_date,
	exclusion_reason, exclusion_keywords, updated_at`

// findEligible returns announcements whose title contains keyword as a
// case-sensitive substring and that are either in an eligible status or
// excluded by other keywords without this one. strpos treats % and _
// literally, unlike LIKE. With lock set the rows are locked for the
// enclosing transaction.
func findEligible(ctx context.Context, q querier, keyword string, lock bool) ([]models.Match, error) {
	query := `
		SELECT id, subvention_id, status = $2
		FROM announcements
		WHERE strpos(title, $1::text) > 0
			AND (status = ANY($3::text[])
				OR (status = $2 AND NOT exclusion_keywords @> ARRAY[$1::text]))
		ORDER BY id
	`
	if lock {
		query += ` FOR UPDATE`
	}

	rows, err := q.Query(ctx, query, keyword, models.StatusExcluded, models.EligibleStatuses())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []models.Match
	for rows.Next() {
		var m models.Match
		if err := rows.Scan(&m.AnnouncementID, &m.SubventionID, &m.AlreadyExcluded); err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// findExcludedBy returns excluded announcements whose tag set contains
// keyword as an exact element.
func findExcludedBy(ctx context.Context, q querier, keyword string) ([]models.AnnouncementSummary, error) {
	rows, err := q.Query(ctx, `
		SELECT `+summaryColumns+`
		FROM announcements
		WHERE status = $2 AND exclusion_keywords @> ARRAY[$1::text]
		ORDER BY updated_at DESC, id DESC
	`, keyword, models.StatusExcluded)
	if err != nil {
		return nil, err
	}
	return scanSummaries(rows)
}

func scanSummaries(rows pgx.Rows) ([]models.AnnouncementSummary, error) {
	defer rows.Close()

	var summaries []models.AnnouncementSummary
	for rows.Next() {
		var s models.AnnouncementSummary
		if err := rows.Scan(
			&s.ID,
			&s.SiteType,
			&s.SiteCode,
			&s.Title,
			&s.OriginURL,
			&s.AnnouncementDate,
			&s.ExclusionReason,
			(*[]string)(&s.ExclusionKeywords),
			&s.UpdatedAt,
		); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// FindEligible returns the announcements an apply of keyword would touch.
func (d *DB) FindEligible(ctx context.Context, keyword string) ([]models.Match, error) {
	keyword, err := normalizeKeyword(keyword)
	if err != nil {
		return nil, err
	}
	matches, err := findEligible(ctx, d.Pool, keyword, false)
	return matches, storageErr("find eligible announcements", err)
}

// FindExcludedBy returns the announcements currently excluded by keyword.
func (d *DB) FindExcludedBy(ctx context.Context, keyword string) ([]models.AnnouncementSummary, error) {
	keyword, err := normalizeKeyword(keyword)
	if err != nil {
		return nil, err
	}
	summaries, err := findExcludedBy(ctx, d.Pool, keyword)
	return summaries, storageErr("find excluded announcements", err)
}
