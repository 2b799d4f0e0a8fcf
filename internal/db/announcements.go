package db

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"subvention/internal/models"
)

// announcementColumns is the standard column list for announcement queries.
const announcementColumns = `id, site_type, site_code, title, content_md, combined_content, origin_url,
	announcement_date, status, prior_status, subvention_id, exclusion_keywords, exclusion_reason,
	created_at, updated_at`

// listItemColumns is the column list of the list and search views.
const listItemColumns = `id, site_type, site_code, LEFT(content_md, 100) AS content_summary, title,
	origin_url, subvention_id, announcement_date, created_at`

// scanAnnouncement scans a row into an Announcement struct.
func scanAnnouncement(row pgx.Row) (*models.Announcement, error) {
	var a models.Announcement
	err := row.Scan(
		&a.ID,
		&a.SiteType,
		&a.SiteCode,
		&a.Title,
		&a.ContentMD,
		&a.CombinedContent,
		&a.OriginURL,
		&a.AnnouncementDate,
		&a.Status,
		&a.PriorStatus,
		&a.SubventionID,
		(*[]string)(&a.ExclusionKeywords),
		&a.ExclusionReason,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAnnouncementNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// scanListItems scans multiple rows into a slice of AnnouncementListItems.
func scanListItems(rows pgx.Rows) ([]models.AnnouncementListItem, error) {
	defer rows.Close()

	var items []models.AnnouncementListItem
	for rows.Next() {
		var it models.AnnouncementListItem
		if err := rows.Scan(
			&it.ID,
			&it.SiteType,
			&it.SiteCode,
			&it.ContentSummary,
			&it.Title,
			&it.OriginURL,
			&it.SubventionID,
			&it.AnnouncementDate,
			&it.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// CreateAnnouncement inserts an announcement. Ingestion normally happens
// outside this service; this is used by seeding and tests.
func (d *DB) CreateAnnouncement(ctx context.Context, a *models.Announcement) error {
	if a.Status == "" {
		a.Status = models.StatusPending
	}
	if a.ExclusionKeywords == nil {
		a.ExclusionKeywords = models.TagSet{}
	}

	query := `
		INSERT INTO announcements (site_type, site_code, title, content_md, combined_content, origin_url,
			announcement_date, status, prior_status, subvention_id, exclusion_keywords, exclusion_reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at
	`
	return d.Pool.QueryRow(ctx, query,
		a.SiteType,
		a.SiteCode,
		a.Title,
		a.ContentMD,
		a.CombinedContent,
		a.OriginURL,
		a.AnnouncementDate,
		a.Status,
		a.PriorStatus,
		a.SubventionID,
		[]string(a.ExclusionKeywords),
		a.ExclusionReason,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
}

// GetAnnouncementByID retrieves an announcement by its ID in any status.
func (d *DB) GetAnnouncementByID(ctx context.Context, id int64) (*models.Announcement, error) {
	query := `SELECT ` + announcementColumns + ` FROM announcements WHERE id = $1`
	return scanAnnouncement(d.Pool.QueryRow(ctx, query, id))
}

// ListAnnouncements returns a page of approved announcements matching the
// filter, newest first, and the total number of matches.
func (d *DB) ListAnnouncements(ctx context.Context, f models.AnnouncementFilter) ([]models.AnnouncementListItem, int64, error) {
	conditions := []string{"status = $1"}
	args := []any{models.StatusApproved}

	addCondition := func(format string, value any) {
		args = append(args, value)
		conditions = append(conditions, strings.Replace(format, "?", "$"+strconv.Itoa(len(args)), 1))
	}

	if title := strings.TrimSpace(f.Title); title != "" {
		addCondition("title ILIKE ?", "%"+escapeLike(title)+"%")
	}
	if siteType := strings.TrimSpace(f.SiteType); siteType != "" {
		addCondition("site_type = ?", siteType)
	}
	if f.CreatedFrom != nil {
		addCondition("created_at::date >= ?", *f.CreatedFrom)
	}
	if f.CreatedTo != nil {
		addCondition("created_at::date <= ?", *f.CreatedTo)
	}
	if f.AnnouncementFrom != nil {
		addCondition("announcement_date >= ?", *f.AnnouncementFrom)
	}
	if f.AnnouncementTo != nil {
		addCondition("announcement_date <= ?", *f.AnnouncementTo)
	}

	where := strings.Join(conditions, " AND ")

	var total int64
	if err := d.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM announcements WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limitArg := "$" + strconv.Itoa(len(args)+1)
	offsetArg := "$" + strconv.Itoa(len(args)+2)
	sql := `
		SELECT ` + listItemColumns + `
		FROM announcements
		WHERE ` + where + `
		ORDER BY created_at DESC, id DESC
		LIMIT ` + limitArg + ` OFFSET ` + offsetArg
	args = append(args, f.Limit, f.Offset())

	rows, err := d.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, err
	}
	items, err := scanListItems(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// SearchAnnouncements searches approved announcement titles for keyword.
func (d *DB) SearchAnnouncements(ctx context.Context, keyword string, limit int) ([]models.AnnouncementListItem, error) {
	query := `
		SELECT ` + listItemColumns + `
		FROM announcements
		WHERE status = $1 AND title ILIKE $2
		ORDER BY created_at DESC, id DESC
		LIMIT $3
	`
	rows, err := d.Pool.Query(ctx, query, models.StatusApproved, "%"+escapeLike(keyword)+"%", limit)
	if err != nil {
		return nil, err
	}
	return scanListItems(rows)
}

// escapeLike escapes LIKE metacharacters so user input matches literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
