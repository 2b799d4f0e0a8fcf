package db

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"subvention/internal/models"
)

func TestListAnnouncements(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	createTestAnnouncement(t, db, "Seoul Youth Grant", models.StatusApproved, nil)
	createTestAnnouncement(t, db, "Busan Youth Fund", models.StatusApproved, nil)
	createTestAnnouncement(t, db, "Pending Youth", models.StatusPending, nil)
	createTestAnnouncement(t, db, "Export 100% Support", models.StatusApproved, nil)

	dated := &models.Announcement{
		SiteType:         "msit",
		Title:            "Dated Notice",
		ContentMD:        strings.Repeat("x", 150),
		Status:           models.StatusApproved,
		AnnouncementDate: ptrDate(2024, time.March, 15),
	}
	require.NoError(t, db.CreateAnnouncement(ctx, dated))

	tests := []struct {
		name      string
		filter    models.AnnouncementFilter
		wantTotal int64
		wantItems int
	}{
		{"all approved", models.AnnouncementFilter{Page: 1, Limit: 50}, 4, 4},
		{"title is case-insensitive", models.AnnouncementFilter{Title: "youth", Page: 1, Limit: 50}, 2, 2},
		{"percent is literal", models.AnnouncementFilter{Title: "%", Page: 1, Limit: 50}, 1, 1},
		{"site type", models.AnnouncementFilter{SiteType: "msit", Page: 1, Limit: 50}, 1, 1},
		{"second page", models.AnnouncementFilter{Page: 2, Limit: 3}, 4, 1},
		{"announcement date range", models.AnnouncementFilter{
			AnnouncementFrom: ptrDate(2024, time.March, 1),
			AnnouncementTo:   ptrDate(2024, time.March, 31),
			Page:             1,
			Limit:            50,
		}, 1, 1},
		{"announcement date outside range", models.AnnouncementFilter{
			AnnouncementFrom: ptrDate(2025, time.January, 1),
			Page:             1,
			Limit:            50,
		}, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, total, err := db.ListAnnouncements(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTotal, total)
			assert.Len(t, items, tt.wantItems)
		})
	}

	items, _, err := db.ListAnnouncements(ctx, models.AnnouncementFilter{SiteType: "msit", Page: 1, Limit: 50})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Len(t, items[0].ContentSummary, 100)
}

func TestListAnnouncementsHidesExcluded(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	id := createTestAnnouncement(t, db, "Youth Grant", models.StatusApproved, nil)

	_, total, err := db.ListAnnouncements(ctx, models.AnnouncementFilter{Page: 1, Limit: 50})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	applied, err := db.ApplyExclusionKeyword(ctx, "Youth", "")
	require.NoError(t, err)

	_, total, err = db.ListAnnouncements(ctx, models.AnnouncementFilter{Page: 1, Limit: 50})
	require.NoError(t, err)
	assert.Zero(t, total)

	results, err := db.SearchAnnouncements(ctx, "Youth", 100)
	require.NoError(t, err)
	assert.Empty(t, results)

	// Detail is still reachable by id.
	a, err := db.GetAnnouncementByID(ctx, id)
	require.NoError(t, err)
	assert.True(t, a.IsExcluded())

	_, err = db.RevokeExclusionKeyword(ctx, applied.KeywordID)
	require.NoError(t, err)

	results, err = db.SearchAnnouncements(ctx, "youth", 100)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, id, results[0].ID)
}

func TestSearchAnnouncementsLimit(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	for _, title := range []string{"Grant A", "Grant B", "Grant C"} {
		createTestAnnouncement(t, db, title, models.StatusApproved, nil)
	}

	results, err := db.SearchAnnouncements(ctx, "Grant", 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestGetAnnouncementAndSubventionNotFound(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	_, err := db.GetAnnouncementByID(ctx, 424242)
	assert.ErrorIs(t, err, ErrAnnouncementNotFound)

	_, err = db.GetSubventionByID(ctx, 424242)
	assert.ErrorIs(t, err, ErrSubventionNotFound)
}

func TestSeedDevAnnouncements(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, db.SeedDevAnnouncements(ctx))
	require.NoError(t, db.SeedDevAnnouncements(ctx))

	var count int
	require.NoError(t, db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM announcements`).Scan(&count))
	assert.Equal(t, 4, count)
}

func ptrDate(year int, month time.Month, day int) *time.Time {
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &d
}
