package db

import (
	"context"
	"testing"

	"subvention/internal/models"
	"subvention/internal/testutil"
)

func setupTestDB(t *testing.T, opts ...Option) (*DB, func()) {
	t.Helper()

	connString := testutil.PostgresURL(t)

	ctx := context.Background()
	database, err := New(ctx, connString, opts...)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	if err := database.RunMigrations(connString); err != nil {
		database.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	// Clean before test
	if err := testutil.ResetTables(ctx, database.Pool); err != nil {
		database.Close()
		t.Fatalf("failed to reset tables: %v", err)
	}

	cleanup := func() {
		testutil.ResetTables(ctx, database.Pool)
		database.Close()
	}

	return database, cleanup
}

// createTestSubvention inserts an active subvention and returns its id.
func createTestSubvention(t *testing.T, database *DB, name string) int64 {
	t.Helper()

	s := &models.Subvention{Name: name}
	if err := database.CreateSubvention(context.Background(), s); err != nil {
		t.Fatalf("failed to create subvention: %v", err)
	}
	return s.ID
}

// createTestAnnouncement inserts an announcement with the given title and
// status, optionally linked to a subvention.
func createTestAnnouncement(t *testing.T, database *DB, title, status string, subventionID *int64) int64 {
	t.Helper()

	a := &models.Announcement{
		SiteType:     "test",
		Title:        title,
		ContentMD:    "content of " + title,
		OriginURL:    "https://example.org/" + title,
		Status:       status,
		SubventionID: subventionID,
	}
	if err := database.CreateAnnouncement(context.Background(), a); err != nil {
		t.Fatalf("failed to create announcement: %v", err)
	}
	return a.ID
}

func mustGetAnnouncement(t *testing.T, database *DB, id int64) *models.Announcement {
	t.Helper()

	a, err := database.GetAnnouncementByID(context.Background(), id)
	if err != nil {
		t.Fatalf("failed to get announcement %d: %v", id, err)
	}
	return a
}

func mustGetSubvention(t *testing.T, database *DB, id int64) *models.Subvention {
	t.Helper()

	s, err := database.GetSubventionByID(context.Background(), id)
	if err != nil {
		t.Fatalf("failed to get subvention %d: %v", id, err)
	}
	return s
}
