package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"subvention/internal/models"
)

func TestFindEligible(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	sub := createTestSubvention(t, db, "R1")
	approved := createTestAnnouncement(t, db, "Seoul Youth Grant", models.StatusApproved, &sub)
	pending := createTestAnnouncement(t, db, "Busan Youth Fund", models.StatusPending, nil)
	createTestAnnouncement(t, db, "seoul youth lowercase", models.StatusApproved, nil)
	createTestAnnouncement(t, db, "Export Voucher", models.StatusApproved, nil)
	createTestAnnouncement(t, db, "100% Youth_Grant", models.StatusApproved, nil)

	tests := []struct {
		name    string
		keyword string
		wantIDs int
	}{
		{"case-sensitive substring", "Youth", 3},
		{"lowercase only matches lowercase", "youth", 1},
		{"percent is literal", "%", 1},
		{"underscore is literal", "h_G", 1},
		{"no match", "Nothing", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matches, err := db.FindEligible(ctx, tt.keyword)
			require.NoError(t, err)
			assert.Len(t, matches, tt.wantIDs)
		})
	}

	matches, err := db.FindEligible(ctx, "Seoul Youth")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, approved, matches[0].AnnouncementID)
	require.NotNil(t, matches[0].SubventionID)
	assert.Equal(t, sub, *matches[0].SubventionID)
	assert.False(t, matches[0].AlreadyExcluded)

	matches, err = db.FindEligible(ctx, "Busan")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, pending, matches[0].AnnouncementID)
	assert.Nil(t, matches[0].SubventionID)

	_, err = db.FindEligible(ctx, " ")
	assert.ErrorIs(t, err, ErrKeywordRequired)
}

func TestFindEligibleIncludesOtherExclusions(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	id := createTestAnnouncement(t, db, "Alpha Beta", models.StatusApproved, nil)

	_, err := db.ApplyExclusionKeyword(ctx, "Alpha", "")
	require.NoError(t, err)

	matches, err := db.FindEligible(ctx, "Beta")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, id, matches[0].AnnouncementID)
	assert.True(t, matches[0].AlreadyExcluded)

	// Already tagged with Alpha, so Alpha no longer finds it.
	matches, err = db.FindEligible(ctx, "Alpha")
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestFindExcludedByTokenExactness(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	corp := createTestAnnouncement(t, db, "AI기업 바우처", models.StatusApproved, nil)

	_, err := db.ApplyExclusionKeyword(ctx, "AI기업", "")
	require.NoError(t, err)

	excluded, err := db.FindExcludedBy(ctx, "AI")
	require.NoError(t, err)
	assert.Empty(t, excluded)

	excluded, err = db.FindExcludedBy(ctx, "AI기업")
	require.NoError(t, err)
	require.Len(t, excluded, 1)
	assert.Equal(t, corp, excluded[0].ID)
	assert.Equal(t, "AI기업 바우처", excluded[0].Title)
	require.NotNil(t, excluded[0].ExclusionReason)
	assert.Equal(t, ExclusionReason, *excluded[0].ExclusionReason)

	// Applying AI now matches the title by substring and adds its own token.
	applied, err := db.ApplyExclusionKeyword(ctx, "AI", "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), applied.AffectedCount)

	excluded, err = db.FindExcludedBy(ctx, "AI")
	require.NoError(t, err)
	require.Len(t, excluded, 1)
	assert.ElementsMatch(t, []string{"AI기업", "AI"}, []string(excluded[0].ExclusionKeywords))
}
