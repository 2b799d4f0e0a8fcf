package models

import (
	"time"

	"github.com/google/uuid"
)

// Keyword event action constants
const (
	ActionApplied = "applied"
	ActionRevoked = "revoked"
)

// ExclusionKeyword is a named exclusion rule. Its presence in an
// announcement title excludes the announcement.
type ExclusionKeyword struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Active      bool    `json:"active"`
	// ExclusionCount is the stored counter. It is advisory only and may lag;
	// LiveExclusionCount is computed from the tag sets when the row is read.
	ExclusionCount     int64     `json:"exclusion_count"`
	LiveExclusionCount int64     `json:"live_exclusion_count"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// KeywordEvent is an audit entry written alongside each apply or revoke.
type KeywordEvent struct {
	ID               uuid.UUID `json:"id"`
	KeywordID        int64     `json:"keyword_id"`
	Keyword          string    `json:"keyword"`
	Action           string    `json:"action"`
	AffectedCount    int64     `json:"affected_count"`
	ChangedCount     int64     `json:"changed_count"`
	DeactivatedCount int64     `json:"deactivated_count"`
	CreatedAt        time.Time `json:"created_at"`
}
