package models

// ApplyResult reports the outcome of applying an exclusion keyword.
type ApplyResult struct {
	KeywordID        int64  `json:"keyword_id"`
	Keyword          string `json:"keyword"`
	AffectedCount    int64  `json:"affected_count"`
	UpdatedCount     int64  `json:"updated_count"`
	DeactivatedCount int64  `json:"deactivated_count"`
}

// RevokeResult reports the outcome of revoking an exclusion keyword.
type RevokeResult struct {
	KeywordID     int64  `json:"keyword_id"`
	Keyword       string `json:"keyword"`
	RestoredCount int64  `json:"restored_count"`
	// UntaggedCount counts announcements that lost the keyword but stay
	// excluded by other keywords.
	UntaggedCount int64 `json:"untagged_count"`
}

// KeywordDetail is the keyword detail view.
type KeywordDetail struct {
	Keyword       *ExclusionKeyword     `json:"keyword"`
	Announcements []AnnouncementSummary `json:"announcements"`
	Events        []KeywordEvent        `json:"events"`
}

// Pagination describes a page of a list view.
type Pagination struct {
	CurrentPage int   `json:"current_page"`
	Limit       int   `json:"limit"`
	Total       int64 `json:"total"`
	TotalPages  int64 `json:"total_pages"`
}

// NewPagination computes the page count for total rows.
func NewPagination(page, limit int, total int64) Pagination {
	p := Pagination{CurrentPage: page, Limit: limit, Total: total}
	if limit > 0 {
		p.TotalPages = (total + int64(limit) - 1) / int64(limit)
	}
	return p
}
