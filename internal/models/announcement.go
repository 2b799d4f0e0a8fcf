package models

import "time"

// Announcement status constants
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusExcluded = "excluded"
)

// EligibleStatuses returns the statuses an announcement may hold before it is
// excluded and returns to once every responsible keyword is revoked.
func EligibleStatuses() []string {
	return []string{StatusPending, StatusApproved}
}

// IsEligibleStatus reports whether status is a pre-exclusion status.
func IsEligibleStatus(status string) bool {
	return status == StatusPending || status == StatusApproved
}

// Announcement is a collected subsidy announcement under review.
type Announcement struct {
	ID                int64      `json:"id"`
	SiteType          string     `json:"site_type"`
	SiteCode          string     `json:"site_code"`
	Title             string     `json:"title"`
	ContentMD         string     `json:"content_md"`
	CombinedContent   string     `json:"combined_content"`
	OriginURL         string     `json:"origin_url"`
	AnnouncementDate  *time.Time `json:"announcement_date"`
	Status            string     `json:"status"`
	PriorStatus       *string    `json:"prior_status,omitempty"`
	SubventionID      *int64     `json:"subvention_id"`
	ExclusionKeywords TagSet     `json:"exclusion_keywords"`
	ExclusionReason   *string    `json:"exclusion_reason"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// IsExcluded returns true if the announcement is currently excluded.
func (a *Announcement) IsExcluded() bool {
	return a.Status == StatusExcluded
}

// IsEligible returns true if the announcement holds a pre-exclusion status.
func (a *Announcement) IsEligible() bool {
	return IsEligibleStatus(a.Status)
}

// AnnouncementListItem is the row shape of the announcement list and search views.
type AnnouncementListItem struct {
	ID               int64      `json:"id"`
	SiteType         string     `json:"site_type"`
	SiteCode         string     `json:"site_code"`
	ContentSummary   string     `json:"content_summary"`
	Title            string     `json:"title"`
	OriginURL        string     `json:"origin_url"`
	SubventionID     *int64     `json:"subvention_id"`
	AnnouncementDate *time.Time `json:"announcement_date"`
	CreatedAt        time.Time  `json:"created_at"`
}

// AnnouncementSummary describes an excluded announcement in the keyword detail view.
type AnnouncementSummary struct {
	ID                int64      `json:"id"`
	SiteType          string     `json:"site_type"`
	SiteCode          string     `json:"site_code"`
	Title             string     `json:"title"`
	OriginURL         string     `json:"origin_url"`
	AnnouncementDate  *time.Time `json:"announcement_date"`
	ExclusionReason   *string    `json:"exclusion_reason"`
	ExclusionKeywords TagSet     `json:"exclusion_keywords"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// AnnouncementFilter narrows the announcement list view.
type AnnouncementFilter struct {
	Title            string
	SiteType         string
	CreatedFrom      *time.Time
	CreatedTo        *time.Time
	AnnouncementFrom *time.Time
	AnnouncementTo   *time.Time
	Page             int
	Limit            int
}

// Offset returns the row offset for the filter's page.
func (f AnnouncementFilter) Offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}
