package models

import "time"

// Subvention is the registered subsidy derived from an approved announcement.
// The exclusion workflow only ever deactivates it.
type Subvention struct {
	ID                 int64      `json:"id"`
	Name               string     `json:"name"`
	Active             bool       `json:"active"`
	DeactivationReason *string    `json:"deactivation_reason"`
	DeactivatedAt      *time.Time `json:"deactivated_at"`
	CreatedAt          time.Time  `json:"created_at"`
}
