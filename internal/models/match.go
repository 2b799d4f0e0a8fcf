package models

// Match is an announcement whose title contains an exclusion keyword.
type Match struct {
	AnnouncementID int64
	SubventionID   *int64
	// AlreadyExcluded is set when another keyword already excludes the
	// announcement; applying only adds to its tag set.
	AlreadyExcluded bool
}

// MatchAnnouncementIDs returns the announcement ids of matches.
func MatchAnnouncementIDs(matches []Match) []int64 {
	ids := make([]int64, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m.AnnouncementID)
	}
	return ids
}

// MatchSubventionIDs returns the distinct linked subvention ids of matches.
func MatchSubventionIDs(matches []Match) []int64 {
	seen := make(map[int64]bool)
	var ids []int64
	for _, m := range matches {
		if m.SubventionID == nil || seen[*m.SubventionID] {
			continue
		}
		seen[*m.SubventionID] = true
		ids = append(ids, *m.SubventionID)
	}
	return ids
}
