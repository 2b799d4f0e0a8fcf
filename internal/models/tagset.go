package models

import (
	"encoding/json"
	"strings"
)

// TagSeparator joins keyword names in the textual form of a TagSet.
const TagSeparator = ","

// TagSet is the set of exclusion keyword names responsible for an
// announcement's exclusion. It is stored as a TEXT[] column and membership is
// exact: "AI" is not a member of {"AI기업"}.
type TagSet []string

// String returns the comma-delimited form printed by exclusionctl.
func (t TagSet) String() string {
	return strings.Join(t, TagSeparator)
}

// MarshalJSON encodes an empty set as [] rather than null.
func (t TagSet) MarshalJSON() ([]byte, error) {
	if t == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(t))
}
