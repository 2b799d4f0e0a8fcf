package validation

import (
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// MaxKeywordLength is the longest exclusion keyword accepted, in characters.
const MaxKeywordLength = 100

// DateLayout is the layout of date query parameters.
const DateLayout = "2006-01-02"

// NormalizeKeyword trims surrounding whitespace. Case is preserved so title
// matching stays case-sensitive.
func NormalizeKeyword(keyword string) string {
	return strings.TrimSpace(keyword)
}

// ValidateKeyword checks an already normalized exclusion keyword.
// Commas are rejected because they delimit the textual form of a tag set.
func ValidateKeyword(keyword string) (bool, string) {
	if keyword == "" {
		return false, "keyword is required"
	}
	if !utf8.ValidString(keyword) {
		return false, "keyword must be valid UTF-8"
	}
	if strings.ContainsFunc(keyword, unicode.IsControl) {
		return false, "keyword must not contain control characters"
	}
	if utf8.RuneCountInString(keyword) > MaxKeywordLength {
		return false, "keyword must be at most 100 characters"
	}
	if strings.Contains(keyword, ",") {
		return false, "keyword must not contain commas"
	}
	return true, ""
}

// ValidateDescription checks the free-text note stored with a keyword.
// Line breaks are allowed; NUL and invalid UTF-8 cannot be stored.
func ValidateDescription(description string) (bool, string) {
	if !utf8.ValidString(description) {
		return false, "description must be valid UTF-8"
	}
	if strings.ContainsRune(description, 0) {
		return false, "description must not contain NUL characters"
	}
	return true, ""
}

// ParsePositiveInt parses a query parameter, returning fallback when it is
// empty, malformed, or below 1, and clamping it to max when max > 0.
func ParsePositiveInt(raw string, fallback, max int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		n = fallback
	}
	if max > 0 && n > max {
		n = max
	}
	return n
}

// ParseDate parses an optional YYYY-MM-DD query parameter. An empty string
// yields nil.
func ParseDate(raw string) (*time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		return nil, false
	}
	return &t, true
}

// ParseID parses a positive integer path parameter.
func ParseID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}
