package settings

import "strings"

// DeriveKeywords turns the raw keywords text into the persisted keyword
// list: trim, lowercase, split on runs of whitespace. Blank input yields an
// empty, non-nil list.
func DeriveKeywords(raw string) []string {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(raw)))
	if fields == nil {
		return []string{}
	}
	return fields
}
