package services

import (
	"encoding/json"
	"strings"
)

// ParseSkills accepts repeated form values, a JSON array string, a CSV string
// or a single value. Entries are trimmed and de-duplicated ignoring case.
func ParseSkills(raw []string) []string {
	var values []string
	for _, r := range raw {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}

		if strings.HasPrefix(r, "[") {
			var arr []string
			if err := json.Unmarshal([]byte(r), &arr); err == nil {
				values = append(values, arr...)
				continue
			}
		}

		values = append(values, strings.Split(r, ",")...)
	}

	return MergeSkills(nil, values)
}

// MergeSkills appends additions to existing, skipping blanks and case-insensitive duplicates.
func MergeSkills(existing []string, additions []string) []string {
	seen := make(map[string]struct{}, len(existing)+len(additions))
	out := make([]string, 0, len(existing)+len(additions))

	for _, list := range [][]string{existing, additions} {
		for _, s := range list {
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			key := strings.ToLower(s)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, s)
		}
	}

	return out
}
