package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSkills(t *testing.T) {
	tests := []struct {
		name string
		raw  []string
		want []string
	}{
		{"repeated form values", []string{"Go", " SQL "}, []string{"Go", "SQL"}},
		{"json array string", []string{`["React","Node.js"]`}, []string{"React", "Node.js"}},
		{"csv string", []string{"Go, Docker ,, Redis"}, []string{"Go", "Docker", "Redis"}},
		{"single value", []string{"Python"}, []string{"Python"}},
		{"case-insensitive dedupe", []string{"go", "Go", "GO"}, []string{"go"}},
		{"malformed json falls back to csv", []string{`[Go, SQL`}, []string{"[Go", "SQL"}},
		{"blank", []string{"", "  "}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseSkills(tt.raw))
		})
	}
}

func TestMergeSkills(t *testing.T) {
	merged := MergeSkills([]string{"Go", "SQL"}, []string{"sql", "Docker"})
	assert.Equal(t, []string{"Go", "SQL", "Docker"}, merged)
}
