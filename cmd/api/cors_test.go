package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchCORSOrigin(t *testing.T) {
	cases := []struct {
		name     string
		patterns []string
		origin   string
		want     bool
	}{
		{"exact", []string{"https://app.railcore.dev"}, "https://app.railcore.dev", true},
		{"exact rejects sibling", []string{"https://app.railcore.dev"}, "https://other.railcore.dev", false},
		{"star allows anything", []string{"*"}, "http://localhost:3000", true},
		{"wildcard one level", []string{"https://*.railcore.dev"}, "https://app.railcore.dev", true},
		{"wildcard nested", []string{"https://*.railcore.dev"}, "https://foo.bar.railcore.dev", true},
		{"wildcard excludes apex", []string{"https://*.railcore.dev"}, "https://railcore.dev", false},
		{"wildcard checks scheme", []string{"https://*.railcore.dev"}, "http://app.railcore.dev", false},
		{"wildcard other domain", []string{"https://*.railcore.dev"}, "https://evilrailcore.dev", false},
		{"second pattern matches", []string{"https://ops.example.com", "http://localhost:5173"}, "http://localhost:5173", true},
		{"malformed pattern", []string{"https://%gh&%ij"}, "https://origin.example.com", false},
		{"no patterns", nil, "http://localhost:3000", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, matchCORSOrigin(tc.origin, tc.patterns))
		})
	}
}
