package assignment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidSchoolYear(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"2025-2026", true},
		{"1999-2000", true},
		{"2025-2027", false},
		{"2026-2025", false},
		{"2025/2026", false},
		{"25-26", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ValidSchoolYear(tt.in), tt.in)
	}
}
