package assign

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/egtaonline/egta-mock/pkg/apperrors"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name       string
		assignment string
		expected   []GroupSpec
	}{
		{
			name:       "single role single strategy",
			assignment: "r: 2 s0",
			expected:   []GroupSpec{{Role: "r", Strategy: "s0", Count: 2}},
		},
		{
			name:       "single role two strategies",
			assignment: "r: 1 s0, 1 s1",
			expected: []GroupSpec{
				{Role: "r", Strategy: "s0", Count: 1},
				{Role: "r", Strategy: "s1", Count: 1},
			},
		},
		{
			name:       "two roles",
			assignment: "buyer: 2 shade, 1 truthful; seller: 3 shade",
			expected: []GroupSpec{
				{Role: "buyer", Strategy: "shade", Count: 2},
				{Role: "buyer", Strategy: "truthful", Count: 1},
				{Role: "seller", Strategy: "shade", Count: 3},
			},
		},
		{
			name:       "strategy with spaces",
			assignment: "r: 2 tit for tat",
			expected:   []GroupSpec{{Role: "r", Strategy: "tit for tat", Count: 2}},
		},
		{
			name:       "zero count parses",
			assignment: "r: 0 s0",
			expected:   []GroupSpec{{Role: "r", Strategy: "s0", Count: 0}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.assignment)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name       string
		assignment string
	}{
		{"missing role separator", "r 2 s0"},
		{"non-integer count", "r: two s0"},
		{"negative count", "r: -1 s0"},
		{"missing strategy", "r: 2"},
		{"empty role", ": 2 s0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.assignment)
			assert.ErrorIs(t, err, apperrors.ErrMalformedInput)
		})
	}
}

func TestFormat_Canonical(t *testing.T) {
	groups := []GroupSpec{
		{Role: "seller", Strategy: "shade", Count: 3},
		{Role: "buyer", Strategy: "truthful", Count: 1},
		{Role: "buyer", Strategy: "noop", Count: 0},
		{Role: "buyer", Strategy: "shade", Count: 2},
	}
	assert.Equal(t, "buyer: 2 shade, 1 truthful; seller: 3 shade", Format(groups))
}

func TestFormat_ParseRoundTrip(t *testing.T) {
	groups := []GroupSpec{
		{Role: "b", Strategy: "y", Count: 2},
		{Role: "a", Strategy: "x", Count: 1},
		{Role: "a", Strategy: "z", Count: 0},
	}
	parsed, err := Parse(Format(groups))
	require.NoError(t, err)
	// Same nonzero multiset, canonical order.
	assert.Equal(t, []GroupSpec{
		{Role: "a", Strategy: "x", Count: 1},
		{Role: "b", Strategy: "y", Count: 2},
	}, parsed)
}
