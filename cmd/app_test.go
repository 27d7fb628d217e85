package cmd

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWhen(t *testing.T) {
	loc := time.FixedZone("KST", 9*60*60)

	tests := []struct {
		in   string
		want time.Time
	}{
		{"2026-09-01T14:00:00+02:00", time.Date(2026, 9, 1, 14, 0, 0, 0, time.FixedZone("", 2*60*60))},
		{"2026-09-01 14:00", time.Date(2026, 9, 1, 14, 0, 0, 0, loc)},
		{"2026-09-01T14:00", time.Date(2026, 9, 1, 14, 0, 0, 0, loc)},
		{"2026-09-01", time.Date(2026, 9, 1, 0, 0, 0, 0, loc)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseWhen(tt.in, loc)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %v, want %v", got, tt.want)
		})
	}

	_, err := parseWhen("next tuesday", loc)
	assert.Error(t, err)
}

func TestWeekWindow(t *testing.T) {
	loc := time.FixedZone("KST", 9*60*60)
	now := time.Date(2026, 9, 1, 16, 45, 0, 0, loc)

	start, end := weekWindow(now, 1)
	assert.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, loc), start)
	assert.Equal(t, time.Date(2026, 9, 8, 0, 0, 0, 0, loc), end)

	_, end = weekWindow(now, 3)
	assert.Equal(t, time.Date(2026, 9, 22, 0, 0, 0, 0, loc), end)
}
