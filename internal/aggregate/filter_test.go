package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchesCalendarFilter(t *testing.T) {
	tests := []struct {
		name    string
		summary string
		filters []string
		want    bool
	}{
		{"empty filter matches everything", "Anything", nil, true},
		{"substring match", "Work Projects", []string{"proj"}, true},
		{"case insensitive", "PROJECTS", []string{"proj"}, true},
		{"mixed case filter", "my projects", []string{"PrOj"}, true},
		{"no match", "Home", []string{"proj"}, false},
		{"or semantics first term", "Work stuff", []string{"work", "meeting"}, true},
		{"or semantics second term", "Team Meetings", []string{"work", "meeting"}, true},
		{"or semantics no term", "Holidays", []string{"work", "meeting"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchesCalendarFilter(tt.summary, tt.filters))
		})
	}
}
