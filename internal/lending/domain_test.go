// internal/lending/domain_test.go
package lending

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReadableDuration(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	borrowed := timestamp(now.Add(-53 * time.Hour)) // 2 days 5 hours ago

	tests := []struct {
		name       string
		borrowedAt string
		returnedAt *string
		want       string
	}{
		{
			name:       "closed_loan",
			borrowedAt: borrowed,
			returnedAt: strPtr(timestamp(now)),
			want:       "2d 5h",
		},
		{
			name:       "open_loan_marks_ongoing",
			borrowedAt: borrowed,
			returnedAt: nil,
			want:       "2d 5h (ongoing)",
		},
		{
			name:       "fresh_loan",
			borrowedAt: timestamp(now),
			returnedAt: nil,
			want:       "0d 0h (ongoing)",
		},
		{
			name:       "returned_before_borrowed_degrades",
			borrowedAt: timestamp(now),
			returnedAt: strPtr(timestamp(now.Add(-2 * time.Hour))),
			want:       "n/a",
		},
		{
			name:       "borrowed_in_the_future_degrades",
			borrowedAt: timestamp(now.Add(3 * time.Hour)),
			returnedAt: nil,
			want:       "n/a",
		},
		{
			name:       "unparsable_borrowed_at_degrades",
			borrowedAt: "not a timestamp",
			returnedAt: strPtr(timestamp(now)),
			want:       "n/a",
		},
		{
			name:       "unparsable_returned_at_degrades",
			borrowedAt: borrowed,
			returnedAt: strPtr("garbage"),
			want:       "n/a",
		},
		{
			name:       "legacy_zoneless_timestamps_still_parse",
			borrowedAt: "2026-08-27T12:00:00.123456",
			returnedAt: strPtr("2026-08-28T13:30:00.123456"),
			want:       "1d 1h",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, readableDuration(tt.borrowedAt, tt.returnedAt, now))
		})
	}
}

func TestStoredTimestampsSortLexicographically(t *testing.T) {
	base := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	// A fractional second must not sort after a whole second.
	earlier := timestamp(base.Add(100 * time.Millisecond))
	later := timestamp(base.Add(time.Second))
	assert.Less(t, earlier, later)
}

func strPtr(s string) *string { return &s }
