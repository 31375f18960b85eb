package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPeriodStart(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{
			name: "mid_month",
			in:   time.Date(2025, 3, 17, 14, 30, 0, 0, time.UTC),
			want: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "first_of_month",
			in:   time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
			want: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "last_instant_of_month",
			in:   time.Date(2024, 12, 31, 23, 59, 59, 999999999, time.UTC),
			want: time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "non_utc_input_normalized",
			in:   time.Date(2025, 1, 1, 3, 0, 0, 0, time.FixedZone("IST", 5*3600+1800)),
			want: time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PeriodStart(tt.in))
		})
	}
}

func TestSamePeriod(t *testing.T) {
	jan15 := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	jan31 := time.Date(2025, 1, 31, 23, 0, 0, 0, time.UTC)
	feb1 := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	janLastYear := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

	assert.True(t, SamePeriod(jan15, jan31))
	assert.False(t, SamePeriod(jan31, feb1))
	// Same month, different year is a different period.
	assert.False(t, SamePeriod(jan15, janLastYear))
}
