package offers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestOfferCurrentlyValid(t *testing.T) {
	base := Offer{
		Title:      "Lunch deal",
		ValidFrom:  day(2026, 5, 1),
		ValidUntil: day(2026, 5, 31),
		IsActive:   true,
	}

	tests := []struct {
		name   string
		mutate func(*Offer)
		now    time.Time
		want   bool
	}{
		{
			name:   "inside window",
			mutate: func(o *Offer) {},
			now:    time.Date(2026, 5, 15, 13, 0, 0, 0, time.UTC),
			want:   true,
		},
		{
			name:   "first day counts",
			mutate: func(o *Offer) {},
			now:    time.Date(2026, 5, 1, 0, 30, 0, 0, time.UTC),
			want:   true,
		},
		{
			name:   "last day counts",
			mutate: func(o *Offer) {},
			now:    time.Date(2026, 5, 31, 23, 0, 0, 0, time.UTC),
			want:   true,
		},
		{
			name:   "before window",
			mutate: func(o *Offer) {},
			now:    time.Date(2026, 4, 30, 12, 0, 0, 0, time.UTC),
			want:   false,
		},
		{
			name:   "after window",
			mutate: func(o *Offer) {},
			now:    time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
			want:   false,
		},
		{
			name:   "lapsed window with flag still on",
			mutate: func(o *Offer) { o.IsActive = true },
			now:    time.Date(2026, 7, 10, 12, 0, 0, 0, time.UTC),
			want:   false,
		},
		{
			name:   "flag off inside window",
			mutate: func(o *Offer) { o.IsActive = false },
			now:    time.Date(2026, 5, 15, 13, 0, 0, 0, time.UTC),
			want:   false,
		},
		{
			name:   "final day before end time",
			mutate: func(o *Offer) { o.EndTime = "15:00" },
			now:    time.Date(2026, 5, 31, 14, 59, 0, 0, time.UTC),
			want:   true,
		},
		{
			name:   "final day after end time",
			mutate: func(o *Offer) { o.EndTime = "15:00" },
			now:    time.Date(2026, 5, 31, 15, 1, 0, 0, time.UTC),
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			offer := base
			tt.mutate(&offer)
			assert.Equal(t, tt.want, offer.CurrentlyValid(tt.now))
		})
	}
}
