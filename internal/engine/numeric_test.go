package engine

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTo(t *testing.T) {
	tests := []struct {
		name   string
		x      float64
		places int
		want   float64
	}{
		{"three places", 1.23456, 3, 1.235},
		{"half away from zero positive", 0.0625, 3, 0.063},
		{"half away from zero negative", -0.0625, 3, -0.063},
		{"integer rounding", 2.5, 0, 3},
		{"negative integer rounding", -2.5, 0, -3},
		{"already rounded", 4.2, 3, 4.2},
		{"one place", 31.25, 1, 31.3},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, RoundTo(tc.x, tc.places))
		})
	}
}

func TestRound3IsIdempotentWithThreeDecimals(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 5000; i++ {
		x := (rng.Float64() - 0.5) * 20000
		r := Round3(x)

		assert.Equal(t, r, Round3(r), "round3 not idempotent for %v", x)
		scaled := r * 1000
		assert.InDelta(t, math.Round(scaled), scaled, 1e-6, "more than 3 decimals for %v", x)
	}
}

func TestLocalMidnight(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)

	got, ok := LocalMidnight("2025-03-15", loc)
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 3, 15, 0, 0, 0, 0, loc), got)

	_, ok = LocalMidnight("", loc)
	assert.False(t, ok)

	_, ok = LocalMidnight("15/03/2025", loc)
	assert.False(t, ok)

	_, ok = LocalMidnight("2025-02-30", loc)
	assert.False(t, ok)
}

func TestDaysToExpire(t *testing.T) {
	today := time.Date(2025, 3, 10, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		date string
		want *int
	}{
		{"five days ahead", "2025-03-15", intPtr(5)},
		{"today", "2025-03-10", intPtr(0)},
		{"tomorrow", "2025-03-11", intPtr(1)},
		{"past due floors at zero", "2025-03-01", intPtr(0)},
		{"across month end", "2025-04-01", intPtr(22)},
		{"absent", "", nil},
		{"malformed", "soon", nil},
		{"invalid calendar date", "2025-02-30", nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := DaysToExpire(tc.date, today)
			if tc.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tc.want, *got)
		})
	}
}

func TestDaysToExpireUsesTodaysLocation(t *testing.T) {
	// 22:00 on the 10th west of UTC is already the 11th in UTC.
	loc := time.FixedZone("UTC-5", -5*60*60)
	today := time.Date(2025, 3, 10, 22, 0, 0, 0, loc)

	got := DaysToExpire("2025-03-11", today)
	require.NotNil(t, got)
	assert.Equal(t, 1, *got)
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }
