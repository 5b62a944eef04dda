package engine

import (
	"math"
	"strings"
	"time"
)

// DateLayout is the calendar date format used by uploads and forecasts.
const DateLayout = "2006-01-02"

// RoundTo rounds x to the given number of decimal places, half away from zero.
func RoundTo(x float64, places int) float64 {
	if places <= 0 {
		return math.Round(x)
	}

	factor := math.Pow10(places)
	return math.Round(x*factor) / factor
}

// Round3 rounds x to 3 decimal places.
func Round3(x float64) float64 {
	return RoundTo(x, 3)
}

// LocalMidnight parses a YYYY-MM-DD date as midnight in loc.
// It reports false for empty or malformed input.
func LocalMidnight(date string, loc *time.Location) (time.Time, bool) {
	date = strings.TrimSpace(date)
	if date == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}

	t, err := time.ParseInLocation(DateLayout, date, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// DaysToExpire returns the whole days from today's local midnight to the expiry
// date, floored at 0. It returns nil when the date is absent or unparsable.
// The expiry date is interpreted in today's location.
func DaysToExpire(date string, today time.Time) *int {
	expiry, ok := LocalMidnight(date, today.Location())
	if !ok {
		return nil
	}

	// Count calendar days so a DST shift inside the range cannot add a day.
	y, m, d := today.Date()
	from := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	ey, em, ed := expiry.Date()
	to := time.Date(ey, em, ed, 0, 0, 0, 0, time.UTC)

	days := int(math.Ceil(to.Sub(from).Hours() / 24))
	if days < 0 {
		days = 0
	}
	return &days
}

// num coerces non-finite values to 0.
func num(x float64) float64 {
	if !isFinite(x) {
		return 0
	}
	return x
}
