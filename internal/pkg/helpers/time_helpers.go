package helpers

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// ParseDuration parses a duration string, returns default duration on error.
func ParseDuration(durationStr string, defaultDuration time.Duration) time.Duration {
	duration, err := time.ParseDuration(durationStr)
	if err != nil {
		log.Warn().Err(err).Str("durationStr", durationStr).Dur("defaultDuration", defaultDuration).Msg("Failed to parse duration string, using default")
		return defaultDuration
	}
	return duration
}

// ClockMinutes converts HH:MM into minutes since midnight
func ClockMinutes(clock string) (int, error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", clock)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// RangesOverlap reports whether [aStart, aEnd) and [bStart, bEnd) intersect
func RangesOverlap(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && bStart < aEnd
}

// Percentage returns part/total*100 rounded to two decimals; zero when total is zero
func Percentage(part, total int64) float64 {
	if total == 0 {
		return 0
	}
	p := float64(part) / float64(total) * 100
	return float64(int64(p*100+0.5)) / 100
}
