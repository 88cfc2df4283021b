// Package status computes the human-facing values derived from raw
// timestamps and vital signs: countdowns, elapsed labels, vital range
// classification and the current shift period.
//
// Every function takes the reference time explicitly. Callers that render
// live values pass time.Now() on each call; nothing here caches.
package status

import (
	"fmt"
	"math"
	"time"
)

// Overdue is returned by TimeUntil for targets already in the past.
const Overdue = "Overdue"

// floorMinutes returns d in whole minutes, rounded toward negative infinity.
func floorMinutes(d time.Duration) int64 {
	return int64(math.Floor(d.Minutes()))
}

// TimeUntil formats the time remaining until target: "Overdue" once target
// has passed, "{m}m" under an hour and "{h}h {m}m" otherwise.
func TimeUntil(target, now time.Time) string {
	mins := floorMinutes(target.Sub(now))
	if mins < 0 {
		return Overdue
	}
	if mins < 60 {
		return fmt.Sprintf("%dm", mins)
	}
	return fmt.Sprintf("%dh %dm", mins/60, mins%60)
}

// TimeAgo formats the time elapsed since ts as "{h}h ago" once at least an
// hour has passed and "{m}m ago" before that. Timestamps in the future are
// reported as "0m ago".
func TimeAgo(ts, now time.Time) string {
	mins := floorMinutes(now.Sub(ts))
	if mins < 0 {
		mins = 0
	}
	if hours := mins / 60; hours > 0 {
		return fmt.Sprintf("%dh ago", hours)
	}
	return fmt.Sprintf("%dm ago", mins)
}

// ShiftDuration formats how long a shift has been running as "{h}h {m}m".
func ShiftDuration(start, now time.Time) string {
	mins := floorMinutes(now.Sub(start))
	if mins < 0 {
		mins = 0
	}
	return fmt.Sprintf("%dh %dm", mins/60, mins%60)
}

// OptionalTimeUntil is TimeUntil for optional timestamps; nil yields "".
func OptionalTimeUntil(target *time.Time, now time.Time) string {
	if target == nil {
		return ""
	}
	return TimeUntil(*target, now)
}

// OptionalTimeAgo is TimeAgo for optional timestamps; nil yields "".
func OptionalTimeAgo(ts *time.Time, now time.Time) string {
	if ts == nil {
		return ""
	}
	return TimeAgo(*ts, now)
}
