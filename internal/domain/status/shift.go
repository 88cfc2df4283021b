package status

import (
	"fmt"
	"time"
)

// ShiftPeriod names the nursing shift a wall-clock hour falls into.
type ShiftPeriod string

const (
	ShiftDay     ShiftPeriod = "day"
	ShiftEvening ShiftPeriod = "evening"
	ShiftNight   ShiftPeriod = "night"
)

// ShiftPeriodAt maps the hour of now to a shift: 07:00-18:59 day,
// 19:00-22:59 evening, anything else night. The hour is read in now's own
// location; convert before calling to use facility time.
func ShiftPeriodAt(now time.Time) ShiftPeriod {
	h := now.Hour()
	switch {
	case h >= 7 && h < 19:
		return ShiftDay
	case h >= 19 && h < 23:
		return ShiftEvening
	default:
		return ShiftNight
	}
}

// ParseShiftPeriod validates a shift period name.
func ParseShiftPeriod(s string) (ShiftPeriod, error) {
	switch p := ShiftPeriod(s); p {
	case ShiftDay, ShiftEvening, ShiftNight:
		return p, nil
	default:
		return "", fmt.Errorf("invalid shift type: %q (valid: day, evening, night)", s)
	}
}
