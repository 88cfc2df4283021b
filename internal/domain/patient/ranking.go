package patient

import (
	"fmt"
	"sort"
	"strings"
)

// ComparePriority orders two patients for handoff: higher acuity first, then
// patients with alerts, then higher risk, then name ascending. It returns a
// negative number when a sorts before b, positive when after, 0 on a tie.
func ComparePriority(a, b *Patient) int {
	if a.AcuityLevel != b.AcuityLevel {
		return b.AcuityLevel - a.AcuityLevel
	}
	if a.HasAlerts != b.HasAlerts {
		if a.HasAlerts {
			return -1
		}
		return 1
	}
	if ra, rb := a.RiskLevel.Rank(), b.RiskLevel.Rank(); ra != rb {
		return rb - ra
	}
	return compareText(a.Name, b.Name)
}

// compareText orders case-insensitively and falls back to byte order so
// "bob" and "Bob" still have a fixed order.
func compareText(a, b string) int {
	if c := strings.Compare(strings.ToLower(a), strings.ToLower(b)); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}

// SortByPriority sorts patients in place by ComparePriority. Full ties keep
// their input order.
func SortByPriority(patients []*Patient) {
	sort.SliceStable(patients, func(i, j int) bool {
		return ComparePriority(patients[i], patients[j]) < 0
	})
}

// SortMode selects a census ordering.
type SortMode string

const (
	SortPriority SortMode = "priority"
	SortAcuity   SortMode = "acuity"
	SortRoom     SortMode = "room"
	SortName     SortMode = "name"
)

// ParseSortMode validates a sort mode; the empty string means priority.
func ParseSortMode(s string) (SortMode, error) {
	switch m := SortMode(s); m {
	case "":
		return SortPriority, nil
	case SortPriority, SortAcuity, SortRoom, SortName:
		return m, nil
	default:
		return "", fmt.Errorf("invalid sort: %q (valid: priority, acuity, room, name)", s)
	}
}

// Sort orders patients in place by mode. Every mode is stable.
func Sort(patients []*Patient, mode SortMode) {
	var less func(a, b *Patient) bool
	switch mode {
	case SortAcuity:
		less = func(a, b *Patient) bool { return a.AcuityLevel > b.AcuityLevel }
	case SortRoom:
		less = func(a, b *Patient) bool { return compareText(a.Room, b.Room) < 0 }
	case SortName:
		less = func(a, b *Patient) bool { return compareText(a.Name, b.Name) < 0 }
	default:
		less = func(a, b *Patient) bool { return ComparePriority(a, b) < 0 }
	}
	sort.SliceStable(patients, func(i, j int) bool {
		return less(patients[i], patients[j])
	})
}
