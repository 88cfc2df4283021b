package patient

import (
	"fmt"
	"strings"
)

// FilterKind narrows the census to a subset of patients.
type FilterKind string

const (
	FilterAll      FilterKind = "all"
	FilterCritical FilterKind = "critical"
	FilterAlerts   FilterKind = "alerts"
	FilterFollowUp FilterKind = "followup"
)

// ParseFilterKind validates a filter name; the empty string means all.
func ParseFilterKind(s string) (FilterKind, error) {
	switch k := FilterKind(s); k {
	case "":
		return FilterAll, nil
	case FilterAll, FilterCritical, FilterAlerts, FilterFollowUp:
		return k, nil
	default:
		return "", fmt.Errorf("invalid filter: %q (valid: all, critical, alerts, followup)", s)
	}
}

// IsCritical reports critical risk or acuity 4 and above.
func IsCritical(p *Patient) bool {
	return p.RiskLevel == RiskCritical || p.AcuityLevel >= 4
}

// HasAlert reports a patient alert or a critical lab result.
func HasAlert(p *Patient, s *Status) bool {
	return p.HasAlerts || (s != nil && s.HasCriticalLabs)
}

func needsFollowUp(p *Patient) bool {
	return p.RequiresFollowUp || p.IsPendingDischarge
}

func matchesQuery(p *Patient, q string) bool {
	if q == "" {
		return true
	}
	q = strings.ToLower(q)
	return strings.Contains(strings.ToLower(p.Name), q) ||
		strings.Contains(strings.ToLower(p.Room), q) ||
		strings.Contains(strings.ToLower(p.PrimaryDiagnosis), q)
}

// Filter returns the patients matching query (name, room or diagnosis,
// case-insensitive) and kind. statuses is keyed by patient id and may be
// missing entries. Input order is preserved.
func Filter(patients []*Patient, kind FilterKind, query string, statuses map[string]*Status) []*Patient {
	out := make([]*Patient, 0, len(patients))
	for _, p := range patients {
		if !matchesQuery(p, query) {
			continue
		}
		keep := true
		switch kind {
		case FilterCritical:
			keep = IsCritical(p)
		case FilterAlerts:
			keep = HasAlert(p, statuses[p.ID])
		case FilterFollowUp:
			keep = needsFollowUp(p)
		}
		if keep {
			out = append(out, p)
		}
	}
	return out
}

// CountStats tallies the census counters.
func CountStats(patients []*Patient, statuses map[string]*Status) Stats {
	st := Stats{Total: len(patients)}
	for _, p := range patients {
		if IsCritical(p) {
			st.Critical++
		}
		if HasAlert(p, statuses[p.ID]) {
			st.Alerts++
		}
	}
	return st
}
