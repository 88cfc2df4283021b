package handoff

import "math"

// Completion tracks which handoff categories have at least one entry in the
// current shift. Flags only move from false to true; a new shift starts
// from the zero value.
type Completion struct {
	Assessment    bool `json:"assessment"`
	Vitals        bool `json:"vitals"`
	Medications   bool `json:"medications"`
	Interventions bool `json:"interventions"`
	Pending       bool `json:"pending"`
	Alerts        bool `json:"alerts"`
}

// TrackedCategories lists the categories with a completion flag.
var TrackedCategories = []Category{
	CategoryAssessment,
	CategoryVitals,
	CategoryMedications,
	CategoryInterventions,
	CategoryPending,
	CategoryAlerts,
}

func (c *Completion) flag(cat Category) *bool {
	switch cat {
	case CategoryAssessment:
		return &c.Assessment
	case CategoryVitals:
		return &c.Vitals
	case CategoryMedications:
		return &c.Medications
	case CategoryInterventions:
		return &c.Interventions
	case CategoryPending:
		return &c.Pending
	case CategoryAlerts:
		return &c.Alerts
	}
	return nil
}

// Mark completes cat and reports whether the flag changed.
func (c *Completion) Mark(cat Category) bool {
	f := c.flag(cat)
	if f == nil || *f {
		return false
	}
	*f = true
	return true
}

// Done reports whether cat is complete. Untracked categories are never done.
func (c Completion) Done(cat Category) bool {
	f := c.flag(cat)
	return f != nil && *f
}

func (c Completion) Count() int {
	n := 0
	for _, cat := range TrackedCategories {
		if c.Done(cat) {
			n++
		}
	}
	return n
}

// Percentage is the share of completed categories, rounded to a whole number.
func (c Completion) Percentage() int {
	return int(math.Round(float64(c.Count()) / float64(len(TrackedCategories)) * 100))
}
