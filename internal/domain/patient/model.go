package patient

import (
	"fmt"
	"strings"
	"time"

	"github.com/ehr/shifthandoff/internal/domain/status"
)

// RiskLevel is the categorical risk classification of a patient.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

var riskRank = map[RiskLevel]int{
	RiskCritical: 4,
	RiskHigh:     3,
	RiskMedium:   2,
	RiskLow:      1,
}

// Rank orders risk levels for sorting; unknown levels rank 0.
func (r RiskLevel) Rank() int {
	return riskRank[r]
}

// Valid reports whether r is one of the four known risk levels.
func (r RiskLevel) Valid() bool {
	_, ok := riskRank[r]
	return ok
}

// ParseRiskLevel validates a risk level name.
func ParseRiskLevel(s string) (RiskLevel, error) {
	r := RiskLevel(s)
	if !r.Valid() {
		return "", fmt.Errorf("invalid risk_level: %q (valid: low, medium, high, critical)", s)
	}
	return r, nil
}

// Mobility describes how a patient moves about.
type Mobility string

const (
	MobilityBedrest     Mobility = "bedrest"
	MobilityAssistance  Mobility = "assistance"
	MobilityIndependent Mobility = "independent"
	MobilityRestricted  Mobility = "restricted"
)

var validMobility = map[Mobility]bool{
	MobilityBedrest: true, MobilityAssistance: true, MobilityIndependent: true, MobilityRestricted: true,
}

const (
	MinAcuity = 1
	MaxAcuity = 5
)

// Patient is a patient on the unit's census.
type Patient struct {
	ID                 string        `json:"id"`
	Name               string        `json:"name"`
	Room               string        `json:"room"`
	AdmissionDate      string        `json:"admission_date,omitempty"`
	PrimaryDiagnosis   string        `json:"primary_diagnosis,omitempty"`
	Allergies          []string      `json:"allergies"`
	RiskLevel          RiskLevel     `json:"risk_level"`
	IsolationStatus    string        `json:"isolation_status,omitempty"`
	AcuityLevel        int           `json:"acuity_level"`
	LastVitalsTime     *time.Time    `json:"last_vitals_time,omitempty"`
	NextMedTime        *time.Time    `json:"next_med_time,omitempty"`
	HasAlerts          bool          `json:"has_alerts"`
	IsPendingDischarge bool          `json:"is_pending_discharge"`
	RequiresFollowUp   bool          `json:"requires_follow_up"`
	NursingNotes       []Note        `json:"nursing_notes"`
	LastModified       *Modification `json:"last_modified,omitempty"`
}

// Validate enforces the census invariants: a name and room, acuity in
// 1..5 and a known risk level.
func (p *Patient) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("name is required")
	}
	if p.Room == "" {
		return fmt.Errorf("room is required")
	}
	if p.AcuityLevel < MinAcuity || p.AcuityLevel > MaxAcuity {
		return fmt.Errorf("acuity_level must be between %d and %d, got %d", MinAcuity, MaxAcuity, p.AcuityLevel)
	}
	if !p.RiskLevel.Valid() {
		return fmt.Errorf("invalid risk_level: %q", p.RiskLevel)
	}
	return nil
}

// Status holds the per-patient flags shown alongside the census entry.
type Status struct {
	HasNewOrders       bool       `json:"has_new_orders"`
	HasCriticalLabs    bool       `json:"has_critical_labs"`
	HasUnreadMessages  bool       `json:"has_unread_messages"`
	LastAssessmentTime *time.Time `json:"last_assessment_time,omitempty"`
	NextScheduledCare  *time.Time `json:"next_scheduled_care,omitempty"`
	PainLevel          *int       `json:"pain_level,omitempty"`
	Mobility           Mobility   `json:"mobility_status"`
}

// Validate checks the pain scale and mobility enum.
func (s *Status) Validate() error {
	if s.PainLevel != nil && (*s.PainLevel < 0 || *s.PainLevel > 10) {
		return fmt.Errorf("pain_level must be between 0 and 10, got %d", *s.PainLevel)
	}
	if s.Mobility == "" {
		s.Mobility = MobilityIndependent
	}
	if !validMobility[s.Mobility] {
		return fmt.Errorf("invalid mobility_status: %q", s.Mobility)
	}
	return nil
}

// describe summarises the status for the activity log.
func (s *Status) describe() string {
	parts := []string{"mobility " + string(s.Mobility)}
	if s.PainLevel != nil {
		parts = append(parts, fmt.Sprintf("pain %d/10", *s.PainLevel))
	}
	if s.HasNewOrders {
		parts = append(parts, "new orders")
	}
	if s.HasCriticalLabs {
		parts = append(parts, "critical labs")
	}
	if s.HasUnreadMessages {
		parts = append(parts, "unread messages")
	}
	return strings.Join(parts, ", ")
}

// Medication is an active medication order.
type Medication struct {
	Name      string     `json:"name"`
	Dose      string     `json:"dose"`
	Route     string     `json:"route"`
	Frequency string     `json:"frequency"`
	NextDue   *time.Time `json:"next_due,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
}

// Active reports whether the order has not ended at now.
func (m *Medication) Active(now time.Time) bool {
	return m.EndDate == nil || m.EndDate.After(now)
}

// PriorityTier is the coarse banding used to colour a census card.
type PriorityTier string

const (
	TierCritical PriorityTier = "critical"
	TierHigh     PriorityTier = "high"
	TierStable   PriorityTier = "stable"
)

// Tier bands the patient: critical for critical risk or acuity 4+, high for
// high risk or acuity 3, stable otherwise.
func (p *Patient) Tier() PriorityTier {
	switch {
	case p.RiskLevel == RiskCritical || p.AcuityLevel >= 4:
		return TierCritical
	case p.RiskLevel == RiskHigh || p.AcuityLevel == 3:
		return TierHigh
	default:
		return TierStable
	}
}

// View is a census entry with its derived display values.
type View struct {
	*Patient
	Tier           PriorityTier `json:"priority_tier"`
	NextMedIn      string       `json:"next_med_in,omitempty"`
	VitalsTakenAgo string       `json:"vitals_taken_ago,omitempty"`
}

// NewView derives the display values of p at now.
func NewView(p *Patient, now time.Time) *View {
	return &View{
		Patient:        p,
		Tier:           p.Tier(),
		NextMedIn:      status.OptionalTimeUntil(p.NextMedTime, now),
		VitalsTakenAgo: status.OptionalTimeAgo(p.LastVitalsTime, now),
	}
}

// MedicationView is a medication with its countdown to the next dose.
type MedicationView struct {
	Medication
	NextDoseIn string `json:"next_dose_in,omitempty"`
}

// VitalsView is a snapshot with every field classified.
type VitalsView struct {
	status.Snapshot
	Readings []status.Reading `json:"readings"`
	TakenAgo string           `json:"taken_ago"`
}

// Detail is everything shown on a patient's detail page.
type Detail struct {
	*View
	Status      *Status          `json:"status,omitempty"`
	Vitals      *VitalsView      `json:"latest_vitals,omitempty"`
	Medications []MedicationView `json:"medications"`
	Tasks       TaskBoard        `json:"tasks"`
}

// Stats are the census counters shown above the list.
type Stats struct {
	Total    int `json:"total"`
	Critical int `json:"critical"`
	Alerts   int `json:"alerts"`
}
