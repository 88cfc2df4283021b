package handoff

import (
	"fmt"
	"time"

	"github.com/ehr/shifthandoff/internal/domain/status"
)

type Category string

const (
	CategoryAssessment    Category = "assessment"
	CategoryVitals        Category = "vitals"
	CategoryMedications   Category = "medications"
	CategoryInterventions Category = "interventions"
	CategoryPending       Category = "pending"
	CategoryAlerts        Category = "alerts"
	CategoryOther         Category = "other"
)

var validCategories = map[Category]bool{
	CategoryAssessment:    true,
	CategoryVitals:        true,
	CategoryMedications:   true,
	CategoryInterventions: true,
	CategoryPending:       true,
	CategoryAlerts:        true,
	CategoryOther:         true,
}

func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !validCategories[c] {
		return "", fmt.Errorf("invalid category %q", s)
	}
	return c, nil
}

type Priority string

const (
	PriorityNormal    Priority = "normal"
	PriorityImportant Priority = "important"
	PriorityCritical  Priority = "critical"
)

func ParsePriority(s string) (Priority, error) {
	switch p := Priority(s); p {
	case PriorityNormal, PriorityImportant, PriorityCritical:
		return p, nil
	}
	return "", fmt.Errorf("invalid priority %q", s)
}

type InputMethod string

const (
	InputVoice  InputMethod = "voice"
	InputText   InputMethod = "text"
	InputGuided InputMethod = "guided"
)

// ParseInputMethod defaults an empty value to text.
func ParseInputMethod(s string) (InputMethod, error) {
	switch m := InputMethod(s); m {
	case "":
		return InputText, nil
	case InputVoice, InputText, InputGuided:
		return m, nil
	}
	return "", fmt.Errorf("invalid input method %q", s)
}

type ShiftStatus string

const (
	ShiftActive        ShiftStatus = "active"
	ShiftCompleted     ShiftStatus = "completed"
	ShiftPendingReview ShiftStatus = "pending-review"
)

// Shift is one nurse shift for one patient.
type Shift struct {
	ID        string             `json:"id"`
	PatientID string             `json:"patient_id"`
	ShiftDate string             `json:"shift_date"`
	Type      status.ShiftPeriod `json:"shift_type"`
	StartTime time.Time          `json:"start_time"`
	EndTime   *time.Time         `json:"end_time,omitempty"`
	Status    ShiftStatus        `json:"status"`
}

// Entry is a single handoff note. Entries are never edited once recorded.
type Entry struct {
	ID          string      `json:"id"`
	ShiftID     string      `json:"shift_id"`
	PatientID   string      `json:"patient_id"`
	Timestamp   time.Time   `json:"timestamp"`
	InputMethod InputMethod `json:"input_method"`
	Category    Category    `json:"category"`
	Priority    Priority    `json:"priority"`
	Content     string      `json:"content"`
	IsComplete  bool        `json:"is_complete"`
}

// Summary is the running handoff record for a patient's current shift.
type Summary struct {
	PatientID    string     `json:"patient_id"`
	CurrentShift *Shift     `json:"current_shift"`
	Entries      []Entry    `json:"entries"`
	Completion   Completion `json:"completion"`
	LastUpdated  time.Time  `json:"last_updated"`
}

func (s *Summary) clone() *Summary {
	cp := *s
	if s.CurrentShift != nil {
		sh := *s.CurrentShift
		if sh.EndTime != nil {
			end := *sh.EndTime
			sh.EndTime = &end
		}
		cp.CurrentShift = &sh
	}
	cp.Entries = append([]Entry(nil), s.Entries...)
	return &cp
}

// CriticalEntries returns entries flagged critical, in recording order.
func (s *Summary) CriticalEntries() []Entry {
	out := []Entry{}
	for _, e := range s.Entries {
		if e.Priority == PriorityCritical {
			out = append(out, e)
		}
	}
	return out
}

// PendingEntries returns open pending-category entries.
func (s *Summary) PendingEntries() []Entry {
	out := []Entry{}
	for _, e := range s.Entries {
		if e.Category == CategoryPending && !e.IsComplete {
			out = append(out, e)
		}
	}
	return out
}

// RecentEntries returns entries newest first.
func (s *Summary) RecentEntries() []Entry {
	out := make([]Entry, len(s.Entries))
	for i, e := range s.Entries {
		out[len(s.Entries)-1-i] = e
	}
	return out
}

// Report is the handoff summary with its derived views.
type Report struct {
	PatientID         string      `json:"patient_id"`
	PatientName       string      `json:"patient_name"`
	CurrentShift      *Shift      `json:"current_shift"`
	Completion        Completion  `json:"completion"`
	CompletionPercent int         `json:"completion_percent"`
	ShiftDuration     string      `json:"shift_duration"`
	Entries           []Entry     `json:"entries"`
	CriticalEntries   []Entry     `json:"critical_entries"`
	PendingEntries    []Entry     `json:"pending_entries"`
	NextPrompt        *PromptView `json:"next_prompt,omitempty"`
	LastUpdated       time.Time   `json:"last_updated"`
}
