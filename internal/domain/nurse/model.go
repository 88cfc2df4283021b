package nurse

import (
	"fmt"
	"time"

	"github.com/ehr/shifthandoff/internal/domain/status"
)

type Nurse struct {
	ID              string             `json:"id" yaml:"id"`
	Name            string             `json:"name" yaml:"name"`
	Email           string             `json:"email" yaml:"email"`
	Department      string             `json:"department" yaml:"department"`
	Specialization  []string           `json:"specialization" yaml:"specialization"`
	YearsExperience int                `json:"years_experience" yaml:"years_experience"`
	Certifications  []string           `json:"certifications" yaml:"certifications"`
	PreferredShift  status.ShiftPeriod `json:"preferred_shift" yaml:"preferred_shift"`
	IsOnline        bool               `json:"is_online" yaml:"is_online"`
	CurrentShift    *Assignment        `json:"current_shift,omitempty" yaml:"-"`
}

// Assignment is the shift a nurse is currently working and its patients.
type Assignment struct {
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Patients []string  `json:"patients"`
}

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

type Preferences struct {
	NurseID               string `json:"nurse_id" yaml:"nurse_id"`
	VoiceInputDefault     bool   `json:"voice_input_default" yaml:"voice_input_default"`
	PriorityNotifications bool   `json:"priority_notifications" yaml:"priority_notifications"`
	AutoSaveNotes         bool   `json:"auto_save_notes" yaml:"auto_save_notes"`
	Theme                 Theme  `json:"theme" yaml:"theme"`
	Language              string `json:"language" yaml:"language"`
}

// DefaultPreferences are applied to nurses with no stored preferences.
func DefaultPreferences(nurseID string) Preferences {
	return Preferences{
		NurseID:               nurseID,
		PriorityNotifications: true,
		AutoSaveNotes:         true,
		Theme:                 ThemeLight,
		Language:              "en-US",
	}
}

func (p *Preferences) Validate() error {
	if p.Theme == "" {
		p.Theme = ThemeLight
	}
	if p.Theme != ThemeLight && p.Theme != ThemeDark {
		return fmt.Errorf("invalid theme %q (valid: light, dark)", p.Theme)
	}
	if p.Language == "" {
		return fmt.Errorf("language is required")
	}
	return nil
}

// ShiftRecord is one worked shift in a nurse's history.
type ShiftRecord struct {
	ID                string             `json:"id" yaml:"id"`
	NurseID           string             `json:"nurse_id" yaml:"nurse_id"`
	Date              string             `json:"date" yaml:"date"`
	Shift             status.ShiftPeriod `json:"shift" yaml:"shift"`
	PatientsHandled   int                `json:"patients_handled" yaml:"patients_handled"`
	NotesCreated      int                `json:"notes_created" yaml:"notes_created"`
	HandoffsCompleted int                `json:"handoffs_completed" yaml:"handoffs_completed"`
}

type Totals struct {
	Shifts   int `json:"shifts"`
	Patients int `json:"patients"`
	Notes    int `json:"notes"`
	Handoffs int `json:"handoffs"`
}

func Summarize(history []ShiftRecord) Totals {
	t := Totals{Shifts: len(history)}
	for _, h := range history {
		t.Patients += h.PatientsHandled
		t.Notes += h.NotesCreated
		t.Handoffs += h.HandoffsCompleted
	}
	return t
}

// RecentShiftLimit caps the history shown on a profile.
const RecentShiftLimit = 5

// Profile is the nurse page: identity, preferences and shift statistics.
type Profile struct {
	*Nurse
	Preferences  Preferences   `json:"preferences"`
	RecentShifts []ShiftRecord `json:"recent_shifts"`
	Totals       Totals        `json:"totals"`
}
