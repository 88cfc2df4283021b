// Package seed builds the in-memory census and staff the server starts with,
// either from the bundled census.yaml or from a YAML file of the same shape.
package seed

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ehr/shifthandoff/internal/domain/nurse"
	"github.com/ehr/shifthandoff/internal/domain/patient"
	"github.com/ehr/shifthandoff/internal/domain/status"
)

//go:embed census.yaml
var defaultCensus []byte

// Bundle is the seed for every in-memory repository.
type Bundle struct {
	Patients patient.Seed
	Nurses   nurse.Seed
}

type document struct {
	Patients []patientDoc `yaml:"patients"`
	Nurses   []nurseDoc   `yaml:"nurses"`
}

type patientDoc struct {
	ID                 string          `yaml:"id"`
	Name               string          `yaml:"name"`
	Room               string          `yaml:"room"`
	AdmissionDate      string          `yaml:"admission_date"`
	PrimaryDiagnosis   string          `yaml:"primary_diagnosis"`
	Allergies          []string        `yaml:"allergies"`
	RiskLevel          string          `yaml:"risk_level"`
	IsolationStatus    string          `yaml:"isolation_status"`
	AcuityLevel        int             `yaml:"acuity_level"`
	VitalsMinutesAgo   *int            `yaml:"vitals_taken_minutes_ago"`
	NextMedInMinutes   *int            `yaml:"next_med_in_minutes"`
	HasAlerts          bool            `yaml:"has_alerts"`
	IsPendingDischarge bool            `yaml:"is_pending_discharge"`
	RequiresFollowUp   bool            `yaml:"requires_follow_up"`
	NursingNotes       []noteDoc       `yaml:"nursing_notes"`
	Status             *statusDoc      `yaml:"status"`
	Vitals             []vitalsDoc     `yaml:"vitals"`
	Medications        []medicationDoc `yaml:"medications"`
	Tasks              []taskDoc       `yaml:"tasks"`
}

type noteDoc struct {
	Text       string `yaml:"note"`
	NurseID    string `yaml:"nurse_id"`
	Category   string `yaml:"category"`
	MinutesAgo int    `yaml:"minutes_ago"`
}

type taskDoc struct {
	Description         string `yaml:"description"`
	Priority            string `yaml:"priority"`
	DueInMinutes        *int   `yaml:"due_in_minutes"`
	CompletedBy         string `yaml:"completed_by"`
	CompletedMinutesAgo *int   `yaml:"completed_minutes_ago"`
}

type statusDoc struct {
	HasNewOrders       bool   `yaml:"has_new_orders"`
	HasCriticalLabs    bool   `yaml:"has_critical_labs"`
	HasUnreadMessages  bool   `yaml:"has_unread_messages"`
	AssessedMinutesAgo *int   `yaml:"assessed_minutes_ago"`
	NextCareInMinutes  *int   `yaml:"next_care_in_minutes"`
	PainLevel          *int   `yaml:"pain_level"`
	Mobility           string `yaml:"mobility_status"`
}

type vitalsDoc struct {
	status.Snapshot `yaml:",inline"`
	MinutesAgo      int `yaml:"minutes_ago"`
}

type medicationDoc struct {
	Name             string `yaml:"name"`
	Dose             string `yaml:"dose"`
	Route            string `yaml:"route"`
	Frequency        string `yaml:"frequency"`
	NextDueInMinutes *int   `yaml:"next_due_in_minutes"`
	EndedMinutesAgo  *int   `yaml:"ended_minutes_ago"`
}

type nurseDoc struct {
	nurse.Nurse `yaml:",inline"`
	Assignment  *assignmentDoc      `yaml:"assignment"`
	Preferences *nurse.Preferences  `yaml:"preferences"`
	History     []nurse.ShiftRecord `yaml:"history"`
}

type assignmentDoc struct {
	StartedMinutesAgo int      `yaml:"started_minutes_ago"`
	Hours             int      `yaml:"hours"`
	Patients          []string `yaml:"patients"`
}

// Default returns the bundled census anchored at now.
func Default(now time.Time) (*Bundle, error) {
	return Parse(defaultCensus, now)
}

// LoadFile reads a census file. An empty path yields the default census.
func LoadFile(path string, now time.Time) (*Bundle, error) {
	if path == "" {
		return Default(now)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	b, err := Parse(data, now)
	if err != nil {
		return nil, fmt.Errorf("seed file %s: %w", path, err)
	}
	return b, nil
}

// Parse decodes a census document. Unknown keys are rejected so typos in
// a hand-written file surface at startup.
func Parse(data []byte, now time.Time) (*Bundle, error) {
	var doc document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && err != io.EOF {
		return nil, fmt.Errorf("parse census: %w", err)
	}
	return doc.build(now)
}

func offset(now time.Time, minutes *int, sign int) *time.Time {
	if minutes == nil {
		return nil
	}
	t := now.Add(time.Duration(sign**minutes) * time.Minute)
	return &t
}

func (d *document) build(now time.Time) (*Bundle, error) {
	b := &Bundle{
		Patients: patient.Seed{
			Statuses:    make(map[string]*patient.Status),
			Vitals:      make(map[string][]status.Snapshot),
			Medications: make(map[string][]patient.Medication),
		},
	}

	seen := make(map[string]bool)
	for i := range d.Patients {
		pd := &d.Patients[i]
		if pd.ID == "" {
			return nil, fmt.Errorf("patient %d: id is required", i)
		}
		if seen[pd.ID] {
			return nil, fmt.Errorf("patient %s: duplicate id", pd.ID)
		}
		seen[pd.ID] = true

		p := &patient.Patient{
			ID:                 pd.ID,
			Name:               pd.Name,
			Room:               pd.Room,
			AdmissionDate:      pd.AdmissionDate,
			PrimaryDiagnosis:   pd.PrimaryDiagnosis,
			Allergies:          pd.Allergies,
			RiskLevel:          patient.RiskLevel(pd.RiskLevel),
			IsolationStatus:    pd.IsolationStatus,
			AcuityLevel:        pd.AcuityLevel,
			LastVitalsTime:     offset(now, pd.VitalsMinutesAgo, -1),
			NextMedTime:        offset(now, pd.NextMedInMinutes, 1),
			HasAlerts:          pd.HasAlerts,
			IsPendingDischarge: pd.IsPendingDischarge,
			RequiresFollowUp:   pd.RequiresFollowUp,
		}
		if p.Allergies == nil {
			p.Allergies = []string{}
		}
		for j, nd := range pd.NursingNotes {
			if strings.TrimSpace(nd.Text) == "" {
				return nil, fmt.Errorf("patient %s: note %d is empty", pd.ID, j)
			}
			cat := nd.Category
			if cat == "" {
				cat = "general"
			}
			p.NursingNotes = append(p.NursingNotes, patient.Note{
				ID:        fmt.Sprintf("%s-note-%d", pd.ID, j+1),
				NurseID:   nd.NurseID,
				Text:      nd.Text,
				Category:  cat,
				CreatedAt: now.Add(-time.Duration(nd.MinutesAgo) * time.Minute),
			})
		}
		sort.SliceStable(p.NursingNotes, func(x, y int) bool {
			return p.NursingNotes[x].CreatedAt.After(p.NursingNotes[y].CreatedAt)
		})
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("patient %s: %w", pd.ID, err)
		}
		b.Patients.Patients = append(b.Patients.Patients, p)

		if sd := pd.Status; sd != nil {
			st := &patient.Status{
				HasNewOrders:       sd.HasNewOrders,
				HasCriticalLabs:    sd.HasCriticalLabs,
				HasUnreadMessages:  sd.HasUnreadMessages,
				LastAssessmentTime: offset(now, sd.AssessedMinutesAgo, -1),
				NextScheduledCare:  offset(now, sd.NextCareInMinutes, 1),
				PainLevel:          sd.PainLevel,
				Mobility:           patient.Mobility(sd.Mobility),
			}
			if err := st.Validate(); err != nil {
				return nil, fmt.Errorf("patient %s status: %w", pd.ID, err)
			}
			b.Patients.Statuses[pd.ID] = st
		}

		for _, vd := range pd.Vitals {
			snap := vd.Snapshot
			snap.TakenAt = now.Add(-time.Duration(vd.MinutesAgo) * time.Minute)
			if err := snap.Validate(); err != nil {
				return nil, fmt.Errorf("patient %s vitals: %w", pd.ID, err)
			}
			b.Patients.Vitals[pd.ID] = append(b.Patients.Vitals[pd.ID], snap)
		}

		for _, md := range pd.Medications {
			if md.Name == "" {
				return nil, fmt.Errorf("patient %s: medication name is required", pd.ID)
			}
			b.Patients.Medications[pd.ID] = append(b.Patients.Medications[pd.ID], patient.Medication{
				Name:      md.Name,
				Dose:      md.Dose,
				Route:     md.Route,
				Frequency: md.Frequency,
				NextDue:   offset(now, md.NextDueInMinutes, 1),
				EndDate:   offset(now, md.EndedMinutesAgo, -1),
			})
		}

		for j, td := range pd.Tasks {
			if td.Description == "" {
				return nil, fmt.Errorf("patient %s: task %d description is required", pd.ID, j)
			}
			prio, err := patient.ParseUrgency(td.Priority)
			if err != nil {
				return nil, fmt.Errorf("patient %s task %d: %w", pd.ID, j, err)
			}
			if (td.CompletedMinutesAgo == nil) != (td.CompletedBy == "") {
				return nil, fmt.Errorf("patient %s task %d: completed_by and completed_minutes_ago go together", pd.ID, j)
			}
			b.Patients.Tasks = append(b.Patients.Tasks, patient.Task{
				ID:          fmt.Sprintf("%s-task-%d", pd.ID, j+1),
				PatientID:   pd.ID,
				Description: td.Description,
				Priority:    prio,
				DueTime:     offset(now, td.DueInMinutes, 1),
				CompletedBy: td.CompletedBy,
				CompletedAt: offset(now, td.CompletedMinutesAgo, -1),
			})
		}
	}

	nurses := make(map[string]bool)
	for i := range d.Nurses {
		nd := &d.Nurses[i]
		if nd.ID == "" || nd.Name == "" {
			return nil, fmt.Errorf("nurse %d: id and name are required", i)
		}
		if nurses[nd.ID] {
			return nil, fmt.Errorf("nurse %s: duplicate id", nd.ID)
		}
		nurses[nd.ID] = true

		n := nd.Nurse
		if n.PreferredShift != "" {
			if _, err := status.ParseShiftPeriod(string(n.PreferredShift)); err != nil {
				return nil, fmt.Errorf("nurse %s: %w", nd.ID, err)
			}
		}
		if a := nd.Assignment; a != nil {
			for _, pid := range a.Patients {
				if !seen[pid] {
					return nil, fmt.Errorf("nurse %s: assigned to unknown patient %s", nd.ID, pid)
				}
			}
			start := now.Add(-time.Duration(a.StartedMinutesAgo) * time.Minute)
			n.CurrentShift = &nurse.Assignment{
				Start:    start,
				End:      start.Add(time.Duration(a.Hours) * time.Hour),
				Patients: a.Patients,
			}
		}
		b.Nurses.Nurses = append(b.Nurses.Nurses, &n)

		if nd.Preferences != nil {
			prefs := *nd.Preferences
			prefs.NurseID = nd.ID
			if err := prefs.Validate(); err != nil {
				return nil, fmt.Errorf("nurse %s preferences: %w", nd.ID, err)
			}
			b.Nurses.Preferences = append(b.Nurses.Preferences, prefs)
		}
		for _, h := range nd.History {
			h.NurseID = nd.ID
			b.Nurses.History = append(b.Nurses.History, h)
		}
	}

	return b, nil
}
