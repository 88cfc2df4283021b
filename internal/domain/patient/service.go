package patient

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ehr/shifthandoff/internal/domain/status"
	"github.com/ehr/shifthandoff/internal/platform/middleware"
)

type Service struct {
	patients    Repository
	statuses    StatusRepository
	vitals      VitalsRepository
	medications MedicationRepository
	chart       ChartRepository
	logger      zerolog.Logger
	now         func() time.Time
}

func NewService(
	patients Repository,
	statuses StatusRepository,
	vitals VitalsRepository,
	medications MedicationRepository,
	chart ChartRepository,
	logger zerolog.Logger,
) *Service {
	return &Service{
		patients:    patients,
		statuses:    statuses,
		vitals:      vitals,
		medications: medications,
		chart:       chart,
		logger:      logger.With().Str("component", "patient").Logger(),
		now:         time.Now,
	}
}

// SetClock replaces the wall clock used for derived values.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// ListParams selects and orders the census.
type ListParams struct {
	Sort   SortMode
	Filter FilterKind
	Query  string
}

// List returns the filtered census in the requested order.
func (s *Service) List(ctx context.Context, params ListParams) ([]*Patient, error) {
	all, err := s.patients.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	statuses, err := s.statuses.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("list statuses: %w", err)
	}
	out := Filter(all, params.Filter, params.Query, statuses)
	Sort(out, params.Sort)
	return out, nil
}

// Ranked returns the whole census in handoff priority order.
func (s *Service) Ranked(ctx context.Context) ([]*Patient, error) {
	return s.List(ctx, ListParams{Sort: SortPriority, Filter: FilterAll})
}

// Views derives display values for each patient against the current time.
func (s *Service) Views(patients []*Patient) []*View {
	now := s.now()
	out := make([]*View, 0, len(patients))
	for _, p := range patients {
		out = append(out, NewView(p, now))
	}
	return out
}

// Stats counts the whole census.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	all, err := s.patients.List(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("list patients: %w", err)
	}
	statuses, err := s.statuses.All(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("list statuses: %w", err)
	}
	return CountStats(all, statuses), nil
}

func (s *Service) Get(ctx context.Context, id string) (*Patient, error) {
	return s.patients.GetByID(ctx, id)
}

// Detail assembles the patient detail page. Missing status or vitals are
// left empty rather than failing the lookup.
func (s *Service) Detail(ctx context.Context, id string) (*Detail, error) {
	p, err := s.patients.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	now := s.now()
	d := &Detail{View: NewView(p, now), Medications: []MedicationView{}}

	st, err := s.statuses.Get(ctx, id)
	switch {
	case err == nil:
		d.Status = st
	case !errors.Is(err, ErrNotFound):
		return nil, err
	}

	latest, err := s.vitals.Latest(ctx, id)
	switch {
	case err == nil:
		d.Vitals = &VitalsView{
			Snapshot: *latest,
			Readings: latest.Readings(),
			TakenAgo: status.TimeAgo(latest.TakenAt, now),
		}
	case !errors.Is(err, ErrNotFound):
		return nil, err
	}

	meds, err := s.medications.ListByPatient(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, m := range meds {
		if !m.Active(now) {
			continue
		}
		d.Medications = append(d.Medications, MedicationView{
			Medication: m,
			NextDoseIn: status.OptionalTimeUntil(m.NextDue, now),
		})
	}

	tasks, err := s.chart.ListTasks(ctx, id)
	if err != nil {
		return nil, err
	}
	d.Tasks = NewTaskBoard(tasks, now)
	return d, nil
}

// Create admits a new patient. An id is generated when none is given and a
// default status is stored alongside.
func (s *Service) Create(ctx context.Context, p *Patient) error {
	if p.RiskLevel == "" {
		p.RiskLevel = RiskLow
	}
	if err := p.Validate(); err != nil {
		return err
	}
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.Allergies == nil {
		p.Allergies = []string{}
	}
	if err := s.patients.Create(ctx, p); err != nil {
		return err
	}
	if err := s.statuses.Put(ctx, p.ID, &Status{Mobility: MobilityIndependent}); err != nil {
		return err
	}
	s.logger.Info().
		Str("patient_id", p.ID).
		Str("room", p.Room).
		Int("acuity", p.AcuityLevel).
		Str("risk", string(p.RiskLevel)).
		Msg("patient admitted")
	return nil
}

func (s *Service) GetStatus(ctx context.Context, id string) (*Status, error) {
	return s.statuses.Get(ctx, id)
}

func (s *Service) UpdateStatus(ctx context.Context, id string, st *Status) error {
	if err := st.Validate(); err != nil {
		return err
	}
	if err := s.statuses.Put(ctx, id, st); err != nil {
		return err
	}
	prio := UrgencyMedium
	if st.HasCriticalLabs {
		prio = UrgencyHigh
	}
	s.logActivity(ctx, Activity{
		PatientID: id,
		Action:    "Updated status",
		Category:  ActivityAssessment,
		Details:   st.describe(),
		Priority:  prio,
	})
	return nil
}

// RecordVitals stores a snapshot. The repository moves the patient's
// last-vitals time when the snapshot is the newest one.
func (s *Service) RecordVitals(ctx context.Context, id string, snap status.Snapshot) (*VitalsView, error) {
	now := s.now()
	if snap.TakenAt.IsZero() {
		snap.TakenAt = now
	}
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	if err := s.vitals.Append(ctx, id, snap); err != nil {
		return nil, err
	}
	prio := UrgencyMedium
	if snap.Abnormal() {
		prio = UrgencyHigh
		s.logger.Warn().Str("patient_id", id).Msg("vitals outside normal range")
	}
	s.logActivity(ctx, Activity{
		PatientID: id,
		Action:    "Recorded vital signs",
		Category:  ActivityVitals,
		Details:   snap.String(),
		Priority:  prio,
	})
	return newVitalsView(snap, now), nil
}

// VitalsHistory returns every snapshot for the patient, newest first.
func (s *Service) VitalsHistory(ctx context.Context, id string) ([]*VitalsView, error) {
	if _, err := s.patients.GetByID(ctx, id); err != nil {
		return nil, err
	}
	hist, err := s.vitals.History(ctx, id)
	if err != nil {
		return nil, err
	}
	now := s.now()
	out := make([]*VitalsView, 0, len(hist))
	for i := len(hist) - 1; i >= 0; i-- {
		out = append(out, newVitalsView(hist[i], now))
	}
	return out, nil
}

func newVitalsView(snap status.Snapshot, now time.Time) *VitalsView {
	return &VitalsView{
		Snapshot: snap,
		Readings: snap.Readings(),
		TakenAgo: status.TimeAgo(snap.TakenAt, now),
	}
}

// RecordActivity appends a to the patient's chart history and stamps the
// patient as last modified by it. The acting nurse is taken from ctx when a
// carries none.
func (s *Service) RecordActivity(ctx context.Context, a Activity) error {
	if !validActivityCategories[a.Category] {
		return fmt.Errorf("invalid activity category %q", a.Category)
	}
	if a.Action == "" {
		return fmt.Errorf("activity action is required")
	}
	prio, err := ParseUrgency(string(a.Priority))
	if err != nil {
		return err
	}
	a.Priority = prio
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.Timestamp.IsZero() {
		a.Timestamp = s.now()
	}
	if a.NurseID == "" {
		a.NurseID = middleware.NurseIDFromContext(ctx)
	}
	return s.chart.AppendActivity(ctx, a)
}

// logActivity records a after the write it describes has already succeeded,
// so a failure is logged rather than returned.
func (s *Service) logActivity(ctx context.Context, a Activity) {
	if err := s.RecordActivity(ctx, a); err != nil {
		s.logger.Warn().Err(err).
			Str("patient_id", a.PatientID).
			Str("action", a.Action).
			Msg("failed to record activity")
	}
}

// Activity returns the patient's chart history, newest first.
func (s *Service) Activity(ctx context.Context, id string) ([]Activity, error) {
	if _, err := s.patients.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.chart.ListActivity(ctx, id)
}

// AddNote stores a nursing note. Blank notes are rejected.
func (s *Service) AddNote(ctx context.Context, id string, in NoteInput) (*Note, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, ErrEmptyNote
	}
	n := Note{
		ID:        uuid.New().String(),
		NurseID:   in.NurseID,
		Text:      text,
		Category:  in.Category,
		CreatedAt: s.now(),
	}
	if n.NurseID == "" {
		n.NurseID = middleware.NurseIDFromContext(ctx)
	}
	if n.Category == "" {
		n.Category = "general"
	}
	if err := s.chart.AddNote(ctx, id, n); err != nil {
		return nil, err
	}
	s.logActivity(ctx, Activity{
		PatientID: id,
		NurseID:   n.NurseID,
		Timestamp: n.CreatedAt,
		Action:    "Added nursing note",
		Category:  ActivityNotes,
		Details:   text,
	})
	return &n, nil
}

// AddTask opens a follow-up task on the patient.
func (s *Service) AddTask(ctx context.Context, id string, in TaskInput) (*Task, error) {
	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		return nil, fmt.Errorf("description is required")
	}
	prio, err := ParseUrgency(in.Priority)
	if err != nil {
		return nil, err
	}
	t := Task{
		ID:          uuid.New().String(),
		PatientID:   id,
		Description: desc,
		Priority:    prio,
		DueTime:     in.DueTime,
	}
	if err := s.chart.AddTask(ctx, t); err != nil {
		return nil, err
	}
	s.logActivity(ctx, Activity{
		PatientID: id,
		Action:    "Added task",
		Category:  ActivityProcedure,
		Details:   desc,
		Priority:  prio,
	})
	return &t, nil
}

// CompleteTask marks a task done by the acting nurse.
func (s *Service) CompleteTask(ctx context.Context, id, taskID string) (*Task, error) {
	t, err := s.chart.CompleteTask(ctx, id, taskID, middleware.NurseIDFromContext(ctx), s.now())
	if err != nil {
		return nil, err
	}
	s.logActivity(ctx, Activity{
		PatientID: id,
		Timestamp: *t.CompletedAt,
		Action:    "Completed task",
		Category:  ActivityProcedure,
		Details:   t.Description,
		Priority:  t.Priority,
	})
	return t, nil
}

// CensusUpdate carries the census fields a nurse may edit. Nil fields are
// left unchanged.
type CensusUpdate struct {
	Room               *string   `json:"room"`
	PrimaryDiagnosis   *string   `json:"primary_diagnosis"`
	Allergies          *[]string `json:"allergies"`
	RiskLevel          *string   `json:"risk_level"`
	IsolationStatus    *string   `json:"isolation_status"`
	AcuityLevel        *int      `json:"acuity_level"`
	HasAlerts          *bool     `json:"has_alerts"`
	IsPendingDischarge *bool     `json:"is_pending_discharge"`
	RequiresFollowUp   *bool     `json:"requires_follow_up"`
}

// apply writes the set fields onto p and names each one it changed.
func (u *CensusUpdate) apply(p *Patient) []string {
	var changed []string
	setString := func(name string, dst *string, v *string) {
		if v != nil && *dst != *v {
			*dst = *v
			changed = append(changed, name)
		}
	}
	setBool := func(name string, dst *bool, v *bool) {
		if v != nil && *dst != *v {
			*dst = *v
			changed = append(changed, name)
		}
	}
	setString("room", &p.Room, u.Room)
	setString("primary_diagnosis", &p.PrimaryDiagnosis, u.PrimaryDiagnosis)
	if u.Allergies != nil {
		p.Allergies = append([]string{}, (*u.Allergies)...)
		changed = append(changed, "allergies")
	}
	if u.RiskLevel != nil && string(p.RiskLevel) != *u.RiskLevel {
		p.RiskLevel = RiskLevel(*u.RiskLevel)
		changed = append(changed, "risk_level")
	}
	setString("isolation_status", &p.IsolationStatus, u.IsolationStatus)
	if u.AcuityLevel != nil && p.AcuityLevel != *u.AcuityLevel {
		p.AcuityLevel = *u.AcuityLevel
		changed = append(changed, "acuity_level")
	}
	setBool("has_alerts", &p.HasAlerts, u.HasAlerts)
	setBool("is_pending_discharge", &p.IsPendingDischarge, u.IsPendingDischarge)
	setBool("requires_follow_up", &p.RequiresFollowUp, u.RequiresFollowUp)
	return changed
}

// UpdateCensus edits census fields in place and records which ones changed.
// An update that changes nothing records no activity.
func (s *Service) UpdateCensus(ctx context.Context, id string, u CensusUpdate) (*Patient, error) {
	var (
		changed []string
		updated *Patient
	)
	err := s.patients.Update(ctx, id, func(p *Patient) error {
		changed = u.apply(p)
		if err := p.Validate(); err != nil {
			return err
		}
		updated = p.clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(changed) == 0 {
		return updated, nil
	}
	prio := UrgencyMedium
	if updated.Tier() == TierCritical {
		prio = UrgencyHigh
	}
	s.logActivity(ctx, Activity{
		PatientID: id,
		Action:    "Updated " + strings.Join(changed, ", "),
		Category:  ActivityAssessment,
		Details:   fmt.Sprintf("acuity %d, risk %s", updated.AcuityLevel, updated.RiskLevel),
		Priority:  prio,
	})
	s.logger.Info().Str("patient_id", id).Strs("fields", changed).Msg("census updated")
	// Re-read so the response carries the activity stamp.
	if p, err := s.patients.GetByID(ctx, id); err == nil {
		updated = p
	}
	return updated, nil
}
