package handoff

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ehr/shifthandoff/internal/domain/patient"
	"github.com/ehr/shifthandoff/internal/domain/status"
)

const (
	EventShiftStarted   = "handoff.shift_started"
	EventEntryRecorded  = "handoff.entry_recorded"
	EventShiftCompleted = "handoff.shift_completed"
	EventShiftInReview  = "handoff.shift_review_requested"
)

// Topic is the push topic carrying a patient's handoff events.
func Topic(patientID string) string {
	return "patient:" + patientID
}

// PatientDirectory resolves patients by id.
type PatientDirectory interface {
	Get(ctx context.Context, id string) (*patient.Patient, error)
}

// EventPublisher delivers handoff events to subscribers.
type EventPublisher interface {
	Emit(ctx context.Context, topic, eventType, resourceID string, data interface{}) error
}

// EntryInput is what a nurse submits for a new handoff entry.
type EntryInput struct {
	Category    string `json:"category"`
	Content     string `json:"content"`
	InputMethod string `json:"input_method"`
	Priority    string `json:"priority"`
	IsComplete  bool   `json:"is_complete"`
}

type Service struct {
	// mu serializes read-modify-write cycles on summaries.
	mu        sync.Mutex
	summaries Repository
	patients  PatientDirectory
	events    EventPublisher
	activity  patient.ActivityRecorder
	logger    zerolog.Logger
	now       func() time.Time
	loc       *time.Location
}

func NewService(summaries Repository, patients PatientDirectory, logger zerolog.Logger) *Service {
	return &Service{
		summaries: summaries,
		patients:  patients,
		logger:    logger.With().Str("component", "handoff").Logger(),
		now:       time.Now,
		loc:       time.Local,
	}
}

// SetEventPublisher attaches an optional publisher for handoff events.
func (s *Service) SetEventPublisher(p EventPublisher) {
	s.events = p
}

// SetActivityRecorder copies handoff writes into the patient's chart history.
func (s *Service) SetActivityRecorder(r patient.ActivityRecorder) {
	s.activity = r
}

func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// SetLocation sets the facility time zone used to name shifts.
func (s *Service) SetLocation(loc *time.Location) {
	s.loc = loc
}

func (s *Service) emit(ctx context.Context, patientID, eventType string, data interface{}) {
	if s.events == nil {
		return
	}
	if err := s.events.Emit(ctx, Topic(patientID), eventType, patientID, data); err != nil {
		s.logger.Warn().Err(err).Str("event", eventType).Msg("failed to publish handoff event")
	}
}

func (s *Service) record(ctx context.Context, a patient.Activity) {
	if s.activity == nil {
		return
	}
	if err := s.activity.RecordActivity(ctx, a); err != nil {
		s.logger.Warn().Err(err).Str("patient_id", a.PatientID).Msg("failed to record handoff activity")
	}
}

// StartShift opens a new shift for the patient. Entries and completion flags
// from any previous shift are discarded.
func (s *Service) StartShift(ctx context.Context, patientID string) (*Summary, error) {
	if _, err := s.patients.Get(ctx, patientID); err != nil {
		return nil, err
	}
	now := s.now()
	local := now.In(s.loc)
	sum := &Summary{
		PatientID: patientID,
		CurrentShift: &Shift{
			ID:        uuid.New().String(),
			PatientID: patientID,
			ShiftDate: local.Format("2006-01-02"),
			Type:      status.ShiftPeriodAt(local),
			StartTime: now,
			Status:    ShiftActive,
		},
		Entries:     []Entry{},
		LastUpdated: now,
	}

	s.mu.Lock()
	err := s.summaries.Put(ctx, sum)
	s.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("store summary: %w", err)
	}

	s.logger.Info().
		Str("patient_id", patientID).
		Str("shift_id", sum.CurrentShift.ID).
		Str("shift_type", string(sum.CurrentShift.Type)).
		Msg("shift started")
	s.emit(ctx, patientID, EventShiftStarted, sum.CurrentShift)
	s.record(ctx, patient.Activity{
		PatientID: patientID,
		Timestamp: now,
		Action:    "Started " + string(sum.CurrentShift.Type) + " shift handoff",
		Category:  patient.ActivityCommunication,
		Priority:  patient.UrgencyLow,
	})
	return sum, nil
}

// RecordEntry appends an entry to the active shift and marks its category
// complete. Empty content is rejected before anything is stored.
func (s *Service) RecordEntry(ctx context.Context, patientID string, in EntryInput) (*Entry, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, fmt.Errorf("content is required")
	}
	cat, err := ParseCategory(in.Category)
	if err != nil {
		return nil, err
	}
	method, err := ParseInputMethod(in.InputMethod)
	if err != nil {
		return nil, err
	}
	prio := PriorityForCategory(cat)
	if in.Priority != "" {
		if prio, err = ParsePriority(in.Priority); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sum, err := s.summaries.Get(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if sum.CurrentShift == nil || sum.CurrentShift.Status == ShiftCompleted {
		return nil, ErrShiftCompleted
	}

	now := s.now()
	e := Entry{
		ID:          uuid.New().String(),
		ShiftID:     sum.CurrentShift.ID,
		PatientID:   patientID,
		Timestamp:   now,
		InputMethod: method,
		Category:    cat,
		Priority:    prio,
		Content:     content,
		IsComplete:  in.IsComplete,
	}
	sum.Entries = append(sum.Entries, e)
	flipped := sum.Completion.Mark(cat)
	sum.LastUpdated = now
	if err := s.summaries.Put(ctx, sum); err != nil {
		return nil, fmt.Errorf("store summary: %w", err)
	}

	s.logger.Info().
		Str("patient_id", patientID).
		Str("category", string(cat)).
		Str("priority", string(prio)).
		Bool("completed_category", flipped).
		Int("completion_percent", sum.Completion.Percentage()).
		Msg("handoff entry recorded")
	s.emit(ctx, patientID, EventEntryRecorded, e)
	s.record(ctx, patient.Activity{
		PatientID: patientID,
		Timestamp: now,
		Action:    "Handoff " + string(cat) + " entry",
		Category:  activityCategory(cat),
		Details:   content,
		Priority:  activityUrgency(prio),
	})
	return &e, nil
}

// Report builds the handoff view for the patient's current shift.
func (s *Service) Report(ctx context.Context, patientID string, skipOptional bool) (*Report, error) {
	p, err := s.patients.Get(ctx, patientID)
	if err != nil {
		return nil, err
	}
	sum, err := s.summaries.Get(ctx, patientID)
	if err != nil {
		return nil, err
	}

	r := &Report{
		PatientID:         patientID,
		PatientName:       p.Name,
		CurrentShift:      sum.CurrentShift,
		Completion:        sum.Completion,
		CompletionPercent: sum.Completion.Percentage(),
		Entries:           sum.RecentEntries(),
		CriticalEntries:   sum.CriticalEntries(),
		PendingEntries:    sum.PendingEntries(),
		LastUpdated:       sum.LastUpdated,
	}
	if sh := sum.CurrentShift; sh != nil {
		end := s.now()
		if sh.EndTime != nil {
			end = *sh.EndTime
		}
		r.ShiftDuration = status.ShiftDuration(sh.StartTime, end)
	}
	if prompt, ok := NextPrompt(sum.Completion, skipOptional); ok {
		v := prompt.View(p.Name)
		r.NextPrompt = &v
	}
	return r, nil
}

// CompleteShift closes the active shift.
func (s *Service) CompleteShift(ctx context.Context, patientID string) (*Shift, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sum, err := s.summaries.Get(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if sum.CurrentShift == nil || sum.CurrentShift.Status == ShiftCompleted {
		return nil, ErrShiftCompleted
	}
	now := s.now()
	sum.CurrentShift.Status = ShiftCompleted
	sum.CurrentShift.EndTime = &now
	sum.LastUpdated = now
	if err := s.summaries.Put(ctx, sum); err != nil {
		return nil, fmt.Errorf("store summary: %w", err)
	}

	s.logger.Info().
		Str("patient_id", patientID).
		Str("shift_id", sum.CurrentShift.ID).
		Int("entries", len(sum.Entries)).
		Int("completion_percent", sum.Completion.Percentage()).
		Msg("shift completed")
	s.emit(ctx, patientID, EventShiftCompleted, sum.CurrentShift)
	s.record(ctx, patient.Activity{
		PatientID: patientID,
		Timestamp: now,
		Action:    "Completed shift handoff",
		Category:  patient.ActivityCommunication,
		Details:   fmt.Sprintf("%d entries, %d%% complete", len(sum.Entries), sum.Completion.Percentage()),
		Priority:  patient.UrgencyLow,
	})
	return sum.CurrentShift, nil
}

// SubmitForReview moves the active shift to pending review. Entries may
// still be added until the shift is completed.
func (s *Service) SubmitForReview(ctx context.Context, patientID string) (*Shift, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sum, err := s.summaries.Get(ctx, patientID)
	if err != nil {
		return nil, err
	}
	switch {
	case sum.CurrentShift == nil || sum.CurrentShift.Status == ShiftCompleted:
		return nil, ErrShiftCompleted
	case sum.CurrentShift.Status == ShiftPendingReview:
		return nil, ErrShiftInReview
	}
	now := s.now()
	sum.CurrentShift.Status = ShiftPendingReview
	sum.LastUpdated = now
	if err := s.summaries.Put(ctx, sum); err != nil {
		return nil, fmt.Errorf("store summary: %w", err)
	}

	s.logger.Info().
		Str("patient_id", patientID).
		Str("shift_id", sum.CurrentShift.ID).
		Int("completion_percent", sum.Completion.Percentage()).
		Msg("shift submitted for review")
	s.emit(ctx, patientID, EventShiftInReview, sum.CurrentShift)
	s.record(ctx, patient.Activity{
		PatientID: patientID,
		Timestamp: now,
		Action:    "Submitted handoff for review",
		Category:  patient.ActivityCommunication,
		Priority:  patient.UrgencyMedium,
	})
	return sum.CurrentShift, nil
}

func activityCategory(c Category) patient.ActivityCategory {
	switch c {
	case CategoryVitals:
		return patient.ActivityVitals
	case CategoryMedications:
		return patient.ActivityMedication
	case CategoryAssessment:
		return patient.ActivityAssessment
	case CategoryInterventions:
		return patient.ActivityProcedure
	}
	return patient.ActivityCommunication
}

func activityUrgency(p Priority) patient.Urgency {
	switch p {
	case PriorityCritical:
		return patient.UrgencyHigh
	case PriorityImportant:
		return patient.UrgencyMedium
	}
	return patient.UrgencyLow
}

// IsNotFound reports whether err means the patient or its handoff is missing.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, patient.ErrNotFound)
}
