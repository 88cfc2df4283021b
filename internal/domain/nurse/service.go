package nurse

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ehr/shifthandoff/internal/domain/status"
)

type Service struct {
	nurses      Repository
	preferences PreferencesRepository
	history     HistoryRepository
	logger      zerolog.Logger
	now         func() time.Time
}

func NewService(nurses Repository, preferences PreferencesRepository, history HistoryRepository, logger zerolog.Logger) *Service {
	return &Service{
		nurses:      nurses,
		preferences: preferences,
		history:     history,
		logger:      logger.With().Str("component", "nurse").Logger(),
		now:         time.Now,
	}
}

func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Service) List(ctx context.Context) ([]*Nurse, error) {
	return s.nurses.List(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (*Nurse, error) {
	return s.nurses.GetByID(ctx, id)
}

// GetPreferences falls back to DefaultPreferences when none are stored.
func (s *Service) GetPreferences(ctx context.Context, nurseID string) (*Preferences, error) {
	if _, err := s.nurses.GetByID(ctx, nurseID); err != nil {
		return nil, err
	}
	p, err := s.preferences.GetPreferences(ctx, nurseID)
	if errors.Is(err, ErrNotFound) {
		d := DefaultPreferences(nurseID)
		return &d, nil
	}
	return p, err
}

func (s *Service) UpdatePreferences(ctx context.Context, nurseID string, p *Preferences) error {
	p.NurseID = nurseID
	if err := p.Validate(); err != nil {
		return err
	}
	if err := s.preferences.PutPreferences(ctx, p); err != nil {
		return err
	}
	s.logger.Info().Str("nurse_id", nurseID).Str("theme", string(p.Theme)).Msg("preferences updated")
	return nil
}

func (s *Service) History(ctx context.Context, nurseID string) ([]ShiftRecord, error) {
	if _, err := s.nurses.GetByID(ctx, nurseID); err != nil {
		return nil, err
	}
	return s.history.ListHistory(ctx, nurseID)
}

// RecordShift adds a worked shift to the nurse's history. Date defaults to
// today and the shift type to the period the current time falls in.
func (s *Service) RecordShift(ctx context.Context, rec *ShiftRecord) error {
	if rec.NurseID == "" {
		return fmt.Errorf("nurse_id is required")
	}
	if rec.PatientsHandled < 0 || rec.NotesCreated < 0 || rec.HandoffsCompleted < 0 {
		return fmt.Errorf("shift counts must not be negative")
	}
	now := s.now()
	if rec.Date == "" {
		rec.Date = now.Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", rec.Date); err != nil {
		return fmt.Errorf("invalid date %q: expected YYYY-MM-DD", rec.Date)
	}
	if rec.Shift == "" {
		rec.Shift = status.ShiftPeriodAt(now)
	} else if _, err := status.ParseShiftPeriod(string(rec.Shift)); err != nil {
		return err
	}
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	return s.history.AppendHistory(ctx, *rec)
}

// Profile assembles the nurse page.
func (s *Service) Profile(ctx context.Context, nurseID string) (*Profile, error) {
	n, err := s.nurses.GetByID(ctx, nurseID)
	if err != nil {
		return nil, err
	}
	prefs, err := s.GetPreferences(ctx, nurseID)
	if err != nil {
		return nil, err
	}
	history, err := s.history.ListHistory(ctx, nurseID)
	if err != nil {
		return nil, err
	}
	recent := history
	if len(recent) > RecentShiftLimit {
		recent = recent[:RecentShiftLimit]
	}
	return &Profile{
		Nurse:        n,
		Preferences:  *prefs,
		RecentShifts: recent,
		Totals:       Summarize(history),
	}, nil
}
