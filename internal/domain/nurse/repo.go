package nurse

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("nurse not found")

type Repository interface {
	GetByID(ctx context.Context, id string) (*Nurse, error)
	List(ctx context.Context) ([]*Nurse, error)
}

type PreferencesRepository interface {
	GetPreferences(ctx context.Context, nurseID string) (*Preferences, error)
	PutPreferences(ctx context.Context, p *Preferences) error
}

type HistoryRepository interface {
	// ListHistory returns the nurse's shifts, most recent first.
	ListHistory(ctx context.Context, nurseID string) ([]ShiftRecord, error)
	AppendHistory(ctx context.Context, r ShiftRecord) error
}
