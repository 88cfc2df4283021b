package patient

import (
	"context"
	"errors"
	"time"

	"github.com/ehr/shifthandoff/internal/domain/status"
)

// ErrNotFound is returned when a patient id has no record.
var ErrNotFound = errors.New("patient not found")

var (
	ErrTaskNotFound  = errors.New("task not found")
	ErrTaskCompleted = errors.New("task already completed")
	ErrEmptyNote     = errors.New("note text is required")
)

type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id string) (*Patient, error)
	// Update applies fn to the stored patient under the store's lock. The
	// change is kept only when fn returns nil.
	Update(ctx context.Context, id string, fn func(p *Patient) error) error
	// List returns every patient in admission (insertion) order.
	List(ctx context.Context) ([]*Patient, error)
}

type StatusRepository interface {
	Get(ctx context.Context, patientID string) (*Status, error)
	Put(ctx context.Context, patientID string, s *Status) error
	All(ctx context.Context) (map[string]*Status, error)
}

type VitalsRepository interface {
	// Append stores s and moves the patient's LastVitalsTime forward when s
	// is newer, in one step.
	Append(ctx context.Context, patientID string, s status.Snapshot) error
	Latest(ctx context.Context, patientID string) (*status.Snapshot, error)
	// History returns snapshots oldest first.
	History(ctx context.Context, patientID string) ([]status.Snapshot, error)
}

type MedicationRepository interface {
	ListByPatient(ctx context.Context, patientID string) ([]Medication, error)
}

// ChartRepository stores the activity log, nursing notes and tasks.
type ChartRepository interface {
	// AppendActivity stores a and stamps the patient's LastModified with it.
	AppendActivity(ctx context.Context, a Activity) error
	// ListActivity returns a patient's activity newest first.
	ListActivity(ctx context.Context, patientID string) ([]Activity, error)
	AddNote(ctx context.Context, patientID string, n Note) error
	AddTask(ctx context.Context, t Task) error
	CompleteTask(ctx context.Context, patientID, taskID, by string, at time.Time) (*Task, error)
	ListTasks(ctx context.Context, patientID string) ([]Task, error)
}
