package handoff

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when a patient has no handoff summary yet.
	ErrNotFound = errors.New("handoff not found")
	// ErrShiftCompleted is returned when writing to a finished shift.
	ErrShiftCompleted = errors.New("shift already completed")
	// ErrShiftInReview is returned when a shift is submitted for review twice.
	ErrShiftInReview = errors.New("shift already pending review")
)

type Repository interface {
	Get(ctx context.Context, patientID string) (*Summary, error)
	Put(ctx context.Context, s *Summary) error
}
