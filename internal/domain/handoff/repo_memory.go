package handoff

import (
	"context"
	"fmt"
	"sync"
)

// MemoryRepository keeps one summary per patient in process memory.
type MemoryRepository struct {
	mu        sync.RWMutex
	summaries map[string]*Summary
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{summaries: make(map[string]*Summary)}
}

func (r *MemoryRepository) Get(_ context.Context, patientID string) (*Summary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.summaries[patientID]
	if !ok {
		return nil, fmt.Errorf("patient %s: %w", patientID, ErrNotFound)
	}
	return s.clone(), nil
}

func (r *MemoryRepository) Put(_ context.Context, s *Summary) error {
	if s.PatientID == "" {
		return fmt.Errorf("summary has no patient id")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.summaries[s.PatientID] = s.clone()
	return nil
}
