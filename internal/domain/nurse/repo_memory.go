package nurse

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

type Seed struct {
	Nurses      []*Nurse
	Preferences []Preferences
	History     []ShiftRecord
}

// MemoryRepository implements Repository, PreferencesRepository and
// HistoryRepository in process memory.
type MemoryRepository struct {
	mu          sync.RWMutex
	order       []string
	nurses      map[string]*Nurse
	preferences map[string]Preferences
	history     map[string][]ShiftRecord
}

func NewMemoryRepository(seed Seed) *MemoryRepository {
	r := &MemoryRepository{
		nurses:      make(map[string]*Nurse),
		preferences: make(map[string]Preferences),
		history:     make(map[string][]ShiftRecord),
	}
	for _, n := range seed.Nurses {
		r.order = append(r.order, n.ID)
		r.nurses[n.ID] = n.clone()
	}
	for _, p := range seed.Preferences {
		r.preferences[p.NurseID] = p
	}
	for _, h := range seed.History {
		r.history[h.NurseID] = append(r.history[h.NurseID], h)
	}
	for id := range r.history {
		sortHistory(r.history[id])
	}
	return r
}

func sortHistory(h []ShiftRecord) {
	sort.SliceStable(h, func(i, j int) bool { return h[i].Date > h[j].Date })
}

func (n *Nurse) clone() *Nurse {
	cp := *n
	cp.Specialization = append([]string(nil), n.Specialization...)
	cp.Certifications = append([]string(nil), n.Certifications...)
	if n.CurrentShift != nil {
		a := *n.CurrentShift
		a.Patients = append([]string(nil), n.CurrentShift.Patients...)
		cp.CurrentShift = &a
	}
	return &cp
}

func (r *MemoryRepository) GetByID(_ context.Context, id string) (*Nurse, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.nurses[id]
	if !ok {
		return nil, fmt.Errorf("nurse %s: %w", id, ErrNotFound)
	}
	return n.clone(), nil
}

func (r *MemoryRepository) List(_ context.Context) ([]*Nurse, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Nurse, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.nurses[id].clone())
	}
	return out, nil
}

func (r *MemoryRepository) GetPreferences(_ context.Context, nurseID string) (*Preferences, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.preferences[nurseID]
	if !ok {
		return nil, fmt.Errorf("preferences for %s: %w", nurseID, ErrNotFound)
	}
	return &p, nil
}

func (r *MemoryRepository) PutPreferences(_ context.Context, p *Preferences) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.nurses[p.NurseID]; !ok {
		return fmt.Errorf("nurse %s: %w", p.NurseID, ErrNotFound)
	}
	r.preferences[p.NurseID] = *p
	return nil
}

func (r *MemoryRepository) ListHistory(_ context.Context, nurseID string) ([]ShiftRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]ShiftRecord{}, r.history[nurseID]...), nil
}

func (r *MemoryRepository) AppendHistory(_ context.Context, rec ShiftRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.nurses[rec.NurseID]; !ok {
		return fmt.Errorf("nurse %s: %w", rec.NurseID, ErrNotFound)
	}
	r.history[rec.NurseID] = append(r.history[rec.NurseID], rec)
	sortHistory(r.history[rec.NurseID])
	return nil
}
