package patient

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ehr/shifthandoff/internal/domain/status"
)

// Seed is the initial census handed to the in-memory repositories.
type Seed struct {
	Patients    []*Patient
	Statuses    map[string]*Status
	Vitals      map[string][]status.Snapshot
	Medications map[string][]Medication
	Tasks       []Task
}

// MemoryRepository keeps the census in process memory. It implements
// Repository, StatusRepository, VitalsRepository, MedicationRepository and
// ChartRepository.
// Stored values are copied on the way in and out so callers never share
// memory with the store.
type MemoryRepository struct {
	mu          sync.RWMutex
	order       []string
	patients    map[string]*Patient
	statuses    map[string]*Status
	vitals      map[string][]status.Snapshot
	medications map[string][]Medication
	activity    map[string][]Activity
	tasks       map[string][]Task
}

// NewMemoryRepository builds a store holding seed.
func NewMemoryRepository(seed Seed) *MemoryRepository {
	r := &MemoryRepository{
		patients:    make(map[string]*Patient),
		statuses:    make(map[string]*Status),
		vitals:      make(map[string][]status.Snapshot),
		medications: make(map[string][]Medication),
		activity:    make(map[string][]Activity),
		tasks:       make(map[string][]Task),
	}
	for _, p := range seed.Patients {
		r.order = append(r.order, p.ID)
		r.patients[p.ID] = p.clone()
	}
	for id, s := range seed.Statuses {
		cp := *s
		r.statuses[id] = &cp
	}
	for id, v := range seed.Vitals {
		r.vitals[id] = append([]status.Snapshot(nil), v...)
	}
	for id, m := range seed.Medications {
		r.medications[id] = append([]Medication(nil), m...)
	}
	for _, t := range seed.Tasks {
		r.tasks[t.PatientID] = append(r.tasks[t.PatientID], cloneTask(t))
	}
	return r
}

func (r *MemoryRepository) Create(_ context.Context, p *Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.patients[p.ID]; ok {
		return fmt.Errorf("patient %s already exists", p.ID)
	}
	r.order = append(r.order, p.ID)
	r.patients[p.ID] = p.clone()
	return nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id string) (*Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.patients[id]
	if !ok {
		return nil, fmt.Errorf("get patient %s: %w", id, ErrNotFound)
	}
	return p.clone(), nil
}

func (r *MemoryRepository) Update(_ context.Context, id string, fn func(p *Patient) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.patients[id]
	if !ok {
		return fmt.Errorf("update patient %s: %w", id, ErrNotFound)
	}
	next := cur.clone()
	if err := fn(next); err != nil {
		return err
	}
	next.ID = id
	r.patients[id] = next
	return nil
}

func (r *MemoryRepository) List(_ context.Context) ([]*Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Patient, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.patients[id].clone())
	}
	return out, nil
}

func (p *Patient) clone() *Patient {
	cp := *p
	cp.Allergies = append([]string(nil), p.Allergies...)
	cp.NursingNotes = make([]Note, len(p.NursingNotes))
	copy(cp.NursingNotes, p.NursingNotes)
	if p.LastModified != nil {
		m := *p.LastModified
		m.Changes = append([]string(nil), m.Changes...)
		cp.LastModified = &m
	}
	return &cp
}

// -- Status --

func (r *MemoryRepository) Get(_ context.Context, patientID string) (*Status, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.statuses[patientID]
	if !ok {
		return nil, fmt.Errorf("get status %s: %w", patientID, ErrNotFound)
	}
	cp := *s
	return &cp, nil
}

func (r *MemoryRepository) Put(_ context.Context, patientID string, s *Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.patients[patientID]; !ok {
		return fmt.Errorf("put status %s: %w", patientID, ErrNotFound)
	}
	cp := *s
	r.statuses[patientID] = &cp
	return nil
}

func (r *MemoryRepository) All(_ context.Context) (map[string]*Status, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]*Status, len(r.statuses))
	for id, s := range r.statuses {
		cp := *s
		out[id] = &cp
	}
	return out, nil
}

// -- Vitals --

func (r *MemoryRepository) Append(_ context.Context, patientID string, s status.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.patients[patientID]
	if !ok {
		return fmt.Errorf("append vitals %s: %w", patientID, ErrNotFound)
	}
	r.vitals[patientID] = append(r.vitals[patientID], s)
	if p.LastVitalsTime == nil || s.TakenAt.After(*p.LastVitalsTime) {
		taken := s.TakenAt
		p.LastVitalsTime = &taken
	}
	return nil
}

func (r *MemoryRepository) Latest(_ context.Context, patientID string) (*status.Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v := r.vitals[patientID]
	if len(v) == 0 {
		return nil, fmt.Errorf("latest vitals %s: %w", patientID, ErrNotFound)
	}
	latest := v[0]
	for _, s := range v[1:] {
		if !s.TakenAt.Before(latest.TakenAt) {
			latest = s
		}
	}
	return &latest, nil
}

func (r *MemoryRepository) History(_ context.Context, patientID string) ([]status.Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := append([]status.Snapshot(nil), r.vitals[patientID]...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].TakenAt.Before(out[j].TakenAt) })
	return out, nil
}

// -- Medications --

func (r *MemoryRepository) ListByPatient(_ context.Context, patientID string) ([]Medication, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Medication(nil), r.medications[patientID]...), nil
}

// -- Chart --

func (r *MemoryRepository) AppendActivity(_ context.Context, a Activity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.patients[a.PatientID]
	if !ok {
		return fmt.Errorf("append activity %s: %w", a.PatientID, ErrNotFound)
	}
	r.activity[a.PatientID] = append(r.activity[a.PatientID], a)
	p.LastModified = &Modification{By: a.NurseID, At: a.Timestamp, Changes: []string{a.Action}}
	return nil
}

func (r *MemoryRepository) ListActivity(_ context.Context, patientID string) ([]Activity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	log := r.activity[patientID]
	out := make([]Activity, 0, len(log))
	for i := len(log) - 1; i >= 0; i-- {
		out = append(out, log[i])
	}
	return out, nil
}

func (r *MemoryRepository) AddNote(_ context.Context, patientID string, n Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.patients[patientID]
	if !ok {
		return fmt.Errorf("add note %s: %w", patientID, ErrNotFound)
	}
	p.NursingNotes = append([]Note{n}, p.NursingNotes...)
	return nil
}

func (r *MemoryRepository) AddTask(_ context.Context, t Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.patients[t.PatientID]; !ok {
		return fmt.Errorf("add task %s: %w", t.PatientID, ErrNotFound)
	}
	r.tasks[t.PatientID] = append(r.tasks[t.PatientID], cloneTask(t))
	return nil
}

func (r *MemoryRepository) CompleteTask(_ context.Context, patientID, taskID, by string, at time.Time) (*Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.patients[patientID]; !ok {
		return nil, fmt.Errorf("complete task %s: %w", patientID, ErrNotFound)
	}
	tasks := r.tasks[patientID]
	for i := range tasks {
		if tasks[i].ID != taskID {
			continue
		}
		if tasks[i].Completed() {
			return nil, ErrTaskCompleted
		}
		tasks[i].CompletedBy = by
		tasks[i].CompletedAt = &at
		done := cloneTask(tasks[i])
		return &done, nil
	}
	return nil, fmt.Errorf("complete task %s: %w", taskID, ErrTaskNotFound)
}

func (r *MemoryRepository) ListTasks(_ context.Context, patientID string) ([]Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Task, 0, len(r.tasks[patientID]))
	for _, t := range r.tasks[patientID] {
		out = append(out, cloneTask(t))
	}
	return out, nil
}

func cloneTask(t Task) Task {
	if t.DueTime != nil {
		d := *t.DueTime
		t.DueTime = &d
	}
	if t.CompletedAt != nil {
		c := *t.CompletedAt
		t.CompletedAt = &c
	}
	return t
}
