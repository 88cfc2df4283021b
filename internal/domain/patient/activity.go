package patient

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ehr/shifthandoff/internal/domain/status"
)

// ActivityCategory groups chart activity for display.
type ActivityCategory string

const (
	ActivityVitals        ActivityCategory = "vitals"
	ActivityMedication    ActivityCategory = "medication"
	ActivityAssessment    ActivityCategory = "assessment"
	ActivityNotes         ActivityCategory = "notes"
	ActivityProcedure     ActivityCategory = "procedure"
	ActivityCommunication ActivityCategory = "communication"
)

var validActivityCategories = map[ActivityCategory]bool{
	ActivityVitals: true, ActivityMedication: true, ActivityAssessment: true,
	ActivityNotes: true, ActivityProcedure: true, ActivityCommunication: true,
}

// Urgency is the low/medium/high scale shared by activity and tasks.
type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

// ParseUrgency validates an urgency; the empty string means medium.
func ParseUrgency(s string) (Urgency, error) {
	switch u := Urgency(s); u {
	case "":
		return UrgencyMedium, nil
	case UrgencyLow, UrgencyMedium, UrgencyHigh:
		return u, nil
	}
	return "", fmt.Errorf("invalid priority %q (valid: low, medium, high)", s)
}

// Activity is one entry in a patient's chart history.
type Activity struct {
	ID        string           `json:"id"`
	PatientID string           `json:"patient_id"`
	Timestamp time.Time        `json:"timestamp"`
	NurseID   string           `json:"nurse_id,omitempty"`
	Action    string           `json:"action"`
	Category  ActivityCategory `json:"category"`
	Details   string           `json:"details,omitempty"`
	Priority  Urgency          `json:"priority"`
}

// ActivityRecorder accepts chart activity from other domains.
type ActivityRecorder interface {
	RecordActivity(ctx context.Context, a Activity) error
}

// Modification is the last-change stamp shown on a patient card.
type Modification struct {
	By      string    `json:"by,omitempty"`
	At      time.Time `json:"at"`
	Changes []string  `json:"changes"`
}

// Note is a free-text nursing note.
type Note struct {
	ID        string    `json:"id"`
	NurseID   string    `json:"nurse_id,omitempty"`
	Text      string    `json:"note"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"timestamp"`
}

// NoteInput is the body of a new nursing note.
type NoteInput struct {
	Text     string `json:"note"`
	NurseID  string `json:"nurse_id"`
	Category string `json:"category"`
}

// Task is a follow-up item on the patient's shift.
type Task struct {
	ID          string     `json:"id"`
	PatientID   string     `json:"patient_id"`
	Description string     `json:"description"`
	Priority    Urgency    `json:"priority"`
	DueTime     *time.Time `json:"due_time,omitempty"`
	CompletedBy string     `json:"completed_by,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func (t *Task) Completed() bool {
	return t.CompletedAt != nil
}

// TaskInput is the body of a new task.
type TaskInput struct {
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	DueTime     *time.Time `json:"due_time"`
}

// TaskView is a task with its countdown or age.
type TaskView struct {
	Task
	DueIn        string `json:"due_in,omitempty"`
	CompletedAgo string `json:"completed_ago,omitempty"`
}

// TaskBoard splits a patient's tasks for the detail page. Completed tasks
// are newest first; pending tasks are soonest due first, undated last.
type TaskBoard struct {
	Completed []TaskView `json:"completed"`
	Pending   []TaskView `json:"pending"`
}

// NewTaskBoard sorts tasks into a board at now.
func NewTaskBoard(tasks []Task, now time.Time) TaskBoard {
	b := TaskBoard{Completed: []TaskView{}, Pending: []TaskView{}}
	for _, t := range tasks {
		if t.Completed() {
			b.Completed = append(b.Completed, TaskView{Task: t, CompletedAgo: status.TimeAgo(*t.CompletedAt, now)})
			continue
		}
		b.Pending = append(b.Pending, TaskView{Task: t, DueIn: status.OptionalTimeUntil(t.DueTime, now)})
	}
	sort.SliceStable(b.Completed, func(i, j int) bool {
		return b.Completed[i].CompletedAt.After(*b.Completed[j].CompletedAt)
	})
	sort.SliceStable(b.Pending, func(i, j int) bool {
		di, dj := b.Pending[i].DueTime, b.Pending[j].DueTime
		switch {
		case di == nil:
			return false
		case dj == nil:
			return true
		}
		return di.Before(*dj)
	})
	return b
}
