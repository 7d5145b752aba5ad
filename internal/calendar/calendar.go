package calendar

import (
	"context"
	"time"

	"github.com/dmriver/taskhub/internal/domain/task"
	"github.com/dmriver/taskhub/internal/tasks"
)

// Event is one calendar entry. Only tasks with a due date project into
// events; the date is the day portion of the due date.
type Event struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Date   string `json:"date"`
	Status string `json:"status"`
}

const dateLayout = "2006-01-02"

// Project maps tasks into calendar events. Tasks without a due date
// are dropped. When a task carries an owner projection (admin
// listings), the title is annotated with the owner's username. An
// empty statusFilter keeps everything.
func Project(list []task.Task, statusFilter string) []Event {
	out := make([]Event, 0, len(list))

	for _, t := range list {
		if t.DueDate == nil {
			continue
		}
		if statusFilter != "" && t.Status != statusFilter {
			continue
		}

		title := t.Title
		if t.Owner != nil && t.Owner.Username != "" {
			title = title + " (" + t.Owner.Username + ")"
		}

		out = append(out, Event{
			ID:     t.ID,
			Title:  title,
			Date:   t.DueDate.UTC().Format(dateLayout),
			Status: t.Status,
		})
	}

	return out
}

type taskSource interface {
	List(ctx context.Context, caller tasks.Identity) ([]task.Task, error)
	Update(ctx context.Context, caller tasks.Identity, id string, patch task.UpdateTaskRequest) (task.Task, error)
}

// Scheduler is the calendar-facing consumer of the task service: it
// reads the caller's visible tasks and pushes date changes back through
// the same scoped update path.
type Scheduler struct {
	svc taskSource
}

func NewScheduler(svc taskSource) *Scheduler {
	return &Scheduler{svc: svc}
}

func (s *Scheduler) Events(ctx context.Context, caller tasks.Identity, statusFilter string) ([]Event, error) {
	list, err := s.svc.List(ctx, caller)
	if err != nil {
		return nil, err
	}

	return Project(list, statusFilter), nil
}

// Reschedule moves (or with nil clears) a task's due date. Nothing
// else in the row is touched: the patch carries only the dueDate key,
// so the fallback rules for the other fields never engage.
func (s *Scheduler) Reschedule(ctx context.Context, caller tasks.Identity, taskID string, due *time.Time) (task.Task, error) {
	patch := task.UpdateTaskRequest{
		DueDate: task.OptionalTime{Set: true, Value: due},
	}

	return s.svc.Update(ctx, caller, taskID, patch)
}
