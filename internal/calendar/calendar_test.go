package calendar_test

import (
	"context"
	"testing"
	"time"

	"github.com/dmriver/taskhub/internal/calendar"
	"github.com/dmriver/taskhub/internal/domain/task"
	"github.com/dmriver/taskhub/internal/domain/user"
	"github.com/dmriver/taskhub/internal/tasks"
)

func datePtr(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 15, 4, 5, 0, time.UTC)
	return &t
}

func TestProjectFiltersAndFormats(t *testing.T) {
	list := []task.Task{
		{ID: "1", Title: "no due date", Status: "pending"},
		{ID: "2", Title: "due", Status: "pending", DueDate: datePtr(2026, 9, 10)},
		{ID: "3", Title: "done task", Status: "done", DueDate: datePtr(2026, 9, 11)},
	}

	events := calendar.Project(list, "")
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}

	if events[0].ID != "2" {
		t.Errorf("events[0].ID = %q, want 2", events[0].ID)
	}
	if events[0].Date != "2026-09-10" {
		t.Errorf("Date = %q, want 2026-09-10", events[0].Date)
	}
	if events[0].Title != "due" {
		t.Errorf("Title = %q, want no annotation without owner", events[0].Title)
	}

	filtered := calendar.Project(list, "done")
	if len(filtered) != 1 || filtered[0].ID != "3" {
		t.Fatalf("status filter failed: %+v", filtered)
	}
}

func TestProjectAnnotatesOwner(t *testing.T) {
	list := []task.Task{
		{
			ID:      "1",
			Title:   "review PR",
			Status:  "pending",
			DueDate: datePtr(2026, 9, 12),
			Owner:   &user.Ref{ID: "u1", Username: "alice", Email: "alice@example.com"},
		},
	}

	events := calendar.Project(list, "")
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].Title != "review PR (alice)" {
		t.Errorf("Title = %q, want owner annotation", events[0].Title)
	}
}

type fakeTaskSource struct {
	listFn   func(ctx context.Context, caller tasks.Identity) ([]task.Task, error)
	updateFn func(ctx context.Context, caller tasks.Identity, id string, patch task.UpdateTaskRequest) (task.Task, error)
}

func (f *fakeTaskSource) List(ctx context.Context, caller tasks.Identity) ([]task.Task, error) {
	if f.listFn != nil {
		return f.listFn(ctx, caller)
	}
	return nil, nil
}

func (f *fakeTaskSource) Update(ctx context.Context, caller tasks.Identity, id string, patch task.UpdateTaskRequest) (task.Task, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, caller, id, patch)
	}
	return task.Task{}, nil
}

func TestReschedulePatchesOnlyDueDate(t *testing.T) {
	var gotPatch task.UpdateTaskRequest
	var gotID string

	src := &fakeTaskSource{
		updateFn: func(ctx context.Context, caller tasks.Identity, id string, patch task.UpdateTaskRequest) (task.Task, error) {
			gotID = id
			gotPatch = patch
			return task.Task{ID: id}, nil
		},
	}

	s := calendar.NewScheduler(src)
	caller := tasks.Identity{ID: "u1", Role: user.RoleUser}

	due := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	if _, err := s.Reschedule(context.Background(), caller, "t1", &due); err != nil {
		t.Fatalf("reschedule: %v", err)
	}

	if gotID != "t1" {
		t.Errorf("id = %q, want t1", gotID)
	}
	if !gotPatch.DueDate.Set || gotPatch.DueDate.Value == nil || !gotPatch.DueDate.Value.Equal(due) {
		t.Errorf("dueDate patch = %+v, want set to %v", gotPatch.DueDate, due)
	}
	if gotPatch.Title.Set || gotPatch.Description.Set || gotPatch.Status.Set {
		t.Errorf("reschedule touched fields beyond dueDate: %+v", gotPatch)
	}

	// clearing
	if _, err := s.Reschedule(context.Background(), caller, "t1", nil); err != nil {
		t.Fatalf("reschedule clear: %v", err)
	}
	if !gotPatch.DueDate.Set || gotPatch.DueDate.Value != nil {
		t.Errorf("clearing patch = %+v, want set to nil", gotPatch.DueDate)
	}
}
