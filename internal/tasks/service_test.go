package tasks_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmriver/taskhub/internal/config"
	"github.com/dmriver/taskhub/internal/domain/task"
	"github.com/dmriver/taskhub/internal/domain/user"
	"github.com/dmriver/taskhub/internal/repo/memory"
	"github.com/dmriver/taskhub/internal/tasks"
)

var (
	alice = tasks.Identity{ID: "alice", Role: user.RoleUser}
	bob   = tasks.Identity{ID: "bob", Role: user.RoleUser}
	root  = tasks.Identity{ID: "root", Role: user.RoleAdmin}
)

func newServiceWithFixtures(t *testing.T, mode string) (*tasks.Service, *memory.TasksRepo) {
	t.Helper()

	repo := memory.NewTasksRepo()
	repo.PutOwner(user.Ref{ID: "alice", Username: "alice", Email: "alice@example.com"})
	repo.PutOwner(user.Ref{ID: "bob", Username: "bob", Email: "bob@example.com"})

	svc := tasks.NewService(repo, mode)

	for _, seed := range []struct {
		caller tasks.Identity
		title  string
	}{
		{alice, "alice task 1"},
		{bob, "bob task 1"},
		{alice, "alice task 2"},
	} {
		_, err := svc.Create(context.Background(), seed.caller, task.CreateTaskRequest{Title: seed.title})
		if err != nil {
			t.Fatalf("seed create: %v", err)
		}
	}

	return svc, repo
}

func TestListScopedToOwner(t *testing.T) {
	svc, _ := newServiceWithFixtures(t, config.PatchModeLegacy)

	list, err := svc.List(context.Background(), alice)
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	if len(list) != 2 {
		t.Fatalf("alice sees %d tasks, want 2", len(list))
	}
	for _, item := range list {
		if item.OwnerID != alice.ID {
			t.Errorf("leaked task %q owned by %q", item.ID, item.OwnerID)
		}
		if item.Owner != nil {
			t.Errorf("non-admin listing carries owner projection")
		}
	}
}

func TestListAdminSeesAllWithOwners(t *testing.T) {
	svc, _ := newServiceWithFixtures(t, config.PatchModeLegacy)

	list, err := svc.List(context.Background(), root)
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	if len(list) != 3 {
		t.Fatalf("admin sees %d tasks, want 3", len(list))
	}
	for _, item := range list {
		if item.Owner == nil {
			t.Errorf("admin listing misses owner projection for %q", item.ID)
			continue
		}
		if item.Owner.ID != item.OwnerID {
			t.Errorf("owner projection mismatch: %q vs %q", item.Owner.ID, item.OwnerID)
		}
	}
}

func TestCreateForcesOwnerAndDefaults(t *testing.T) {
	svc, _ := newServiceWithFixtures(t, config.PatchModeLegacy)

	created, err := svc.Create(context.Background(), alice, task.CreateTaskRequest{Title: "new"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if created.OwnerID != alice.ID {
		t.Errorf("OwnerID = %q, want %q", created.OwnerID, alice.ID)
	}
	if created.Description != "" {
		t.Errorf("Description = %q, want empty", created.Description)
	}
	if created.Status != task.StatusPending {
		t.Errorf("Status = %q, want pending", created.Status)
	}
	if created.DueDate != nil {
		t.Errorf("DueDate = %v, want nil", created.DueDate)
	}

	// round-trip through scoped resolution
	got, err := svc.GetScoped(context.Background(), alice, created.ID)
	if err != nil {
		t.Fatalf("get scoped: %v", err)
	}
	if got.Title != "new" || got.OwnerID != alice.ID {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestCreateRequiresTitle(t *testing.T) {
	svc, _ := newServiceWithFixtures(t, config.PatchModeLegacy)

	_, err := svc.Create(context.Background(), alice, task.CreateTaskRequest{})
	if !errors.Is(err, task.ErrTitleRequired) {
		t.Fatalf("err = %v, want ErrTitleRequired", err)
	}
}

func TestScopedResolutionHidesForeignTasks(t *testing.T) {
	svc, _ := newServiceWithFixtures(t, config.PatchModeLegacy)

	bobsList, err := svc.List(context.Background(), bob)
	if err != nil || len(bobsList) != 1 {
		t.Fatalf("bob's list: %v (%d items)", err, len(bobsList))
	}
	foreign := bobsList[0].ID

	if _, err := svc.GetScoped(context.Background(), alice, foreign); !errors.Is(err, task.ErrNotFound) {
		t.Errorf("GetScoped: err = %v, want ErrNotFound", err)
	}

	_, err = svc.Update(context.Background(), alice, foreign, task.UpdateTaskRequest{
		Title: task.OptionalString{Set: true, Value: "hijack"},
	})
	if !errors.Is(err, task.ErrNotFound) {
		t.Errorf("Update: err = %v, want ErrNotFound", err)
	}

	if err := svc.Delete(context.Background(), alice, foreign); !errors.Is(err, task.ErrNotFound) {
		t.Errorf("Delete: err = %v, want ErrNotFound", err)
	}

	// admin is not scoped out
	if _, err := svc.GetScoped(context.Background(), root, foreign); err != nil {
		t.Errorf("admin GetScoped: %v", err)
	}
}

func TestUpdateLegacySemantics(t *testing.T) {
	svc, _ := newServiceWithFixtures(t, config.PatchModeLegacy)

	created, err := svc.Create(context.Background(), alice, task.CreateTaskRequest{
		Title:       "original title",
		Description: "original description",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// empty strings behave like absent keys
	updated, err := svc.Update(context.Background(), alice, created.ID, task.UpdateTaskRequest{
		Title:       task.OptionalString{Set: true, Value: ""},
		Description: task.OptionalString{Set: true, Value: ""},
		Status:      task.OptionalString{Set: true, Value: "done"},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if updated.Title != "original title" {
		t.Errorf("empty title overwrote stored value: %q", updated.Title)
	}
	if updated.Description != "original description" {
		t.Errorf("empty description overwrote stored value: %q", updated.Description)
	}
	if updated.Status != "done" {
		t.Errorf("Status = %q, want done", updated.Status)
	}
}

func TestUpdateDueDateKeyPresence(t *testing.T) {
	svc, _ := newServiceWithFixtures(t, config.PatchModeLegacy)

	due := time.Date(2026, 9, 20, 12, 0, 0, 0, time.UTC)

	created, err := svc.Create(context.Background(), alice, task.CreateTaskRequest{
		Title:   "with due date",
		DueDate: &due,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// patch without the dueDate key leaves it alone
	updated, err := svc.Update(context.Background(), alice, created.ID, task.UpdateTaskRequest{
		Status: task.OptionalString{Set: true, Value: "in_progress"},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.DueDate == nil || !updated.DueDate.Equal(due) {
		t.Errorf("DueDate changed without the key: %v", updated.DueDate)
	}

	// explicit null clears it
	updated, err = svc.Update(context.Background(), alice, created.ID, task.UpdateTaskRequest{
		DueDate: task.OptionalTime{Set: true, Value: nil},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.DueDate != nil {
		t.Errorf("null dueDate did not clear: %v", updated.DueDate)
	}
}

func TestUpdateStrictSemantics(t *testing.T) {
	svc, _ := newServiceWithFixtures(t, config.PatchModeStrict)

	created, err := svc.Create(context.Background(), alice, task.CreateTaskRequest{
		Title:       "strict title",
		Description: "strict description",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// empty description is applied in strict mode
	updated, err := svc.Update(context.Background(), alice, created.ID, task.UpdateTaskRequest{
		Description: task.OptionalString{Set: true, Value: ""},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Description != "" {
		t.Errorf("Description = %q, want cleared", updated.Description)
	}

	// but an explicit empty title is rejected, not ignored
	_, err = svc.Update(context.Background(), alice, created.ID, task.UpdateTaskRequest{
		Title: task.OptionalString{Set: true, Value: ""},
	})
	if !errors.Is(err, task.ErrTitleRequired) {
		t.Errorf("err = %v, want ErrTitleRequired", err)
	}
}

func TestAdminCanUpdateForeignTask(t *testing.T) {
	svc, _ := newServiceWithFixtures(t, config.PatchModeLegacy)

	aliceList, _ := svc.List(context.Background(), alice)
	target := aliceList[0].ID

	updated, err := svc.Update(context.Background(), root, target, task.UpdateTaskRequest{
		Status: task.OptionalString{Set: true, Value: "done"},
	})
	if err != nil {
		t.Fatalf("admin update: %v", err)
	}
	if updated.Status != "done" {
		t.Errorf("Status = %q, want done", updated.Status)
	}
	if updated.OwnerID != alice.ID {
		t.Errorf("admin update reassigned owner: %q", updated.OwnerID)
	}
}

func TestOwnerDeletionCascades(t *testing.T) {
	svc, repo := newServiceWithFixtures(t, config.PatchModeLegacy)

	aliceList, _ := svc.List(context.Background(), alice)
	if len(aliceList) == 0 {
		t.Fatal("fixture missing alice tasks")
	}

	repo.DeleteOwner(alice.ID)

	remaining, err := svc.List(context.Background(), root)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, item := range remaining {
		if item.OwnerID == alice.ID {
			t.Errorf("task %q survived its owner", item.ID)
		}
	}

	for _, old := range aliceList {
		if _, err := svc.GetScoped(context.Background(), root, old.ID); !errors.Is(err, task.ErrNotFound) {
			t.Errorf("task %q still resolvable after cascade", old.ID)
		}
	}
}
