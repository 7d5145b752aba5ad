package tasks

import (
	"context"

	"github.com/dmriver/taskhub/internal/config"
	"github.com/dmriver/taskhub/internal/domain/task"
	"github.com/dmriver/taskhub/internal/domain/user"
)

// Identity is the caller derived from a verified session token. Every
// operation scopes its reads and writes by it; nothing here ever trusts
// a client-supplied owner.
type Identity struct {
	ID   string
	Role user.Role
}

func (id Identity) admin() bool {
	return id.Role == user.RoleAdmin
}

// Store is the slice of the task repository the service needs. The
// postgres and memory repos both satisfy it.
type Store interface {
	Insert(ctx context.Context, t task.Task) (task.Task, error)
	ListByOwner(ctx context.Context, ownerID string) ([]task.Task, error)
	ListAllWithOwners(ctx context.Context) ([]task.Task, error)
	Get(ctx context.Context, id, ownerID string) (task.Task, error)
	Update(ctx context.Context, t task.Task) (task.Task, error)
	Delete(ctx context.Context, id, ownerID string) error
}

type Service struct {
	store     Store
	patchMode string
}

func NewService(store Store, patchMode string) *Service {
	if patchMode != config.PatchModeStrict {
		patchMode = config.PatchModeLegacy
	}

	return &Service{store: store, patchMode: patchMode}
}

// scopeOwner returns the owner filter for a caller: admins see every
// row, everyone else only their own.
func (s *Service) scopeOwner(caller Identity) string {
	if caller.admin() {
		return ""
	}
	return caller.ID
}

// List returns the caller's visible task set. Admin listings carry the
// owner projection; user listings do not.
func (s *Service) List(ctx context.Context, caller Identity) ([]task.Task, error) {
	if caller.admin() {
		return s.store.ListAllWithOwners(ctx)
	}
	return s.store.ListByOwner(ctx, caller.ID)
}

// Create stores a new task owned by the caller, whatever the request
// body claimed.
func (s *Service) Create(ctx context.Context, caller Identity, req task.CreateTaskRequest) (task.Task, error) {
	if req.Title == "" {
		return task.Task{}, task.ErrTitleRequired
	}

	return s.store.Insert(ctx, task.NewFromCreateRequest(caller.ID, req))
}

// GetScoped resolves a task id within the caller's visibility. A row
// owned by someone else resolves exactly like a missing one.
func (s *Service) GetScoped(ctx context.Context, caller Identity, id string) (task.Task, error) {
	return s.store.Get(ctx, id, s.scopeOwner(caller))
}

// Update applies a partial update to a task the caller can see.
//
// In legacy mode, title/description/status keep their stored value when
// the patch omits them OR supplies an empty string; the due date is the
// exception and is replaced whenever its key is present, null included.
// In strict mode every present key is applied, and an explicit empty
// title is rejected instead of silently ignored.
func (s *Service) Update(ctx context.Context, caller Identity, id string, patch task.UpdateTaskRequest) (task.Task, error) {
	t, err := s.store.Get(ctx, id, s.scopeOwner(caller))
	if err != nil {
		return task.Task{}, err
	}

	if s.patchMode == config.PatchModeStrict {
		if patch.Title.Set && patch.Title.Value == "" {
			return task.Task{}, task.ErrTitleRequired
		}

		if patch.Title.Set {
			t.Title = patch.Title.Value
		}
		if patch.Description.Set {
			t.Description = patch.Description.Value
		}
		if patch.Status.Set {
			t.Status = patch.Status.Value
		}
	} else {
		if patch.Title.Set && patch.Title.Value != "" {
			t.Title = patch.Title.Value
		}
		if patch.Description.Set && patch.Description.Value != "" {
			t.Description = patch.Description.Value
		}
		if patch.Status.Set && patch.Status.Value != "" {
			t.Status = patch.Status.Value
		}
	}

	// Clearing a due date is a legitimate operation (the calendar
	// reschedules through it), so key presence alone decides.
	if patch.DueDate.Set {
		t.DueDate = patch.DueDate.Value
	}

	return s.store.Update(ctx, t)
}

// Delete removes a task the caller can see.
func (s *Service) Delete(ctx context.Context, caller Identity, id string) error {
	return s.store.Delete(ctx, id, s.scopeOwner(caller))
}
