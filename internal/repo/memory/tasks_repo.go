package memory

import (
	"context"
	"sync"
	"time"

	"github.com/dmriver/taskhub/internal/domain/task"
	"github.com/dmriver/taskhub/internal/domain/user"
)

// TasksRepo is an in-memory stand-in for the postgres repo, used in
// service and handler tests. It mirrors the same scoping contract,
// including the cascade on owner removal.
type TasksRepo struct {
	mu     sync.RWMutex
	items  map[string]task.Task
	owners map[string]user.Ref
	order  []string // insertion order of task ids
}

func NewTasksRepo() *TasksRepo {
	return &TasksRepo{
		items:  make(map[string]task.Task),
		owners: make(map[string]user.Ref),
	}
}

// PutOwner registers the owner projection used by ListAllWithOwners.
func (r *TasksRepo) PutOwner(ref user.Ref) {
	r.mu.Lock()
	r.owners[ref.ID] = ref
	r.mu.Unlock()
}

// DeleteOwner removes a user and cascades to their tasks.
func (r *TasksRepo) DeleteOwner(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.owners, id)

	kept := r.order[:0]
	for _, taskID := range r.order {
		if t, ok := r.items[taskID]; ok && t.OwnerID == id {
			delete(r.items, taskID)
			continue
		}
		kept = append(kept, taskID)
	}
	r.order = kept
}

func (r *TasksRepo) Insert(ctx context.Context, t task.Task) (task.Task, error) {
	r.mu.Lock()
	r.items[t.ID] = t
	r.order = append(r.order, t.ID)
	r.mu.Unlock()

	return t, nil
}

func (r *TasksRepo) ListByOwner(ctx context.Context, ownerID string) ([]task.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]task.Task, 0, len(r.order))
	for _, id := range r.order {
		t, ok := r.items[id]
		if ok && t.OwnerID == ownerID {
			out = append(out, t)
		}
	}

	return out, nil
}

func (r *TasksRepo) ListAllWithOwners(ctx context.Context) ([]task.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]task.Task, 0, len(r.order))
	for _, id := range r.order {
		t, ok := r.items[id]
		if !ok {
			continue
		}
		if ref, ok := r.owners[t.OwnerID]; ok {
			refCopy := ref
			t.Owner = &refCopy
		}
		out = append(out, t)
	}

	return out, nil
}

func (r *TasksRepo) Get(ctx context.Context, id, ownerID string) (task.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.items[id]
	if !ok || (ownerID != "" && t.OwnerID != ownerID) {
		return task.Task{}, task.ErrNotFound
	}

	return t, nil
}

func (r *TasksRepo) Update(ctx context.Context, t task.Task) (task.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[t.ID]; !ok {
		return task.Task{}, task.ErrNotFound
	}

	t.Owner = nil
	t.UpdatedAt = time.Now().UTC()
	r.items[t.ID] = t

	return t, nil
}

func (r *TasksRepo) Delete(ctx context.Context, id, ownerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.items[id]
	if !ok || (ownerID != "" && t.OwnerID != ownerID) {
		return task.ErrNotFound
	}

	delete(r.items, id)

	for i, tid := range r.order {
		if tid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	return nil
}
