package postgres

import (
	"context"
	"errors"

	"github.com/dmriver/taskhub/internal/domain/task"
	"github.com/dmriver/taskhub/internal/domain/user"
	"github.com/dmriver/taskhub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TasksRepo struct {
	pool *pgxpool.Pool
	obs  *observability.Prom
}

func NewTasksRepo(pool *pgxpool.Pool, obs *observability.Prom) *TasksRepo {
	return &TasksRepo{pool: pool, obs: obs}
}

func (r *TasksRepo) observe(op string, fn func() error) error {
	if r.obs == nil {
		return fn()
	}
	return r.obs.ObserveDB(op, fn)
}

func (r *TasksRepo) Insert(ctx context.Context, t task.Task) (task.Task, error) {
	err := r.observe("tasks.insert", func() error {
		_, err := r.pool.Exec(
			ctx,
			`INSERT INTO tasks (id, title, description, status, due_date, owner_id, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			t.ID, t.Title, t.Description, t.Status, t.DueDate, t.OwnerID, t.CreatedAt, t.UpdatedAt,
		)
		return err
	})

	if err != nil {
		return task.Task{}, err
	}

	return t, nil
}

// ListByOwner returns one user's tasks in insertion order, without any
// owner projection.
func (r *TasksRepo) ListByOwner(ctx context.Context, ownerID string) ([]task.Task, error) {
	out := make([]task.Task, 0, 16)

	err := r.observe("tasks.list_by_owner", func() error {
		rows, err := r.pool.Query(
			ctx,
			`SELECT id, title, description, status, due_date, owner_id, created_at, updated_at
			 FROM tasks
			 WHERE owner_id = $1
			 ORDER BY created_at ASC, id ASC`,
			ownerID,
		)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var t task.Task
			err = rows.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.DueDate, &t.OwnerID, &t.CreatedAt, &t.UpdatedAt)
			if err != nil {
				return err
			}
			out = append(out, t)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

// ListAllWithOwners returns every task joined with its owner's public
// reference. Admin-only callers reach this.
func (r *TasksRepo) ListAllWithOwners(ctx context.Context) ([]task.Task, error) {
	out := make([]task.Task, 0, 16)

	err := r.observe("tasks.list_all", func() error {
		rows, err := r.pool.Query(
			ctx,
			`SELECT t.id, t.title, t.description, t.status, t.due_date, t.owner_id, t.created_at, t.updated_at,
			        u.id, u.username, u.email
			 FROM tasks t
			 JOIN users u ON u.id = t.owner_id
			 ORDER BY t.created_at ASC, t.id ASC`,
		)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var t task.Task
			var ref user.Ref

			err = rows.Scan(
				&t.ID, &t.Title, &t.Description, &t.Status, &t.DueDate, &t.OwnerID, &t.CreatedAt, &t.UpdatedAt,
				&ref.ID, &ref.Username, &ref.Email,
			)
			if err != nil {
				return err
			}

			t.Owner = &ref
			out = append(out, t)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

// Get resolves a task id. A non-empty ownerID restricts the lookup to
// that owner's rows, so a foreign id comes back as ErrNotFound exactly
// like a missing one.
func (r *TasksRepo) Get(ctx context.Context, id, ownerID string) (task.Task, error) {
	var t task.Task

	err := r.observe("tasks.get", func() error {
		return r.pool.QueryRow(
			ctx,
			`SELECT id, title, description, status, due_date, owner_id, created_at, updated_at
			 FROM tasks
			 WHERE id = $1 AND ($2 = '' OR owner_id = $2)`,
			id, ownerID,
		).Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.DueDate, &t.OwnerID, &t.CreatedAt, &t.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return task.Task{}, task.ErrNotFound
		}
		return task.Task{}, err
	}

	return t, nil
}

// Update persists the full row. Callers resolve scoping first; the
// last write wins on concurrent updates.
func (r *TasksRepo) Update(ctx context.Context, t task.Task) (task.Task, error) {
	err := r.observe("tasks.update", func() error {
		return r.pool.QueryRow(
			ctx,
			`UPDATE tasks
			    SET title = $2,
			        description = $3,
			        status = $4,
			        due_date = $5,
			        updated_at = NOW()
			 WHERE id = $1
			 RETURNING updated_at`,
			t.ID, t.Title, t.Description, t.Status, t.DueDate,
		).Scan(&t.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return task.Task{}, task.ErrNotFound
		}
		return task.Task{}, err
	}

	return t, nil
}

func (r *TasksRepo) Delete(ctx context.Context, id, ownerID string) error {
	var tag pgconn.CommandTag

	err := r.observe("tasks.delete", func() error {
		var err error
		tag, err = r.pool.Exec(
			ctx,
			`DELETE FROM tasks WHERE id = $1 AND ($2 = '' OR owner_id = $2)`,
			id, ownerID,
		)
		return err
	})

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return task.ErrNotFound
	}

	return nil
}
