package task

import (
	"errors"
	"time"

	"github.com/dmriver/taskhub/internal/domain/user"
)

// Canonical status values. The column is deliberately an open set for
// compatibility with existing rows; these are just the values the
// clients use.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusDone       = "done"
)

var (
	ErrNotFound      = errors.New("task not found")
	ErrTitleRequired = errors.New("task title is required")
)

type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	DueDate     *time.Time `json:"dueDate"`
	OwnerID     string     `json:"ownerId"`
	// Owner is only populated on admin listings.
	Owner     *user.Ref `json:"owner,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type CreateTaskRequest struct {
	Title       string     `json:"title" binding:"required,min=1,max=200"`
	Description string     `json:"description" binding:"omitempty,max=2000"`
	Status      string     `json:"status" binding:"omitempty,max=60"`
	DueDate     *time.Time `json:"dueDate"`
}
