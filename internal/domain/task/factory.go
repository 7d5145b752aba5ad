package task

import (
	"time"

	"github.com/google/uuid"
)

func NewFromCreateRequest(ownerID string, req CreateTaskRequest) Task {
	now := time.Now().UTC()

	status := req.Status
	if status == "" {
		status = StatusPending
	}

	return Task{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		Status:      status,
		DueDate:     req.DueDate,
		OwnerID:     ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
