package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmriver/taskhub/internal/config"
	"github.com/dmriver/taskhub/internal/domain/task"
	"github.com/dmriver/taskhub/internal/http/middlewares"
	"github.com/dmriver/taskhub/internal/tasks"
	"github.com/gin-gonic/gin"
)

// TaskService is the scoped service surface the handlers consume.
type TaskService interface {
	List(ctx context.Context, caller tasks.Identity) ([]task.Task, error)
	Create(ctx context.Context, caller tasks.Identity, req task.CreateTaskRequest) (task.Task, error)
	Update(ctx context.Context, caller tasks.Identity, id string, patch task.UpdateTaskRequest) (task.Task, error)
	Delete(ctx context.Context, caller tasks.Identity, id string) error
}

type TasksHandler struct {
	svc TaskService
	log *slog.Logger
}

func NewTasksHandler(svc TaskService, log *slog.Logger) *TasksHandler {
	return &TasksHandler{svc: svc, log: log}
}

func (h *TasksHandler) caller(ctx *gin.Context) (tasks.Identity, bool) {
	caller, ok := middlewares.IdentityFromContext(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return tasks.Identity{}, false
	}
	return caller, true
}

func (h *TasksHandler) ListTasks(ctx *gin.Context) {
	caller, ok := h.caller(ctx)
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	list, err := h.svc.List(cctx, caller)
	if err != nil {
		h.log.ErrorContext(ctx.Request.Context(), "list tasks failed", "err", err)
		RespondInternal(ctx, "Could not fetch tasks")
		return
	}

	ctx.JSON(http.StatusOK, list)
}

func (h *TasksHandler) CreateTask(ctx *gin.Context) {
	caller, ok := h.caller(ctx)
	if !ok {
		return
	}

	var req task.CreateTaskRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	created, err := h.svc.Create(cctx, caller, req)
	if err != nil {
		if errors.Is(err, task.ErrTitleRequired) {
			RespondBadRequest(ctx, "Title is required.", nil)
			return
		}

		h.log.ErrorContext(ctx.Request.Context(), "create task failed", "err", err)
		RespondInternal(ctx, "Could not create task")
		return
	}

	ctx.JSON(http.StatusOK, created)
}

func (h *TasksHandler) UpdateTask(ctx *gin.Context) {
	caller, ok := h.caller(ctx)
	if !ok {
		return
	}

	id := ctx.Param("id")

	var patch task.UpdateTaskRequest
	if !BindJSON(ctx, &patch) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	updated, err := h.svc.Update(cctx, caller, id, patch)
	if err != nil {
		switch {
		case errors.Is(err, task.ErrNotFound):
			RespondNotFound(ctx, "Task not found.")
		case errors.Is(err, task.ErrTitleRequired):
			RespondBadRequest(ctx, "Title cannot be empty.", nil)
		default:
			h.log.ErrorContext(ctx.Request.Context(), "update task failed", "err", err)
			RespondInternal(ctx, "Could not update task")
		}
		return
	}

	ctx.JSON(http.StatusOK, updated)
}

func (h *TasksHandler) DeleteTask(ctx *gin.Context) {
	caller, ok := h.caller(ctx)
	if !ok {
		return
	}

	id := ctx.Param("id")

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	err := h.svc.Delete(cctx, caller, id)
	if err != nil {
		if errors.Is(err, task.ErrNotFound) {
			RespondNotFound(ctx, "Task not found.")
			return
		}

		h.log.ErrorContext(ctx.Request.Context(), "delete task failed", "err", err)
		RespondInternal(ctx, "Could not delete task")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Task deleted."})
}
