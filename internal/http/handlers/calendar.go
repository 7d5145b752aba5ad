package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmriver/taskhub/internal/calendar"
	"github.com/dmriver/taskhub/internal/config"
	"github.com/dmriver/taskhub/internal/http/middlewares"
	"github.com/dmriver/taskhub/internal/tasks"
	"github.com/gin-gonic/gin"
)

type CalendarSource interface {
	Events(ctx context.Context, caller tasks.Identity, statusFilter string) ([]calendar.Event, error)
}

type CalendarHandler struct {
	scheduler CalendarSource
	log       *slog.Logger
}

func NewCalendarHandler(scheduler CalendarSource, log *slog.Logger) *CalendarHandler {
	return &CalendarHandler{scheduler: scheduler, log: log}
}

// Events serves the calendar projection of the caller's visible tasks.
// Date moves come back through PUT /tasks/:id with a dueDate patch.
func (h *CalendarHandler) Events(ctx *gin.Context) {
	caller, ok := middlewares.IdentityFromContext(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	events, err := h.scheduler.Events(cctx, caller, ctx.Query("status"))
	if err != nil {
		h.log.ErrorContext(ctx.Request.Context(), "calendar projection failed", "err", err)
		RespondInternal(ctx, "Could not build calendar")
		return
	}

	ctx.JSON(http.StatusOK, events)
}
