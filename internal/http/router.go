package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/dmriver/taskhub/internal/auth"
	"github.com/dmriver/taskhub/internal/calendar"
	"github.com/dmriver/taskhub/internal/config"
	"github.com/dmriver/taskhub/internal/http/handlers"
	"github.com/dmriver/taskhub/internal/http/middlewares"
	"github.com/dmriver/taskhub/internal/observability"
	"github.com/dmriver/taskhub/internal/redisclient"
	"github.com/dmriver/taskhub/internal/repo/postgres"
	"github.com/dmriver/taskhub/internal/tasks"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const maxBodyBytes = 1 << 20 // 1 MiB

// NewRouter wires the full HTTP surface. The redis client may be nil,
// in which case rate limiting falls back to the in-process limiter.
func NewRouter(log *slog.Logger, pool *pgxpool.Pool, cfg config.Config, prom *observability.Prom, rdb *redisclient.Client) *gin.Engine {
	if cfg.Env != "dev" && cfg.Env != "test" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(middlewares.CORSMiddleware(cfg.CORSAllowedOrigins))
	}
	r.Use(middlewares.RequireJSON())
	r.Use(middlewares.MaxBodyBytes(maxBodyBytes))
	r.Use(otelgin.Middleware("taskhub"))
	if prom != nil {
		r.Use(prom.GinHandleMiddleware())
	}

	// health + metrics
	ping := func() error {
		if pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return pool.Ping(ctx)
	}

	h := handlers.NewHealthHandler(ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// wire up repositories and services
	usersRepo := postgres.NewUsersRepo(pool, prom)
	tasksRepo := postgres.NewTasksRepo(pool, prom)

	taskSvc := tasks.NewService(tasksRepo, cfg.PatchMode)
	scheduler := calendar.NewScheduler(taskSvc)

	jwtManager := auth.NewManager(cfg.JWTSecret, cfg.AccessTTL())
	policy := auth.NewSecretCodePolicy(cfg.AdminSecretCode)

	authHandler := handlers.NewAuthHandler(usersRepo, jwtManager, policy, log)
	tasksHandler := handlers.NewTasksHandler(taskSvc, log)
	calendarHandler := handlers.NewCalendarHandler(scheduler, log)

	authMw := middlewares.NewAuthMiddleware(jwtManager)

	// The public auth endpoints are the brute-force surface; everything
	// behind RequireAuth is already gated by a valid token.
	var limiter middlewares.Limiter
	window := time.Duration(cfg.RateWindowSeconds) * time.Second
	if rdb != nil {
		limiter = middlewares.NewRedisLimiter(rdb.Raw(), cfg.RateLimit, window)
	} else {
		limiter = middlewares.NewMemoryLimiter(cfg.RateLimit, window)
	}
	limited := middlewares.RateLimit(limiter, middlewares.KeyByIP)

	r.POST("/register", limited, authHandler.Register)
	r.POST("/login", limited, authHandler.Login)

	authed := r.Group("/", authMw.RequireAuth())
	authed.GET("/profile", authHandler.Profile)
	authed.GET("/tasks", tasksHandler.ListTasks)
	authed.POST("/tasks", tasksHandler.CreateTask)
	authed.PUT("/tasks/:id", tasksHandler.UpdateTask)
	authed.DELETE("/tasks/:id", tasksHandler.DeleteTask)
	authed.GET("/calendar", calendarHandler.Events)

	return r
}
