package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmriver/taskhub/internal/auth"
	"github.com/dmriver/taskhub/internal/config"
	"github.com/dmriver/taskhub/internal/domain/user"
	"github.com/dmriver/taskhub/internal/http/middlewares"
	"github.com/dmriver/taskhub/internal/repo/postgres"
	"github.com/dmriver/taskhub/internal/security"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type UserStore interface {
	Create(ctx context.Context, u user.User) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByID(ctx context.Context, id string) (user.Public, error)
}

type AuthHandler struct {
	users  UserStore
	jwt    *auth.Manager
	policy auth.AdminPolicy
	log    *slog.Logger
}

func NewAuthHandler(users UserStore, jwtManager *auth.Manager, policy auth.AdminPolicy, log *slog.Logger) *AuthHandler {
	return &AuthHandler{
		users:  users,
		jwt:    jwtManager,
		policy: policy,
		log:    log,
	}
}

type RegisterRequest struct {
	Username   string `json:"username" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required"`
	SecretCode string `json:"secretCode"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	// The plaintext never goes further than this call.
	hash, err := security.HashPassword(req.Password)

	if err != nil {
		RespondInternal(ctx, "Could not create user")
		return
	}

	role := h.policy.RoleFor(req.SecretCode)

	now := time.Now().UTC()

	u, err := h.users.Create(cctx, user.User{
		ID:           uuid.NewString(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})

	if err != nil {
		if errors.Is(err, postgres.ErrEmailTaken) || errors.Is(err, postgres.ErrUsernameTaken) {
			RespondBadRequest(ctx, "User already exists.", nil)
			return
		}

		h.log.ErrorContext(ctx.Request.Context(), "register failed", "err", err)
		RespondInternal(ctx, "Could not create user")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "User created.",
		"user": gin.H{
			"id":   u.ID,
			"role": u.Role,
		},
	})
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}
	// short timeout for DB lookup
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	foundUser, err := h.users.GetByEmail(cctx, req.Email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondBadRequest(ctx, "User not found.", nil)
			return
		}

		h.log.ErrorContext(ctx.Request.Context(), "login lookup failed", "err", err)
		RespondInternal(ctx, "Could not log in")
		return
	}

	err = security.CheckPassword(foundUser.PasswordHash, req.Password)

	if err != nil {
		RespondBadRequest(ctx, "Invalid credentials.", nil)
		return
	}

	token, err := h.jwt.GenerateAccessToken(foundUser.ID, foundUser.Email, foundUser.Role)

	if err != nil {
		h.log.ErrorContext(ctx.Request.Context(), "token generation failed", "err", err)
		RespondInternal(ctx, "Could not generate token")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"token": token,
	})
}

func (h *AuthHandler) Profile(ctx *gin.Context) {
	caller, ok := middlewares.IdentityFromContext(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	p, err := h.users.GetByID(cctx, caller.ID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found.")
			return
		}

		h.log.ErrorContext(ctx.Request.Context(), "profile lookup failed", "err", err)
		RespondInternal(ctx, "Could not fetch profile")
		return
	}

	ctx.JSON(http.StatusOK, p)
}
