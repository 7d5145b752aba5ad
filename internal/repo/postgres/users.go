package postgres

import (
	"context"
	"errors"

	"github.com/dmriver/taskhub/internal/domain/user"
	"github.com/dmriver/taskhub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrEmailTaken    = errors.New("email already in use")
	ErrUsernameTaken = errors.New("username already in use")
)

type UsersRepo struct {
	pool *pgxpool.Pool
	obs  *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool, obs *observability.Prom) *UsersRepo {
	return &UsersRepo{pool: pool, obs: obs}
}

func (r *UsersRepo) observe(op string, fn func() error) error {
	if r.obs == nil {
		return fn()
	}
	return r.obs.ObserveDB(op, fn)
}

func (r *UsersRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	err := r.observe("users.create", func() error {
		_, err := r.pool.Exec(
			ctx,
			`INSERT INTO users (id, username, email, password_hash, role, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			u.ID, u.Username, u.Email, u.PasswordHash, u.Role, u.CreatedAt, u.UpdatedAt,
		)
		return err
	})

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			if pgErr.ConstraintName == "users_username_key" {
				return user.User{}, ErrUsernameTaken
			}
			return user.User{}, ErrEmailTaken
		}
		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	var u user.User

	err := r.observe("users.get_by_email", func() error {
		return r.pool.QueryRow(
			ctx,
			`SELECT id, username, email, password_hash, role, created_at, updated_at
			 FROM users
			 WHERE email = $1`,
			email,
		).Scan(
			&u.ID,
			&u.Username,
			&u.Email,
			&u.PasswordHash,
			&u.Role,
			&u.CreatedAt,
			&u.UpdatedAt,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}
	return u, nil
}

// GetByID returns the public projection only. The hash never crosses
// this boundary.
func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.Public, error) {
	var p user.Public

	err := r.observe("users.get_by_id", func() error {
		return r.pool.QueryRow(
			ctx,
			`SELECT id, username, email, role, created_at, updated_at
			 FROM users
			 WHERE id = $1`,
			id,
		).Scan(
			&p.ID,
			&p.Username,
			&p.Email,
			&p.Role,
			&p.CreatedAt,
			&p.UpdatedAt,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.Public{}, user.ErrNotFound
		}

		return user.Public{}, err
	}
	return p, nil
}

// Delete removes a user. Owned tasks go with it via the FK cascade.
// Not exposed over the API; used by the admin binary and tests.
func (r *UsersRepo) Delete(ctx context.Context, id string) error {
	var tag pgconn.CommandTag

	err := r.observe("users.delete", func() error {
		var err error
		tag, err = r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
		return err
	})

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return user.ErrNotFound
	}

	return nil
}
