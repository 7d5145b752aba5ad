// Command admin performs the user administration that is deliberately
// not exposed over the API: seeding the configured admin account and
// deleting a user (whose tasks go with them via the FK cascade).
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/dmriver/taskhub/internal/config"
	"github.com/dmriver/taskhub/internal/db"
	"github.com/dmriver/taskhub/internal/domain/user"
	"github.com/dmriver/taskhub/internal/observability"
	"github.com/dmriver/taskhub/internal/repo/postgres"
	"github.com/joho/godotenv"
)

func main() {
	deleteEmail := flag.String("delete-user", "", "delete the user with this email, cascading to their tasks")
	seed := flag.Bool("seed", false, "create the configured admin account if absent")
	flag.Parse()

	if *deleteEmail == "" && !*seed {
		flag.Usage()
		os.Exit(2)
	}

	_ = godotenv.Load()

	cfg := config.Load()
	log := observability.NewLogger(cfg.Env)

	pool, err := db.NewPool(cfg.DBURL)
	if err != nil {
		log.Error("database connection failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	ctx, cancel := config.WithTimeout(10 * time.Second)
	defer cancel()

	if *seed {
		if err := db.EnsureAdminUser(ctx, pool, cfg); err != nil {
			log.Error("admin seed failed", "err", err)
			os.Exit(1)
		}
		fmt.Println("admin account ensured")
	}

	if *deleteEmail != "" {
		users := postgres.NewUsersRepo(pool, nil)

		u, err := users.GetByEmail(ctx, *deleteEmail)
		if err != nil {
			if err == user.ErrNotFound {
				fmt.Fprintln(os.Stderr, "no such user:", *deleteEmail)
				os.Exit(1)
			}
			log.Error("lookup failed", "err", err)
			os.Exit(1)
		}

		if err := users.Delete(ctx, u.ID); err != nil {
			log.Error("delete failed", "err", err)
			os.Exit(1)
		}

		fmt.Println("deleted user", u.ID, "and their tasks")
	}
}
