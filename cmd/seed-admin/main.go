// seed-admin creates the first admin account, or promotes and resets an
// existing account with the same email.
//
// Usage:
//
//	ADMIN_EMAIL=... ADMIN_PASSWORD=... DB_USER=... DB_PASSWORD=... DB_HOST=... DB_NAME=... go run ./cmd/seed-admin
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/mmdatafocus/zone_expense_backend/config"
	"github.com/mmdatafocus/zone_expense_backend/models"
	"github.com/mmdatafocus/zone_expense_backend/utils"
)

const adminName = "Zone Admin"

func main() {
	ctx := context.Background()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	email := strings.TrimSpace(os.Getenv("ADMIN_EMAIL"))
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		fmt.Fprintln(os.Stderr, "ADMIN_EMAIL and ADMIN_PASSWORD are required.")
		os.Exit(2)
	}

	logger := config.NewLogger(cfg.LogLvl)
	db, err := config.ConnectDatabaseWithRetry(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect database: %v\n", err)
		os.Exit(1)
	}
	if err := models.MigrateTable(db); err != nil {
		fmt.Fprintf(os.Stderr, "failed to migrate: %v\n", err)
		os.Exit(1)
	}

	user, err := models.AdminCreateUser(ctx, db, models.CreateUserInput{
		Name:     adminName,
		Email:    email,
		Password: password,
		Role:     models.RoleAdmin,
	})
	switch {
	case err == nil:
		fmt.Printf("created admin %s (id=%s)\n", user.Email, user.ID)
	case utils.IsConflict(err):
		var existing models.User
		if err := db.WithContext(ctx).Where("email = ?", strings.ToLower(email)).Take(&existing).Error; err != nil {
			fmt.Fprintf(os.Stderr, "failed to lookup user: %v\n", err)
			os.Exit(1)
		}
		if _, err := models.UpdateUserRole(ctx, db, existing.ID, models.RoleAdmin); err != nil {
			fmt.Fprintf(os.Stderr, "failed to promote user: %v\n", err)
			os.Exit(1)
		}
		if err := models.ResetPassword(ctx, db, existing.ID, password); err != nil {
			fmt.Fprintf(os.Stderr, "failed to reset password: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("promoted existing user %s (id=%s) to admin\n", existing.Email, existing.ID)
	default:
		fmt.Fprintf(os.Stderr, "failed to create admin: %v\n", err)
		os.Exit(1)
	}
}
