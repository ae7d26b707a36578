package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"zentra/internal/adapter/repo"
	"zentra/internal/domain"
)

func main() {
	var (
		idFlag    string
		emailFlag string
		planFlag  string
		daysFlag  int
	)

	flag.StringVar(&idFlag, "id", "", "user ID to update (UUID)")
	flag.StringVar(&emailFlag, "email", "", "user email to update")
	flag.StringVar(&planFlag, "plan", "pro", "plan to assign (free, starter, builder, pro)")
	flag.IntVar(&daysFlag, "days", 30, "plan validity in days (ignored for free)")
	flag.Parse()

	_ = godotenv.Load()

	userID := strings.TrimSpace(idFlag)
	email := strings.TrimSpace(strings.ToLower(emailFlag))
	plan := domain.UserPlan(strings.TrimSpace(strings.ToLower(planFlag)))

	if userID == "" && email == "" {
		exitWithError(errors.New("either -id or -email must be provided"))
	}
	if !domain.ValidPlan(plan) {
		exitWithError(fmt.Errorf("unsupported plan %q", plan))
	}

	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		exitWithError(errors.New("DATABASE_URL is required"))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		exitWithError(fmt.Errorf("failed to connect database: %w", err))
	}
	defer pool.Close()

	users := repo.NewUserRepository(pool)

	var user *domain.User
	if userID != "" {
		user, err = users.GetByID(ctx, userID)
	} else {
		user, err = users.GetByEmail(ctx, email)
	}
	if err != nil {
		exitWithError(fmt.Errorf("failed to load user: %w", err))
	}

	var expiry *time.Time
	if plan != domain.UserPlanFree {
		t := time.Now().AddDate(0, 0, daysFlag)
		expiry = &t
	}
	if err := users.UpdatePlan(ctx, user.ID, plan, expiry); err != nil {
		exitWithError(fmt.Errorf("failed to update plan: %w", err))
	}

	fmt.Printf("User %s (%s) updated to plan %s\n", user.ID, user.Email, plan)
	if expiry != nil {
		fmt.Printf("plan_expiry=%s\n", expiry.Format(time.RFC3339))
	}
	ceiling := domain.PlanCeiling(plan)
	if ceiling == domain.UnlimitedApps {
		fmt.Println("app_limit=unlimited")
	} else {
		fmt.Printf("app_limit=%d\n", ceiling)
	}
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
