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

	"server/internal/adapter/repo"
	"server/internal/domain"
	"server/internal/quota"
)

// userplan grants or revokes premium from the command line, for support cases
// where no wallet payment exists.
func main() {
	var (
		idFlag     string
		emailFlag  string
		revokeFlag bool
	)

	flag.StringVar(&idFlag, "id", "", "user ID to update (UUID)")
	flag.StringVar(&emailFlag, "email", "", "user email to update")
	flag.BoolVar(&revokeFlag, "revoke", false, "revoke premium instead of granting it")
	flag.Parse()

	userID := strings.TrimSpace(idFlag)
	email := strings.TrimSpace(strings.ToLower(emailFlag))
	if userID == "" && email == "" {
		exitWithError(errors.New("either -id or -email must be provided"))
	}

	_ = godotenv.Load()
	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		exitWithError(errors.New("DATABASE_URL is required"))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
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
		if errors.Is(err, domain.ErrNotFound) {
			exitWithError(errors.New("user not found"))
		}
		exitWithError(fmt.Errorf("lookup failed: %w", err))
	}

	now := time.Now()
	if revokeFlag {
		if err := users.RevokePremium(ctx, user.ID); err != nil {
			exitWithError(fmt.Errorf("revoke failed: %w", err))
		}
		fmt.Printf("revoked premium from %s (%s)\n", user.Email, user.ID)
		return
	}

	payment := &domain.Payment{
		UserID:    user.ID,
		Method:    domain.PaymentMethodAdmin,
		Status:    domain.PaymentStatusCompleted,
		Reference: "cli:" + user.ID + ":" + now.Format("20060102150405"),
	}
	if _, err := users.ActivatePremium(ctx, payment, now); err != nil {
		if errors.Is(err, domain.ErrAlreadyPremium) {
			exitWithError(errors.New("user is already premium"))
		}
		exitWithError(fmt.Errorf("grant failed: %w", err))
	}
	fmt.Printf("granted premium to %s (%s): %d stories per day\n", user.Email, user.ID, quota.PremiumDailyLimit)
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, "userplan:", err)
	os.Exit(1)
}
