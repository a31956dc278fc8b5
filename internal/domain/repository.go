package domain

import (
	"context"
	"time"

	"server/internal/quota"
)

// UserRepository defines persistence for users and the quota-consuming story
// creation path. Implementations must serialize CreateStoryWithQuota per user
// so concurrent submits cannot exceed the cap.
type UserRepository interface {
	Create(ctx context.Context, user *User) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)

	// CreateStoryWithQuota re-evaluates the user's quota under a row lock,
	// inserts the story, and persists the applied quota state in one
	// transaction. It returns ErrQuotaExceeded when the locked re-check
	// denies; the returned decision reflects the state after the insert.
	CreateStoryWithQuota(ctx context.Context, story *Story, now time.Time) (quota.Decision, error)

	// ActivatePremium records the payment and flips the user to premium with
	// freshly reset daily counters, atomically. ErrAlreadyPremium and
	// ErrDuplicatePayment apply.
	ActivatePremium(ctx context.Context, payment *Payment, now time.Time) (*Payment, error)

	// RevokePremium clears the premium flag. Counters are left as-is; the
	// frozen free-tier count becomes authoritative again.
	RevokePremium(ctx context.Context, userID string) error
}
