package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"server/internal/domain"
	"server/internal/quota"
	"server/internal/sqlinline"
)

const pgUniqueViolation = "23505"

// UserRepositoryPG implements domain.UserRepository backed by PostgreSQL.
type UserRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepositoryPG.
func NewUserRepository(pool *pgxpool.Pool) *UserRepositoryPG {
	return &UserRepositoryPG{pool: pool}
}

// Create inserts a fresh free-tier user.
func (r *UserRepositoryPG) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, sqlinline.QInsertUser, user.Email, user.Name, user.PasswordHash, user.Locale)
	var u domain.User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.Locale, &u.IsPremium,
		&u.FreeStoriesUsed, &u.DailyStoriesCount, &u.LastResetDate, &u.PaidAt, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	u.PasswordHash = user.PasswordHash
	return &u, nil
}

// GetByID fetches a user by UUID.
func (r *UserRepositoryPG) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return scanUser(r.pool.QueryRow(ctx, sqlinline.QSelectUserByID, id))
}

// GetByEmail fetches a user by email.
func (r *UserRepositoryPG) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return scanUser(r.pool.QueryRow(ctx, sqlinline.QSelectUserByEmail, email))
}

// CreateStoryWithQuota inserts the story and consumes one quota unit in a
// single transaction. The user row is locked first, so a concurrent submit
// from the same user waits here and then fails the re-check instead of
// slipping past the cap.
func (r *UserRepositoryPG) CreateStoryWithQuota(ctx context.Context, story *domain.Story, now time.Time) (quota.Decision, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return quota.Decision{}, fmt.Errorf("begin quota tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var state quota.State
	row := tx.QueryRow(ctx, sqlinline.QSelectQuotaForUpdate, story.UserID)
	if err := row.Scan(&state.IsPremium, &state.FreeStoriesUsed, &state.DailyStoriesCount, &state.LastResetDate); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return quota.Decision{}, domain.ErrNotFound
		}
		return quota.Decision{}, fmt.Errorf("lock quota state: %w", err)
	}

	dec := quota.Evaluate(state, now)
	if !dec.CanCreate {
		return dec, domain.ErrQuotaExceeded
	}

	row = tx.QueryRow(ctx, sqlinline.QInsertStory,
		story.UserID, story.Topic, story.Grade, story.Subject, string(story.ImageLayout),
		story.StoryURL, story.WorksheetURL)
	if err := row.Scan(&story.ID, &story.CreatedAt); err != nil {
		return quota.Decision{}, fmt.Errorf("insert story: %w", err)
	}

	applied := quota.Apply(state, now)
	if _, err := tx.Exec(ctx, sqlinline.QUpdateQuotaCounters,
		story.UserID, applied.FreeStoriesUsed, applied.DailyStoriesCount, applied.LastResetDate); err != nil {
		return quota.Decision{}, fmt.Errorf("persist quota state: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return quota.Decision{}, fmt.Errorf("commit quota tx: %w", err)
	}
	return quota.Evaluate(applied, now), nil
}

// ActivatePremium records the payment and flips the user to premium with a
// fresh daily window, atomically.
func (r *UserRepositoryPG) ActivatePremium(ctx context.Context, payment *domain.Payment, now time.Time) (*domain.Payment, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin premium tx: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, sqlinline.QActivatePremium, payment.UserID, now)
	var userID string
	if err := row.Scan(&userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Either the user does not exist or is already premium.
			if _, lookupErr := scanUser(tx.QueryRow(ctx, sqlinline.QSelectUserByID, payment.UserID)); lookupErr != nil {
				return nil, lookupErr
			}
			return nil, domain.ErrAlreadyPremium
		}
		return nil, fmt.Errorf("activate premium: %w", err)
	}

	row = tx.QueryRow(ctx, sqlinline.QInsertPayment,
		payment.UserID, payment.AmountCents, string(payment.Method), string(payment.Status),
		payment.Reference, payment.Country)
	if err := row.Scan(&payment.ID, &payment.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrDuplicatePayment
		}
		return nil, fmt.Errorf("insert payment: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit premium tx: %w", err)
	}
	return payment, nil
}

// RevokePremium clears the premium flag, leaving counters untouched.
func (r *UserRepositoryPG) RevokePremium(ctx context.Context, userID string) error {
	row := r.pool.QueryRow(ctx, sqlinline.QRevokePremium, userID)
	var id string
	if err := row.Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("revoke premium: %w", err)
	}
	return nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Role, &u.Locale, &u.IsPremium,
		&u.FreeStoriesUsed, &u.DailyStoriesCount, &u.LastResetDate, &u.PaidAt, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

var _ domain.UserRepository = (*UserRepositoryPG)(nil)
