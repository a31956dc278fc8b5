package domain

import (
	"time"

	"server/internal/quota"
)

// UserRole enumerates supported roles.
type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

// User represents a teacher account within the platform.
type User struct {
	ID                string
	Email             string
	Name              string
	PasswordHash      string
	Role              UserRole
	Locale            string
	IsPremium         bool
	FreeStoriesUsed   int
	DailyStoriesCount int
	LastResetDate     *time.Time
	PaidAt            *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// QuotaState projects the user onto the quota engine's input.
func (u User) QuotaState() quota.State {
	return quota.State{
		IsPremium:         u.IsPremium,
		FreeStoriesUsed:   u.FreeStoriesUsed,
		DailyStoriesCount: u.DailyStoriesCount,
		LastResetDate:     u.LastResetDate,
	}
}

// IsAdmin reports whether the user may access admin endpoints.
func (u User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}
