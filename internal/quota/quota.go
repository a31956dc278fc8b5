// Package quota decides whether a user may create another story.
//
// The engine is a pure function family over (State, now): it reads persisted
// counters, never mutates them in place, and performs no I/O. The caller is
// responsible for loading State, persisting the result of Apply atomically
// with the story it gates, and serializing concurrent updates per user.
package quota

import (
	"fmt"
	"time"
)

// Policy constants. Not user-configurable.
const (
	// FreeLifetimeLimit is the lifetime story cap for free accounts. It never resets.
	FreeLifetimeLimit = 2
	// PremiumDailyLimit is the per-calendar-day cap for premium accounts,
	// resetting at local midnight.
	PremiumDailyLimit = 3
)

// State is the quota-relevant subset of a user record.
type State struct {
	IsPremium         bool
	FreeStoriesUsed   int
	DailyStoriesCount int
	// LastResetDate marks when DailyStoriesCount was last zeroed.
	// nil or the zero time means the counter was never reset.
	LastResetDate *time.Time
}

// Decision is the outcome of evaluating a State at a point in time.
type Decision struct {
	CanCreate   bool
	StoriesLeft int
	ResetAt     time.Time
	IsNewDay    bool
}

// IsNewDay reports whether the calendar date of now is strictly after the
// calendar date of lastReset. A missing lastReset counts as a new day.
//
// The comparison is date-only in now's location: acting at 23:59 and again at
// 00:01 the next day counts as a new day even though less than 24h elapsed.
func IsNewDay(lastReset *time.Time, now time.Time) bool {
	if lastReset == nil || lastReset.IsZero() {
		return true
	}
	ly, lm, ld := lastReset.In(now.Location()).Date()
	ny, nm, nd := now.Date()
	if ny != ly {
		return ny > ly
	}
	if nm != lm {
		return nm > lm
	}
	return nd > ld
}

// NextMidnight returns 00:00:00 of the calendar day following now, in now's
// location. This is the instant at which premium daily usage resets.
func NextMidnight(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, now.Location())
}

// Evaluate computes the allow/deny decision for one more story. It is
// side-effect free and safe to call repeatedly for display purposes.
//
// Free accounts are capped for life and ignore the daily counters. Premium
// accounts treat the stored daily count as zero once a new calendar day has
// started; the reset itself is lazy and only becomes persistent via Apply.
func Evaluate(state State, now time.Time) Decision {
	newDay := IsNewDay(state.LastResetDate, now)
	resetAt := NextMidnight(now)

	if !state.IsPremium {
		left := FreeLifetimeLimit - state.FreeStoriesUsed
		if left < 0 {
			left = 0
		}
		return Decision{
			CanCreate:   left > 0,
			StoriesLeft: left,
			ResetAt:     resetAt,
			IsNewDay:    newDay,
		}
	}

	current := state.DailyStoriesCount
	if newDay {
		current = 0
	}
	left := PremiumDailyLimit - current
	if left < 0 {
		left = 0
	}
	return Decision{
		CanCreate:   left > 0,
		StoriesLeft: left,
		ResetAt:     resetAt,
		IsNewDay:    newDay,
	}
}

// Apply returns the State to persist after a successful story creation. It
// must only be called once Evaluate reported CanCreate, and the result must be
// written in the same transaction as the story row; the engine itself does not
// re-validate the cap.
func Apply(state State, now time.Time) State {
	next := state
	if !state.IsPremium {
		next.FreeStoriesUsed++
		return next
	}
	if IsNewDay(state.LastResetDate, now) {
		reset := now
		next.DailyStoriesCount = 1
		next.LastResetDate = &reset
		return next
	}
	next.DailyStoriesCount++
	return next
}

// FormatUntilReset renders the time remaining until resetAt for UI copy:
// "available now" once resetAt has passed, otherwise "{H}h {M}m" or "{M}m".
func FormatUntilReset(resetAt, now time.Time) string {
	diff := resetAt.Sub(now)
	if diff <= 0 {
		return "available now"
	}
	hours := int(diff / time.Hour)
	minutes := int(diff%time.Hour) / int(time.Minute)
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}
