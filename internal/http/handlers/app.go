package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"server/internal/cache"
	"server/internal/domain"
	"server/internal/infra"
	"server/internal/middleware"
	"server/internal/providers/story"
	"server/internal/sqlinline"
)

// StoryGenerator is the slice of the pipeline client handlers need.
type StoryGenerator interface {
	Generate(ctx context.Context, req story.GenerateRequest) (*story.Result, error)
}

// App bundles the dependencies shared by all HTTP handlers.
type App struct {
	SQL       infra.SQLExecutor
	Users     domain.UserRepository
	Generator StoryGenerator
	Cache     *cache.Cache
	Logger    infra.Logger
	Config    *infra.Config

	// Now is swappable in tests. Quota decisions are pure functions of
	// (state, now), so controlling now controls the whole engine.
	Now func() time.Time
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func (a *App) currentUserID(r *http.Request) string {
	return middleware.UserIDFromContext(r.Context())
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, errorResponse{Error: errCode, Message: message})
}

// logUsage records a usage event without failing the request on error.
func (a *App) logUsage(ctx context.Context, userID, eventType string, success bool, latency time.Duration, props any) {
	raw := json.RawMessage(`{}`)
	if props != nil {
		if b, err := json.Marshal(props); err == nil {
			raw = b
		}
	}
	if _, err := a.SQL.Exec(ctx, sqlinline.QInsertUsageEvent, userID, eventType, success, latency.Milliseconds(), raw); err != nil {
		a.Logger.Error().Err(err).Str("event", eventType).Msg("log usage failed")
	}
}
