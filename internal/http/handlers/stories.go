package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"server/internal/domain"
	"server/internal/middleware"
	"server/internal/providers/story"
	"server/internal/quota"
	"server/internal/sqlinline"
)

type storyCreateRequest struct {
	Topic       string `json:"topic"`
	Grade       string `json:"grade"`
	Subject     string `json:"subject"`
	ImageLayout string `json:"image_layout"`
}

type storyDTO struct {
	ID           string    `json:"id"`
	Topic        string    `json:"topic"`
	Grade        string    `json:"grade"`
	Subject      string    `json:"subject"`
	ImageLayout  string    `json:"image_layout"`
	StoryURL     string    `json:"story_url"`
	WorksheetURL string    `json:"worksheet_url"`
	CreatedAt    time.Time `json:"created_at"`
}

type storyCreateResponse struct {
	Story       storyDTO `json:"story"`
	StoriesLeft int      `json:"stories_left"`
	ResetAt     string   `json:"reset_at,omitempty"`
}

type quotaDeniedResponse struct {
	Error       string `json:"error"`
	Message     string `json:"message"`
	StoriesLeft int    `json:"stories_left"`
	ResetAt     string `json:"reset_at,omitempty"`
	UntilReset  string `json:"until_reset,omitempty"`
}

// StoriesCreate runs the full pipeline: quota pre-check, external generation,
// then the row-locked re-check plus insert. Quota is only consumed after the
// story row exists.
func (a *App) StoriesCreate(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	var req storyCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	req.Topic = strings.TrimSpace(req.Topic)
	if req.Topic == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "topic required")
		return
	}
	layout := domain.ImageLayout(req.ImageLayout)
	if req.ImageLayout == "" {
		layout = domain.ImageLayoutHeader
	} else if !domain.ValidImageLayout(layout) {
		a.error(w, http.StatusBadRequest, "bad_request", "unsupported image layout")
		return
	}

	locale := middleware.LocaleFromContext(r.Context())
	if locale == "" {
		locale = a.Config.DefaultLocale
	}
	now := a.now()

	user, err := a.Users.GetByID(r.Context(), userID)
	if err != nil {
		a.error(w, http.StatusNotFound, "not_found", "user not found")
		return
	}

	// Advisory pre-check. The authoritative check happens again under the
	// row lock inside CreateStoryWithQuota.
	if d := quota.Evaluate(user.QuotaState(), now); !d.CanCreate {
		a.denyQuota(w, r, user, d, now, locale)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), a.Config.StoryTimeout)
	defer cancel()
	started := time.Now()
	result, err := a.Generator.Generate(ctx, story.GenerateRequest{
		Topic:       req.Topic,
		Grade:       req.Grade,
		Subject:     req.Subject,
		ImageLayout: layout,
		RequestID:   uuid.NewString(),
	})
	if err != nil {
		a.Logger.Error().Err(err).Str("user_id", userID).Msg("story generation failed")
		a.logUsage(r.Context(), userID, "STORY_CREATE", false, time.Since(started), map[string]any{"topic": req.Topic})
		a.error(w, http.StatusBadGateway, "provider_failure", providerFailureMessage(locale))
		return
	}

	st := &domain.Story{
		UserID:       userID,
		Topic:        req.Topic,
		Grade:        req.Grade,
		Subject:      req.Subject,
		ImageLayout:  layout,
		StoryURL:     result.StoryURL,
		WorksheetURL: result.WorksheetURL,
	}
	decision, err := a.Users.CreateStoryWithQuota(r.Context(), st, a.now())
	if err != nil {
		if errors.Is(err, domain.ErrQuotaExceeded) {
			// A concurrent request won the row lock and consumed the
			// last slot while we were generating. Reload so the denial
			// reflects the state that actually denied us.
			if fresh, ferr := a.Users.GetByID(r.Context(), userID); ferr == nil {
				user = fresh
			}
			n := a.now()
			a.denyQuota(w, r, user, quota.Evaluate(user.QuotaState(), n), n, locale)
			return
		}
		a.Logger.Error().Err(err).Str("user_id", userID).Msg("persist story failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to save story")
		return
	}
	a.logUsage(r.Context(), userID, "STORY_CREATE", true, time.Since(started), map[string]any{"topic": req.Topic, "story_id": st.ID})
	a.invalidateGallery(r)

	resp := storyCreateResponse{
		Story: storyDTO{
			ID:           st.ID,
			Topic:        st.Topic,
			Grade:        st.Grade,
			Subject:      st.Subject,
			ImageLayout:  string(st.ImageLayout),
			StoryURL:     st.StoryURL,
			WorksheetURL: st.WorksheetURL,
			CreatedAt:    st.CreatedAt,
		},
		StoriesLeft: decision.StoriesLeft,
	}
	if user.IsPremium {
		resp.ResetAt = decision.ResetAt.Format(time.RFC3339)
	}
	a.json(w, http.StatusCreated, resp)
}

func (a *App) denyQuota(w http.ResponseWriter, r *http.Request, user *domain.User, d quota.Decision, now time.Time, locale string) {
	a.logUsage(r.Context(), user.ID, "QUOTA_DENIED", true, 0, map[string]any{"is_premium": user.IsPremium})
	resp := quotaDeniedResponse{
		Error:       "quota_exceeded",
		Message:     quotaDeniedMessage(locale, user.IsPremium, d, now),
		StoriesLeft: d.StoriesLeft,
	}
	if user.IsPremium {
		resp.ResetAt = d.ResetAt.Format(time.RFC3339)
		resp.UntilReset = quota.FormatUntilReset(d.ResetAt, now)
	}
	a.json(w, http.StatusForbidden, resp)
}

func (a *App) StoriesList(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	rows, err := a.SQL.Query(r.Context(), sqlinline.QSelectStoriesByUser, userID, limit)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to load stories")
		return
	}
	defer rows.Close()
	items := []storyDTO{}
	for rows.Next() {
		var s storyDTO
		if err := rows.Scan(&s.ID, &s.Topic, &s.Grade, &s.Subject, &s.ImageLayout, &s.StoryURL, &s.WorksheetURL, &s.CreatedAt); err != nil {
			continue
		}
		items = append(items, s)
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

func (a *App) StoryGet(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	storyID := chi.URLParam(r, "story_id")
	if storyID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "story_id required")
		return
	}
	row := a.SQL.QueryRow(r.Context(), sqlinline.QSelectStoryForUser, storyID, userID)
	var s storyDTO
	var ownerID string
	if err := row.Scan(&s.ID, &ownerID, &s.Topic, &s.Grade, &s.Subject, &s.ImageLayout, &s.StoryURL, &s.WorksheetURL, &s.CreatedAt); err != nil {
		a.error(w, http.StatusNotFound, "not_found", "story not found")
		return
	}
	a.json(w, http.StatusOK, s)
}
