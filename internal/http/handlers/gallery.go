package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"server/internal/infra"
	"server/internal/sqlinline"
)

const galleryCachePrefix = "gallery:"

const (
	galleryDefaultPageSize = 12
	galleryMaxPageSize     = 50
)

type galleryCommentDTO struct {
	ID         string    `json:"id"`
	Content    string    `json:"content"`
	AuthorName string    `json:"author_name"`
	CreatedAt  time.Time `json:"created_at"`
}

type galleryStoryDTO struct {
	ID            string              `json:"id"`
	Topic         string              `json:"topic"`
	Grade         string              `json:"grade"`
	Subject       string              `json:"subject"`
	StoryURL      string              `json:"story_url"`
	WorksheetURL  string              `json:"worksheet_url"`
	CreatedAt     time.Time           `json:"created_at"`
	AuthorName    string              `json:"author_name"`
	AverageRating float64             `json:"average_rating"`
	TotalRatings  int                 `json:"total_ratings"`
	TotalComments int                 `json:"total_comments"`
	Comments      []galleryCommentDTO `json:"comments"`
}

type galleryPageDTO struct {
	Items      []galleryStoryDTO `json:"items"`
	Page       int               `json:"page"`
	TotalPages int               `json:"total_pages"`
	Total      int               `json:"total"`
}

// GalleryList is public. Pages are cached in redis keyed by page number; any
// write to the gallery invalidates the whole prefix.
func (a *App) GalleryList(w http.ResponseWriter, r *http.Request) {
	page := 1
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			page = n
		}
	}
	limit := galleryDefaultPageSize
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= galleryMaxPageSize {
			limit = n
		}
	}
	cacheKey := fmt.Sprintf("%spage:%d:%d", galleryCachePrefix, page, limit)
	var cached galleryPageDTO
	if hit, err := a.Cache.Get(r.Context(), cacheKey, &cached); err == nil && hit {
		a.json(w, http.StatusOK, cached)
		return
	}

	dto, err := a.loadGalleryPage(r, page, limit)
	if err != nil {
		a.Logger.Error().Err(err).Int("page", page).Msg("gallery load failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load gallery")
		return
	}
	if err := a.Cache.Set(r.Context(), cacheKey, dto, a.Config.GalleryCacheTTL); err != nil {
		a.Logger.Warn().Err(err).Msg("gallery cache write failed")
	}
	a.json(w, http.StatusOK, dto)
}

func (a *App) loadGalleryPage(r *http.Request, page, limit int) (*galleryPageDTO, error) {
	ctx := r.Context()
	var total int
	if err := a.SQL.QueryRow(ctx, sqlinline.QCountGalleryStories).Scan(&total); err != nil {
		return nil, err
	}
	offset := (page - 1) * limit
	rows, err := a.SQL.Query(ctx, sqlinline.QSelectGalleryPage, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []galleryStoryDTO{}
	ids := []string{}
	for rows.Next() {
		var s galleryStoryDTO
		if err := rows.Scan(&s.ID, &s.Topic, &s.Grade, &s.Subject, &s.StoryURL, &s.WorksheetURL, &s.CreatedAt, &s.AuthorName, &s.AverageRating, &s.TotalRatings, &s.TotalComments); err != nil {
			return nil, err
		}
		s.Comments = []galleryCommentDTO{}
		items = append(items, s)
		ids = append(ids, s.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(ids) > 0 {
		byStory, err := a.loadGalleryComments(r, ids)
		if err != nil {
			return nil, err
		}
		for i := range items {
			if cs, ok := byStory[items[i].ID]; ok {
				items[i].Comments = cs
			}
		}
	}

	totalPages := (total + limit - 1) / limit
	return &galleryPageDTO{Items: items, Page: page, TotalPages: totalPages, Total: total}, nil
}

func (a *App) loadGalleryComments(r *http.Request, storyIDs []string) (map[string][]galleryCommentDTO, error) {
	rows, err := a.SQL.Query(r.Context(), sqlinline.QSelectGalleryComments, storyIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string][]galleryCommentDTO{}
	for rows.Next() {
		var storyID string
		var c galleryCommentDTO
		if err := rows.Scan(&storyID, &c.ID, &c.Content, &c.AuthorName, &c.CreatedAt); err != nil {
			return nil, err
		}
		out[storyID] = append(out[storyID], c)
	}
	return out, rows.Err()
}

type rateRequest struct {
	Rating int `json:"rating"`
}

func (a *App) GalleryRate(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	storyID := chi.URLParam(r, "story_id")
	var req rateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		a.error(w, http.StatusBadRequest, "bad_request", "rating must be between 1 and 5")
		return
	}
	if !a.storyIsPublished(r, storyID) {
		a.error(w, http.StatusNotFound, "not_found", "story not found")
		return
	}
	row := a.SQL.QueryRow(r.Context(), sqlinline.QUpsertRating, storyID, userID, req.Rating)
	var id string
	var rating int
	var createdAt, updatedAt time.Time
	if err := row.Scan(&id, &rating, &createdAt, &updatedAt); err != nil {
		a.Logger.Error().Err(err).Msg("upsert rating failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to save rating")
		return
	}
	a.invalidateGallery(r)
	a.json(w, http.StatusOK, map[string]any{"id": id, "rating": rating, "updated_at": updatedAt})
}

type commentRequest struct {
	Content string `json:"content"`
}

func (a *App) GalleryComment(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	storyID := chi.URLParam(r, "story_id")
	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" || len(req.Content) > 1000 {
		a.error(w, http.StatusBadRequest, "bad_request", "content required, at most 1000 characters")
		return
	}
	if !a.storyIsPublished(r, storyID) {
		a.error(w, http.StatusNotFound, "not_found", "story not found")
		return
	}
	row := a.SQL.QueryRow(r.Context(), sqlinline.QInsertComment, storyID, userID, req.Content)
	var c galleryCommentDTO
	if err := row.Scan(&c.ID, &c.Content, &c.AuthorName, &c.CreatedAt); err != nil {
		a.Logger.Error().Err(err).Msg("insert comment failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to save comment")
		return
	}
	a.invalidateGallery(r)
	a.json(w, http.StatusCreated, c)
}

func (a *App) storyIsPublished(r *http.Request, storyID string) bool {
	if storyID == "" {
		return false
	}
	var id string
	err := a.SQL.QueryRow(r.Context(), sqlinline.QSelectStoryPublished, storyID).Scan(&id)
	if err != nil {
		if !infra.IsNoRows(err) {
			a.Logger.Error().Err(err).Str("story_id", storyID).Msg("story lookup failed")
		}
		return false
	}
	return true
}

func (a *App) invalidateGallery(r *http.Request) {
	if err := a.Cache.InvalidatePrefix(r.Context(), galleryCachePrefix); err != nil {
		a.Logger.Warn().Err(err).Msg("gallery cache invalidation failed")
	}
}
