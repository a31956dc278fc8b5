package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"

	"server/internal/sqlinline"
)

func TestGalleryList(t *testing.T) {
	sqlStub := newStubSQL()
	sqlStub.row[sqlinline.QCountGalleryStories] = func(dest ...any) error {
		*(dest[0].(*int)) = 1
		return nil
	}
	sqlStub.rows[sqlinline.QSelectGalleryPage] = &fakeRows{data: [][]any{
		{"story-1", "el mar", "2", "ciencias", "https://f/s.pdf", "https://f/w.pdf", testNow, "Maestra", 4.5, 2, 1},
	}}
	sqlStub.rows[sqlinline.QSelectGalleryComments] = &fakeRows{data: [][]any{
		{"story-1", "comment-1", "¡Hermoso cuento!", "Otro Docente", testNow},
	}}
	app := newTestApp(newStubUsers(), &stubGenerator{}, sqlStub)

	rr := httptest.NewRecorder()
	app.GalleryList(rr, httptest.NewRequest("GET", "/v1/gallery?page=1", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body=%s", rr.Code, rr.Body.String())
	}
	var page galleryPageDTO
	if err := json.NewDecoder(rr.Body).Decode(&page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if page.Total != 1 || len(page.Items) != 1 {
		t.Fatalf("unexpected page: %+v", page)
	}
	item := page.Items[0]
	if item.AverageRating != 4.5 || item.TotalRatings != 2 {
		t.Fatalf("rating aggregates wrong: %+v", item)
	}
	if len(item.Comments) != 1 || item.Comments[0].AuthorName != "Otro Docente" {
		t.Fatalf("comments wrong: %+v", item.Comments)
	}
}

func TestGalleryRateValidation(t *testing.T) {
	app := newTestApp(newStubUsers(), &stubGenerator{}, nil)
	r := chi.NewRouter()
	r.Post("/v1/gallery/{story_id}/rating", app.GalleryRate)

	for _, rating := range []int{0, 6} {
		rr := httptest.NewRecorder()
		req := authedRequest("POST", "/v1/gallery/story-1/rating", map[string]any{"rating": rating}, "user-1", "user")
		r.ServeHTTP(rr, req)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("rating %d: status = %d, want 400", rating, rr.Code)
		}
	}
}

func TestGalleryRateUnpublishedStory(t *testing.T) {
	sqlStub := newStubSQL()
	sqlStub.row[sqlinline.QSelectStoryPublished] = func(dest ...any) error {
		return pgx.ErrNoRows
	}
	app := newTestApp(newStubUsers(), &stubGenerator{}, sqlStub)
	r := chi.NewRouter()
	r.Post("/v1/gallery/{story_id}/rating", app.GalleryRate)

	rr := httptest.NewRecorder()
	req := authedRequest("POST", "/v1/gallery/story-9/rating", map[string]any{"rating": 4}, "user-1", "user")
	r.ServeHTTP(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
}

func TestGalleryCommentRequiresAuth(t *testing.T) {
	app := newTestApp(newStubUsers(), &stubGenerator{}, nil)
	r := chi.NewRouter()
	r.Post("/v1/gallery/{story_id}/comments", app.GalleryComment)

	rr := httptest.NewRecorder()
	req := authedRequest("POST", "/v1/gallery/story-1/comments", map[string]any{"content": "hola"}, "", "")
	r.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rr.Code)
	}
}

func TestGalleryComment(t *testing.T) {
	sqlStub := newStubSQL()
	sqlStub.row[sqlinline.QSelectStoryPublished] = func(dest ...any) error {
		*(dest[0].(*string)) = "story-1"
		return nil
	}
	sqlStub.row[sqlinline.QInsertComment] = func(dest ...any) error {
		*(dest[0].(*string)) = "comment-1"
		*(dest[1].(*string)) = "Qué lindo"
		*(dest[2].(*string)) = "Maestra"
		*(dest[3].(*time.Time)) = testNow
		return nil
	}
	app := newTestApp(newStubUsers(), &stubGenerator{}, sqlStub)
	r := chi.NewRouter()
	r.Post("/v1/gallery/{story_id}/comments", app.GalleryComment)

	rr := httptest.NewRecorder()
	req := authedRequest("POST", "/v1/gallery/story-1/comments", map[string]any{"content": "Qué lindo"}, "user-1", "user")
	r.ServeHTTP(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body=%s", rr.Code, rr.Body.String())
	}
	var c galleryCommentDTO
	if err := json.NewDecoder(rr.Body).Decode(&c); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if c.ID != "comment-1" || c.AuthorName != "Maestra" {
		t.Fatalf("unexpected comment: %+v", c)
	}
}
