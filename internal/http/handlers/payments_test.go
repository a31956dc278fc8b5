package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"server/internal/quota"
)

func TestPaymentsCreateActivatesPremium(t *testing.T) {
	user := freeUser("user-1")
	user.FreeStoriesUsed = quota.FreeLifetimeLimit
	users := newStubUsers(user)
	app := newTestApp(users, &stubGenerator{}, nil)

	body := map[string]any{"amount_cents": 499, "reference": "wallet-tx-1"}
	rr := httptest.NewRecorder()
	app.PaymentsCreate(rr, authedRequest("POST", "/v1/payments", body, user.ID, "user"))
	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body=%s", rr.Code, rr.Body.String())
	}
	var dto paymentDTO
	if err := json.NewDecoder(rr.Body).Decode(&dto); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if dto.Method != "wallet" || dto.Status != "completed" {
		t.Fatalf("unexpected payment: %+v", dto)
	}

	upgraded, _ := users.GetByID(context.Background(), user.ID)
	if !upgraded.IsPremium {
		t.Fatal("user should be premium after payment")
	}
	d := quota.Evaluate(upgraded.QuotaState(), testNow)
	if !d.CanCreate || d.StoriesLeft != quota.PremiumDailyLimit {
		t.Fatalf("upgrade should reset daily quota, got %+v", d)
	}
}

func TestPaymentsCreateAlreadyPremium(t *testing.T) {
	user := premiumUser("user-1", 0, testNow)
	app := newTestApp(newStubUsers(user), &stubGenerator{}, nil)

	body := map[string]any{"amount_cents": 499, "reference": "wallet-tx-2"}
	rr := httptest.NewRecorder()
	app.PaymentsCreate(rr, authedRequest("POST", "/v1/payments", body, user.ID, "user"))
	if rr.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rr.Code)
	}
}

func TestPaymentsCreateValidation(t *testing.T) {
	app := newTestApp(newStubUsers(freeUser("user-1")), &stubGenerator{}, nil)
	tests := []struct {
		name string
		body map[string]any
	}{
		{"zero amount", map[string]any{"amount_cents": 0, "reference": "r"}},
		{"missing reference", map[string]any{"amount_cents": 100}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			app.PaymentsCreate(rr, authedRequest("POST", "/v1/payments", tt.body, "user-1", "user"))
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rr.Code)
			}
		})
	}
}

func TestAdminPremiumEndpointsRequireAdminRole(t *testing.T) {
	user := freeUser("user-1")
	app := newTestApp(newStubUsers(user), &stubGenerator{}, nil)
	r := chi.NewRouter()
	r.Post("/v1/admin/users/{user_id}/premium", app.AdminGrantPremium)
	r.Delete("/v1/admin/users/{user_id}/premium", app.AdminRevokePremium)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, authedRequest("POST", "/v1/admin/users/user-1/premium", nil, "user-2", "user"))
	if rr.Code != http.StatusForbidden {
		t.Fatalf("non-admin grant: status = %d, want 403", rr.Code)
	}

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, authedRequest("POST", "/v1/admin/users/user-1/premium", nil, "admin-1", "admin"))
	if rr.Code != http.StatusOK {
		t.Fatalf("admin grant: status = %d, want 200; body=%s", rr.Code, rr.Body.String())
	}
	upgraded, _ := app.Users.GetByID(context.Background(), "user-1")
	if !upgraded.IsPremium {
		t.Fatal("grant should flip premium flag")
	}

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, authedRequest("DELETE", "/v1/admin/users/user-1/premium", nil, "admin-1", "admin"))
	if rr.Code != http.StatusOK {
		t.Fatalf("admin revoke: status = %d, want 200", rr.Code)
	}
	downgraded, _ := app.Users.GetByID(context.Background(), "user-1")
	if downgraded.IsPremium {
		t.Fatal("revoke should clear premium flag")
	}
}
