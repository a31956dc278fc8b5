package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"server/internal/middleware"
	"server/internal/quota"
)

func TestRegister(t *testing.T) {
	users := newStubUsers()
	app := newTestApp(users, &stubGenerator{}, nil)

	body := map[string]any{"email": "Maestra@Test.dev", "name": "Maestra", "password": "super-secret", "locale": "es"}
	rr := httptest.NewRecorder()
	app.Register(rr, authedRequest("POST", "/v1/auth/register", body, "", ""))

	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body=%s", rr.Code, rr.Body.String())
	}
	var resp authResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("expected a token")
	}
	claims, err := middleware.VerifyJWT("test-secret", resp.Token)
	if err != nil {
		t.Fatalf("token does not verify: %v", err)
	}
	if claims.Email != "maestra@test.dev" {
		t.Fatalf("claims email = %q, want lowercased", claims.Email)
	}
	if resp.User.StoriesLeft != quota.FreeLifetimeLimit {
		t.Fatalf("stories_left = %d, want %d", resp.User.StoriesLeft, quota.FreeLifetimeLimit)
	}
}

func TestRegisterValidation(t *testing.T) {
	app := newTestApp(newStubUsers(), &stubGenerator{}, nil)
	tests := []struct {
		name string
		body map[string]any
	}{
		{"bad email", map[string]any{"email": "not-an-email", "name": "X", "password": "longenough"}},
		{"short password", map[string]any{"email": "a@b.dev", "name": "X", "password": "short"}},
		{"missing name", map[string]any{"email": "a@b.dev", "password": "longenough"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			app.Register(rr, authedRequest("POST", "/v1/auth/register", tt.body, "", ""))
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rr.Code)
			}
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	users := newStubUsers()
	app := newTestApp(users, &stubGenerator{}, nil)

	body := map[string]any{"email": "dup@test.dev", "name": "One", "password": "super-secret"}
	rr := httptest.NewRecorder()
	app.Register(rr, authedRequest("POST", "/v1/auth/register", body, "", ""))
	if rr.Code != http.StatusCreated {
		t.Fatalf("first register: status = %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	app.Register(rr, authedRequest("POST", "/v1/auth/register", body, "", ""))
	if rr.Code != http.StatusConflict {
		t.Fatalf("second register: status = %d, want 409", rr.Code)
	}
}

func TestLogin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("super-secret"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	user := freeUser("user-1")
	user.PasswordHash = string(hash)
	users := newStubUsers(user)
	app := newTestApp(users, &stubGenerator{}, nil)

	rr := httptest.NewRecorder()
	app.Login(rr, authedRequest("POST", "/v1/auth/login", map[string]any{"email": user.Email, "password": "super-secret"}, "", ""))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body=%s", rr.Code, rr.Body.String())
	}

	rr = httptest.NewRecorder()
	app.Login(rr, authedRequest("POST", "/v1/auth/login", map[string]any{"email": user.Email, "password": "wrong"}, "", ""))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password: status = %d, want 401", rr.Code)
	}

	rr = httptest.NewRecorder()
	app.Login(rr, authedRequest("POST", "/v1/auth/login", map[string]any{"email": "nobody@test.dev", "password": "whatever"}, "", ""))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("unknown email: status = %d, want 401", rr.Code)
	}
}

func TestMe(t *testing.T) {
	user := premiumUser("user-1", quota.PremiumDailyLimit, testNow.Add(-time.Hour))
	app := newTestApp(newStubUsers(user), &stubGenerator{}, nil)

	rr := httptest.NewRecorder()
	app.Me(rr, authedRequest("GET", "/v1/me", nil, user.ID, "user"))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var dto userProfileDTO
	if err := json.NewDecoder(rr.Body).Decode(&dto); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if dto.StoriesLeft != 0 || dto.CanCreate {
		t.Fatalf("exhausted premium should have 0 left, got %+v", dto)
	}
	if dto.UntilReset == "" {
		t.Fatal("expected until_reset for exhausted premium")
	}

	rr = httptest.NewRecorder()
	app.Me(rr, authedRequest("GET", "/v1/me", nil, "", ""))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous: status = %d, want 401", rr.Code)
	}
}
