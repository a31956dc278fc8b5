package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestSignAndVerifyJWT(t *testing.T) {
	claims := TokenClaims{
		Email:  "maria@example.com",
		Role:   "user",
		Locale: "es",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: "user-123",
		},
	}
	token, err := SignJWT("secret", claims, time.Hour)
	if err != nil {
		t.Fatalf("SignJWT returned error: %v", err)
	}

	parsed, err := VerifyJWT("secret", token)
	if err != nil {
		t.Fatalf("VerifyJWT returned error: %v", err)
	}
	if parsed.Subject != "user-123" || parsed.Email != "maria@example.com" || parsed.Role != "user" {
		t.Fatalf("unexpected claims: %+v", parsed)
	}
}

func TestVerifyJWTRejectsWrongSecret(t *testing.T) {
	token, err := SignJWT("secret", TokenClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: "u"}}, time.Hour)
	if err != nil {
		t.Fatalf("SignJWT returned error: %v", err)
	}
	if _, err := VerifyJWT("other-secret", token); err == nil {
		t.Fatal("expected verification failure with wrong secret")
	}
}

func TestVerifyJWTRejectsExpired(t *testing.T) {
	token, err := SignJWT("secret", TokenClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: "u"}}, -time.Minute)
	if err != nil {
		t.Fatalf("SignJWT returned error: %v", err)
	}
	if _, err := VerifyJWT("secret", token); err == nil {
		t.Fatal("expected verification failure for expired token")
	}
}

func TestAuthJWTMiddleware(t *testing.T) {
	token, err := SignJWT("secret", TokenClaims{
		Role:   "admin",
		Locale: "es",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: "user-9",
		},
	}, time.Hour)
	if err != nil {
		t.Fatalf("SignJWT returned error: %v", err)
	}

	var gotUser, gotRole, gotLocale string
	handler := AuthJWT("secret")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = UserIDFromContext(r.Context())
		gotRole = RoleFromContext(r.Context())
		gotLocale = LocaleFromContext(r.Context())
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, r)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotUser != "user-9" || gotRole != "admin" || gotLocale != "es" {
		t.Fatalf("context values = (%q, %q, %q)", gotUser, gotRole, gotLocale)
	}
}

func TestAuthJWTMiddlewareRejects(t *testing.T) {
	handler := AuthJWT("secret")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run without a valid token")
	}))

	tests := []struct {
		name   string
		header string
	}{
		{name: "missing header", header: ""},
		{name: "not bearer", header: "Basic abc"},
		{name: "garbage token", header: "Bearer not-a-token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, r)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", rec.Code)
			}
		})
	}
}
