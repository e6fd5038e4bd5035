package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func testTokenConfig() TokenConfig {
	return TokenConfig{
		Secret: []byte("test-secret"),
		Issuer: "caremarket",
		TTL:    time.Hour,
	}
}

func TestIssueAndParseToken(t *testing.T) {
	cfg := testTokenConfig()

	signed, err := IssueToken(cfg, 42, RolePatient)
	if err != nil {
		t.Fatalf("IssueToken() error: %v", err)
	}

	actor, err := ParseToken(cfg, signed)
	if err != nil {
		t.Fatalf("ParseToken() error: %v", err)
	}
	if actor.ID != 42 {
		t.Errorf("expected actor id 42, got %d", actor.ID)
	}
	if actor.Role != RolePatient {
		t.Errorf("expected role patient, got %s", actor.Role)
	}
	if actor.IsAdmin() {
		t.Error("patient should not be admin")
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	cfg := testTokenConfig()
	signed, err := IssueToken(cfg, 1, RoleAdmin)
	if err != nil {
		t.Fatalf("IssueToken() error: %v", err)
	}

	bad := cfg
	bad.Secret = []byte("other-secret")
	if _, err := ParseToken(bad, signed); err == nil {
		t.Error("expected error for token signed with different secret")
	}
}

func TestParseToken_Expired(t *testing.T) {
	cfg := testTokenConfig()
	cfg.TTL = -time.Minute

	signed, err := IssueToken(cfg, 1, RolePatient)
	if err != nil {
		t.Fatalf("IssueToken() error: %v", err)
	}
	if _, err := ParseToken(cfg, signed); err == nil {
		t.Error("expected error for expired token")
	}
}

func TestJWTMiddleware(t *testing.T) {
	cfg := testTokenConfig()
	signed, err := IssueToken(cfg, 7, RolePatient)
	if err != nil {
		t.Fatalf("IssueToken() error: %v", err)
	}

	e := echo.New()
	e.Use(JWTMiddleware(cfg))
	e.GET("/me", func(c echo.Context) error {
		actor := MustActor(c)
		if actor.ID != 7 {
			t.Errorf("expected actor id 7, got %d", actor.ID)
		}
		return c.NoContent(http.StatusOK)
	})

	tests := []struct {
		name       string
		authHeader string
		wantCode   int
	}{
		{"valid bearer token", "Bearer " + signed, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"malformed header", "Token abc", http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-jwt", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			if rec.Code != tt.wantCode {
				t.Errorf("expected %d, got %d", tt.wantCode, rec.Code)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	cfg := testTokenConfig()

	e := echo.New()
	e.Use(JWTMiddleware(cfg))
	admin := e.Group("/admin", RequireRole(RoleAdmin))
	admin.GET("/doctors", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	adminToken, _ := IssueToken(cfg, 1, RoleAdmin)
	patientToken, _ := IssueToken(cfg, 2, RolePatient)

	tests := []struct {
		name     string
		token    string
		wantCode int
	}{
		{"admin allowed", adminToken, http.StatusOK},
		{"patient forbidden", patientToken, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin/doctors", nil)
			req.Header.Set("Authorization", "Bearer "+tt.token)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			if rec.Code != tt.wantCode {
				t.Errorf("expected %d, got %d", tt.wantCode, rec.Code)
			}
		})
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("HashPassword() error: %v", err)
	}
	if hash == "s3cret" {
		t.Error("hash should not equal plaintext")
	}
	if !CheckPassword(hash, "s3cret") {
		t.Error("expected matching password to verify")
	}
	if CheckPassword(hash, "wrong") {
		t.Error("expected mismatched password to fail")
	}
}
