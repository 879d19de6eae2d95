package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/angelmondragon/storefront/pkg/auth"
	"github.com/angelmondragon/storefront/pkg/config"
	"github.com/angelmondragon/storefront/pkg/enums"
)

var testJWT = config.JWTConfig{Secret: "secret", Issuer: "storefront-test", ExpirationMinutes: 60}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthRejectsMissingToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp := httptest.NewRecorder()
	Auth(testJWT, nil)(okHandler()).ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthRejectsInvalidToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer invalid")
	resp := httptest.NewRecorder()
	Auth(testJWT, nil)(okHandler()).ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthRejectsExpiredToken(t *testing.T) {
	token := mintTestToken(t, enums.AdminRoleAdmin, time.Now().Add(-2*time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	Auth(testJWT, nil)(okHandler()).ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthSeedsSubjectAndRole(t *testing.T) {
	token := mintTestToken(t, enums.AdminRoleViewer, time.Now())

	var subject string
	var role enums.AdminRole
	handler := Auth(testJWT, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject = SubjectFromContext(r.Context())
		role = RoleFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if subject != "ops@example.com" {
		t.Fatalf("unexpected subject %q", subject)
	}
	if role != enums.AdminRoleViewer {
		t.Fatalf("expected viewer role got %s", role)
	}
}

func TestRequireWrite(t *testing.T) {
	tests := []struct {
		name   string
		method string
		role   enums.AdminRole
		want   int
	}{
		{"viewer reads", http.MethodGet, enums.AdminRoleViewer, http.StatusOK},
		{"viewer writes", http.MethodPost, enums.AdminRoleViewer, http.StatusForbidden},
		{"admin deletes", http.MethodDelete, enums.AdminRoleAdmin, http.StatusOK},
		{"anonymous writes", http.MethodPut, "", http.StatusForbidden},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, "/", nil)
		req = req.WithContext(WithAdmin(req.Context(), "ops@example.com", tt.role))
		resp := httptest.NewRecorder()
		RequireWrite(nil)(okHandler()).ServeHTTP(resp, req)
		if resp.Code != tt.want {
			t.Fatalf("%s: expected %d got %d", tt.name, tt.want, resp.Code)
		}
	}
}

func TestRequireRole(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithAdmin(req.Context(), "ops@example.com", enums.AdminRoleViewer))

	resp := httptest.NewRecorder()
	RequireRole(nil, enums.AdminRoleAdmin)(okHandler()).ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	RequireRole(nil, enums.AdminRoleAdmin, enums.AdminRoleViewer)(okHandler()).ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func mintTestToken(t *testing.T, role enums.AdminRole, issuedAt time.Time) string {
	t.Helper()
	token, err := auth.MintAccessToken(testJWT, issuedAt, auth.AccessTokenPayload{
		Subject: "ops@example.com",
		Role:    role,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}
