package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/daoteng/backoffice/internal/domain/user"
)

func requestWithRole(role user.Role) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/announcements", http.NoBody)
	ctx := WithUser(req.Context(), &user.User{ID: "u-1", Role: role, Enabled: true})
	return req.WithContext(ctx)
}

func TestRequireRole_Allowed(t *testing.T) {
	handler := RequireRole(user.RoleAdmin, user.RoleEditor)(http.HandlerFunc(
		func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, requestWithRole(user.RoleEditor))

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 for editor, got %d", rec.Code)
	}
}

func TestRequireRole_Forbidden(t *testing.T) {
	handler := RequireRole(user.RoleAdmin)(http.HandlerFunc(
		func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, requestWithRole(user.RoleViewer))

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 for viewer, got %d", rec.Code)
	}
}

func TestRequireRole_NoUser(t *testing.T) {
	handler := RequireRole(user.RoleAdmin)(http.HandlerFunc(
		func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/announcements", http.NoBody)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without user, got %d", rec.Code)
	}
}
