package middleware_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/roamio/tours-api/internal/apperr"
	"github.com/roamio/tours-api/internal/domain"
	"github.com/roamio/tours-api/internal/http/middleware"
	"github.com/roamio/tours-api/internal/platform/auth"
)

// ---------- Mocks ----------

type mockUserStore struct {
	users map[int64]*domain.User
}

func (m *mockUserStore) FindByID(_ context.Context, id int64) (*domain.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, apperr.NotFound("No user found with that ID")
	}
	return user, nil
}

// ---------- Test Setup ----------

func setup() (*middleware.Auth, *auth.TokenIssuer, *mockUserStore) {
	tokens := auth.NewTokenIssuer("test-secret", time.Hour)
	store := &mockUserStore{users: map[int64]*domain.User{
		1: {ID: 1, Name: "Ada", Email: "ada@example.com", Role: domain.RoleUser, Active: true},
		2: {ID: 2, Name: "Root", Email: "root@example.com", Role: domain.RoleAdmin, Active: true},
	}}
	return middleware.NewAuth(tokens, store), tokens, store
}

func echoUser(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := middleware.CurrentUser(r)
		if user == nil {
			w.Write([]byte("anonymous"))
			return
		}
		json.NewEncoder(w).Encode(user)
	})
}

func errMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("Invalid error body: %v", err)
	}
	msg, _ := body["message"].(string)
	return msg
}

// ---------- Tests ----------

func TestProtect_NoToken_Unauthorized(t *testing.T) {
	mw, _, _ := setup()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	mw.Protect(echoUser(t)).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401, got %d", rec.Code)
	}
	if msg := errMessage(t, rec); msg != "You are not logged in! Please log in to get access." {
		t.Fatalf("Unexpected message: %q", msg)
	}
}

func TestProtect_BearerToken_AttachesUser(t *testing.T) {
	mw, tokens, _ := setup()

	token, err := tokens.Issue(1)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	mw.Protect(echoUser(t)).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var user domain.User
	if err := json.NewDecoder(rec.Body).Decode(&user); err != nil {
		t.Fatalf("Invalid body: %v", err)
	}
	if user.ID != 1 || user.Email != "ada@example.com" {
		t.Fatalf("Wrong user attached: %+v", user)
	}
}

func TestProtect_CookieToken_AttachesUser(t *testing.T) {
	mw, tokens, _ := setup()

	token, err := tokens.Issue(1)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: token})
	mw.Protect(echoUser(t)).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
}

func TestProtect_InvalidToken_Unauthorized(t *testing.T) {
	mw, _, _ := setup()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	mw.Protect(echoUser(t)).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401, got %d", rec.Code)
	}
}

func TestProtect_DeletedUser_Unauthorized(t *testing.T) {
	mw, tokens, _ := setup()

	token, err := tokens.Issue(99)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	mw.Protect(echoUser(t)).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401, got %d", rec.Code)
	}
	if msg := errMessage(t, rec); msg != "The user belonging to this token does no longer exist." {
		t.Fatalf("Unexpected message: %q", msg)
	}
}

func TestProtect_PasswordChangedAfterToken_Unauthorized(t *testing.T) {
	mw, tokens, store := setup()

	token, err := tokens.Issue(1)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	changed := time.Now().Add(time.Hour)
	store.users[1].PasswordChangedAt = &changed

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	mw.Protect(echoUser(t)).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401, got %d", rec.Code)
	}
	if msg := errMessage(t, rec); msg != "User recently changed password! Please log in again." {
		t.Fatalf("Unexpected message: %q", msg)
	}
}

func TestIsLoggedIn_NeverBlocks(t *testing.T) {
	mw, tokens, _ := setup()

	// no token at all
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	mw.IsLoggedIn(echoUser(t)).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != "anonymous" {
		t.Fatalf("Expected anonymous pass-through, got %d %q", rec.Code, rec.Body.String())
	}

	// valid token attaches the user
	token, err := tokens.Issue(1)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: token})
	mw.IsLoggedIn(echoUser(t)).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() == "anonymous" {
		t.Fatalf("Expected user attached, got %d %q", rec.Code, rec.Body.String())
	}
}

func TestRestrictTo(t *testing.T) {
	mw, tokens, _ := setup()

	guard := func(next http.Handler) http.Handler {
		return mw.Protect(middleware.RestrictTo(domain.RoleAdmin, domain.RoleLeadGuide)(next))
	}

	userToken, err := tokens.Issue(1)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	adminToken, err := tokens.Issue(2)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	req.Header.Set("Authorization", "Bearer "+userToken)
	guard(echoUser(t)).ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("Expected 403 for plain user, got %d", rec.Code)
	}
	if msg := errMessage(t, rec); msg != "You do not have permission to perform this action" {
		t.Fatalf("Unexpected message: %q", msg)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodDelete, "/", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	guard(echoUser(t)).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 for admin, got %d", rec.Code)
	}
}
