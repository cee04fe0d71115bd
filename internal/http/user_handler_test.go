package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"edunextgen-api/internal/domain"
	"edunextgen-api/internal/repository"
	"edunextgen-api/internal/service"
)

// brokenStore falla en todas las operaciones.
type brokenStore struct {
	repository.UserRepository
}

func (brokenStore) UpsertLogin(context.Context, domain.User) (repository.WriteResult, error) {
	return repository.WriteResult{}, errors.New("store down")
}

func (brokenStore) TouchLogin(context.Context, string, string) (repository.WriteResult, error) {
	return repository.WriteResult{}, errors.New("store down")
}

func (brokenStore) ListByRole(context.Context, domain.Role) ([]domain.User, error) {
	return nil, errors.New("store down")
}

func (brokenStore) Ping(context.Context) error {
	return errors.New("store down")
}

func setupRouter(repo repository.UserRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()
	userH := NewUserHandler(logger, service.NewUserService(logger, repo, nil))
	profileH := NewProfileHandler(logger,
		service.NewProfileService(logger, repo, nil),
		service.NewTutorDirectory(logger, repo, nil),
	)
	return NewRouter(logger, userH, profileH, NewHealthHandler(logger, repo))
}

func performRequest(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var payload []byte
	if body != nil {
		payload, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
}

func TestUserHandlerCreateUser_InsertThenUpdate(t *testing.T) {
	r := setupRouter(repository.NewMemoryUserRepository())

	rec := performRequest(r, http.MethodPost, "/users", map[string]string{
		"email": "user@example.com",
		"name":  "Test",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	var res repository.WriteResult
	decodeBody(t, rec, &res)
	if !res.Inserted || res.UpsertedID == "" {
		t.Fatalf("expected insert result, got %+v", res)
	}

	rec = performRequest(r, http.MethodPost, "/users", map[string]string{"email": "user@example.com"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	decodeBody(t, rec, &res)
	if res.Inserted || res.MatchedCount != 1 {
		t.Fatalf("expected update result, got %+v", res)
	}
}

func TestUserHandlerCreateUser_InvalidRequest(t *testing.T) {
	r := setupRouter(repository.NewMemoryUserRepository())

	tests := []struct {
		name string
		body any
	}{
		{name: "missing email", body: map[string]string{"name": "x"}},
		{name: "bad role", body: map[string]string{"email": "a@x.com", "role": "admin"}},
		{name: "not json object", body: []int{1, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := performRequest(r, http.MethodPost, "/users", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d", rec.Code)
			}
		})
	}
}

func TestUserHandlerCreateUser_ExistingUserWithUnknownRole(t *testing.T) {
	r := setupRouter(repository.NewMemoryUserRepository())
	performRequest(r, http.MethodPost, "/users", map[string]string{"email": "a@x.com"})

	rec := performRequest(r, http.MethodPost, "/users", map[string]string{"email": "a@x.com", "role": "admin"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	var res repository.WriteResult
	decodeBody(t, rec, &res)
	if res.Inserted || res.MatchedCount != 1 {
		t.Fatalf("expected update result, got %+v", res)
	}
}

func TestUserHandlerCreateUser_StoreFailure(t *testing.T) {
	r := setupRouter(brokenStore{})

	rec := performRequest(r, http.MethodPost, "/users", map[string]string{"email": "a@x.com"})
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rec.Code)
	}
}

func TestUserHandlerGetUserByEmail(t *testing.T) {
	r := setupRouter(repository.NewMemoryUserRepository())

	rec := performRequest(r, http.MethodGet, "/users/email/missing@example.com", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}

	performRequest(r, http.MethodPost, "/users", map[string]string{"email": "t@example.com", "role": "tutor"})
	rec = performRequest(r, http.MethodGet, "/users/email/t@example.com", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	var user domain.User
	decodeBody(t, rec, &user)
	if user.Email != "t@example.com" || user.Role != domain.RoleTutor || user.Profile == nil {
		t.Fatalf("unexpected user %+v", user)
	}
	if user.CreatedAt == "" || user.LastLoggedIn == "" {
		t.Fatalf("expected timestamps, got %+v", user)
	}
}

func TestRouterMiddleware(t *testing.T) {
	r := setupRouter(repository.NewMemoryUserRepository())

	t.Run("hello", func(t *testing.T) {
		rec := performRequest(r, http.MethodGet, "/", nil)
		if rec.Code != http.StatusOK || rec.Body.String() != "Hello World!" {
			t.Fatalf("unexpected response %d %q", rec.Code, rec.Body.String())
		}
	})

	t.Run("request id generated", func(t *testing.T) {
		rec := performRequest(r, http.MethodGet, "/", nil)
		if rec.Header().Get(requestIDHeader) == "" {
			t.Fatalf("expected generated request id")
		}
	})

	t.Run("request id propagated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(requestIDHeader, "req-123")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Header().Get(requestIDHeader) != "req-123" {
			t.Fatalf("expected propagated request id, got %q", rec.Header().Get(requestIDHeader))
		}
	})

	t.Run("cors preflight", func(t *testing.T) {
		h := WithCORS(r, []string{"https://app.example"})
		req := httptest.NewRequest(http.MethodOptions, "/users/profile", nil)
		req.Header.Set("Origin", "https://app.example")
		req.Header.Set("Access-Control-Request-Method", http.MethodPut)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example" {
			t.Fatalf("expected allowed origin header, got %q", got)
		}
	})
}

func TestHealthHandler(t *testing.T) {
	rec := performRequest(setupRouter(repository.NewMemoryUserRepository()), http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	rec = performRequest(setupRouter(brokenStore{}), http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", rec.Code)
	}
}
