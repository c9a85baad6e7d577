package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/example/cleanops/internal/application"
	"github.com/example/cleanops/internal/routing"
)

type sessionValidatorStub struct {
	principal application.Principal
	err       error
	seenToken string
}

func (s *sessionValidatorStub) ValidateSession(_ context.Context, token string) (application.Principal, error) {
	s.seenToken = token
	if s.err != nil {
		return application.Principal{}, s.err
	}
	return s.principal, nil
}

func TestExtractSessionToken(t *testing.T) {
	t.Parallel()

	t.Run("prefers the bearer header", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/staff", nil)
		req.Header.Set("Authorization", "Bearer header-token")
		req.Header.Set("X-Session-Token", "x-token")
		req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "cookie-token"})

		if token := extractSessionToken(req); token != "header-token" {
			t.Errorf("token = %q", token)
		}
	})

	t.Run("falls back to the session header then cookie", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/staff", nil)
		req.Header.Set("X-Session-Token", "x-token")
		req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "cookie-token"})
		if token := extractSessionToken(req); token != "x-token" {
			t.Errorf("token = %q", token)
		}

		req = httptest.NewRequest(http.MethodGet, "/staff", nil)
		req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "cookie-token"})
		if token := extractSessionToken(req); token != "cookie-token" {
			t.Errorf("token = %q", token)
		}
	})

	t.Run("ignores non-bearer authorization schemes", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/staff", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		if token := extractSessionToken(req); token != "" {
			t.Errorf("token = %q", token)
		}
	})
}

func TestRequireSession(t *testing.T) {
	t.Parallel()

	t.Run("injects the principal for valid tokens", func(t *testing.T) {
		t.Parallel()
		validator := &sessionValidatorStub{
			principal: application.Principal{StaffID: "staff-1", Role: routing.RoleSupervisor},
		}

		var captured application.Principal
		handler := RequireSession(validator, slog.Default())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			captured, _ = PrincipalFromContext(r.Context())
			w.WriteHeader(http.StatusNoContent)
		}))

		req := httptest.NewRequest(http.MethodGet, "/staff", nil)
		req.Header.Set("Authorization", "Bearer token-1")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Fatalf("status = %d", rec.Code)
		}
		if validator.seenToken != "token-1" {
			t.Errorf("validated token = %q", validator.seenToken)
		}
		if captured.StaffID != "staff-1" || captured.Role != routing.RoleSupervisor {
			t.Errorf("principal = %+v", captured)
		}
	})

	t.Run("rejects missing tokens without calling the validator", func(t *testing.T) {
		t.Parallel()
		validator := &sessionValidatorStub{err: errors.New("must not be called")}

		handler := RequireSession(validator, slog.Default())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			t.Error("handler invoked without a session")
		}))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/staff", nil))

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d", rec.Code)
		}
		if validator.seenToken != "" {
			t.Error("validator called for a tokenless request")
		}
		var resp errorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if resp.ErrorCode != "AUTH_REQUIRED" {
			t.Errorf("error_code = %q", resp.ErrorCode)
		}
	})

	t.Run("maps expired sessions to 401", func(t *testing.T) {
		t.Parallel()
		validator := &sessionValidatorStub{err: application.ErrSessionExpired}

		handler := RequireSession(validator, slog.Default())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			t.Error("handler invoked with an expired session")
		}))

		req := httptest.NewRequest(http.MethodGet, "/staff", nil)
		req.Header.Set("Authorization", "Bearer stale")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d", rec.Code)
		}
	})
}

func TestRequestLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	handler := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if LoggerFromContext(r.Context()) == nil {
			t.Error("no logger attached to the request context")
		}
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/staff", nil))

	if rec.Code != http.StatusTeapot {
		t.Fatalf("status = %d", rec.Code)
	}

	logged := buf.String()
	for _, want := range []string{"request started", "request completed", `"request_id":"1"`, `"status":418`} {
		if !bytes.Contains(buf.Bytes(), []byte(want)) {
			t.Errorf("log output missing %q:\n%s", want, logged)
		}
	}
}
