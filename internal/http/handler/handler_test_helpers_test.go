package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

type envelopeForTest struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

func doRequest(t *testing.T, h http.Handler, method, target, body string) (*httptest.ResponseRecorder, envelopeForTest) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	var env envelopeForTest
	if strings.HasPrefix(rr.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
			t.Fatalf("unmarshal envelope: %v body=%s", err, rr.Body.String())
		}
	}
	return rr, env
}

func expectError(t *testing.T, rr *httptest.ResponseRecorder, env envelopeForTest, status int, code string) {
	t.Helper()
	if rr.Code != status {
		t.Fatalf("expected %d, got %d body=%s", status, rr.Code, rr.Body.String())
	}
	if env.Success || env.Error == nil || env.Error.Code != code {
		t.Fatalf("expected error code %s, got %s", code, rr.Body.String())
	}
}

func newUserRouterForTest(h *UserHandler) http.Handler {
	r := chi.NewRouter()
	r.Route("/api/v1/users", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Post("/login", h.RecordLogin)
		r.Get("/by-external-id/{external_id}", h.GetByExternalID)
		r.Get("/by-email/{email}", h.GetByEmail)
		r.Get("/{id}", h.GetByID)
		r.Patch("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
		r.Get("/{id}/roles", h.Roles)
		r.Get("/{id}/roles/{role_id}", h.GetAssignment)
		r.Put("/{id}/roles/{role_id}", h.AssignRole)
		r.Delete("/{id}/roles/{role_id}", h.RevokeRole)
	})
	return r
}

func newRoleRouterForTest(h *RoleHandler) http.Handler {
	r := chi.NewRouter()
	r.Route("/api/v1/roles", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/by-name/{name}", h.GetByName)
		r.Get("/{id}", h.GetByID)
		r.Patch("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
		r.Get("/{id}/users", h.Users)
	})
	return r
}
