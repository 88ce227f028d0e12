package integration

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"
	"time"

	"gorm.io/gorm"

	"github.com/sandeepkv93/personal-website-backend/internal/config"
	"github.com/sandeepkv93/personal-website-backend/internal/database"
	"github.com/sandeepkv93/personal-website-backend/internal/health"
	"github.com/sandeepkv93/personal-website-backend/internal/http/handler"
	"github.com/sandeepkv93/personal-website-backend/internal/http/middleware"
	"github.com/sandeepkv93/personal-website-backend/internal/http/router"
	"github.com/sandeepkv93/personal-website-backend/internal/repository"
	"github.com/sandeepkv93/personal-website-backend/internal/service"
)

type apiEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

type apiTestServerOptions struct {
	rateLimitPerMin int
	rateLimitBurst  int
}

type apiTestServer struct {
	URL    string
	Client *http.Client
	DB     *gorm.DB
}

func newAPITestServer(t *testing.T) *apiTestServer {
	return newAPITestServerWithOptions(t, apiTestServerOptions{})
}

func newAPITestServerWithOptions(t *testing.T, opts apiTestServerOptions) *apiTestServer {
	t.Helper()

	discard := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{
		DatabaseDriver:  config.DriverSQLitePureGo,
		DatabaseURL:     ":memory:",
		DBMigrationMode: config.MigrationModeAuto,
		DBLogLevel:      "silent",
	}
	db, err := database.Open(database.OptionsFromConfig(cfg), discard)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })
	if _, err := database.Initialize(t.Context(), db, cfg); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	userSvc := service.NewUserService(repository.NewUserRepository(db), repository.NewUserRoleRepository(db), time.Now)
	roleSvc := service.NewRoleService(repository.NewRoleRepository(db))

	var limiter router.APIRateLimiterFunc
	if opts.rateLimitPerMin > 0 {
		limiter = middleware.NewRateLimiter(opts.rateLimitPerMin, opts.rateLimitBurst).Middleware()
	}

	r := router.NewRouter(router.Dependencies{
		UserHandler: handler.NewUserHandler(userSvc),
		RoleHandler: handler.NewRoleHandler(roleSvc),
		Static: handler.NewSPAHandlerFS(fstest.MapFS{
			"index.html":    {Data: []byte("<html>site</html>")},
			"assets/app.js": {Data: []byte("console.log(1)")},
		}),
		Logger:         discard,
		CORSOrigins:    []string{"http://localhost"},
		APIRateLimiter: limiter,
		Readiness:      health.NewProbeRunner(time.Second, 0, health.NewDBChecker(db), health.NewSeedChecker(db)),
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &apiTestServer{URL: srv.URL, Client: srv.Client(), DB: db}
}

func (s *apiTestServer) doJSON(t *testing.T, method, path string, body any) (*http.Response, apiEnvelope) {
	t.Helper()
	resp, raw := s.doRaw(t, method, path, body)
	var env apiEnvelope
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &env)
	}
	return resp, env
}

func (s *apiTestServer) doRaw(t *testing.T, method, path string, body any) (*http.Response, []byte) {
	t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
	}
	req, err := http.NewRequest(method, s.URL+path, bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.Client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, raw
}

func decodeData[T any](t *testing.T, env apiEnvelope) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(env.Data, &out); err != nil {
		t.Fatalf("decode data %s: %v", string(env.Data), err)
	}
	return out
}

func expectStatus(t *testing.T, resp *http.Response, env apiEnvelope, status int, code string) {
	t.Helper()
	if resp.StatusCode != status {
		t.Fatalf("expected status %d, got %d (error=%+v)", status, resp.StatusCode, env.Error)
	}
	if code == "" {
		if !env.Success {
			t.Fatalf("expected success envelope, got error %+v", env.Error)
		}
		return
	}
	if env.Success || env.Error == nil || env.Error.Code != code {
		t.Fatalf("expected error code %s, got %+v", code, env.Error)
	}
}
