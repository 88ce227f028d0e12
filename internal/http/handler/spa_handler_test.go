package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
)

func spaFSForTest() fstest.MapFS {
	return fstest.MapFS{
		"index.html":       {Data: []byte("<html>app</html>")},
		"assets/app.js":    {Data: []byte("console.log('app')")},
		"assets/style.css": {Data: []byte("body{}")},
	}
}

func TestSPAHandlerServesFilesAndFallback(t *testing.T) {
	h := NewSPAHandlerFS(spaFSForTest())

	cases := []struct {
		path string
		want string
	}{
		{"/", "<html>app</html>"},
		{"/assets/app.js", "console.log('app')"},
		{"/about/team", "<html>app</html>"},
		{"/index.html", "<html>app</html>"},
		{"/assets/missing.js", "<html>app</html>"},
		{"/../../etc/passwd", "<html>app</html>"},
	}
	for _, tc := range cases {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tc.path, nil))
		if rr.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", tc.path, rr.Code)
		}
		if rr.Body.String() != tc.want {
			t.Fatalf("%s: expected %q, got %q", tc.path, tc.want, rr.Body.String())
		}
	}
}

func TestSPAHandlerDoesNotShadowAPI(t *testing.T) {
	h := NewSPAHandlerFS(spaFSForTest())
	for _, p := range []string{"/api/v1/unknown", "/api", "/health/other"} {
		rr, env := doRequest(t, h, http.MethodGet, p, "")
		expectError(t, rr, env, http.StatusNotFound, "NOT_FOUND")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/apiary", nil))
	if !strings.Contains(rr.Body.String(), "app") {
		t.Fatalf("expected /apiary to fall back to index, got %d", rr.Code)
	}
}

func TestSPAHandlerMethodAndMissingDir(t *testing.T) {
	h := NewSPAHandlerFS(spaFSForTest())
	rr, env := doRequest(t, h, http.MethodPost, "/about", "")
	expectError(t, rr, env, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED")

	missing := NewSPAHandler(t.TempDir() + "/does-not-exist")
	rr = httptest.NewRecorder()
	missing.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/about", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 without static dir, got %d", rr.Code)
	}

	empty := NewSPAHandlerFS(fstest.MapFS{"robots.txt": {Data: []byte("ok")}})
	rr = httptest.NewRecorder()
	empty.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/robots.txt", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected existing file without index to be served, got %d", rr.Code)
	}
}
