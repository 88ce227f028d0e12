package handler

import (
	"io"
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/sandeepkv93/personal-website-backend/internal/http/response"
	"github.com/sandeepkv93/personal-website-backend/internal/observability"
)

const spaIndexFile = "index.html"

// SPAHandler serves the built front-end. Paths that do not name a regular
// file fall back to index.html so client-side routes survive a reload.
// /api and /health paths never fall back.
type SPAHandler struct {
	fsys fs.FS
}

func NewSPAHandler(dir string) *SPAHandler {
	if strings.TrimSpace(dir) == "" {
		return &SPAHandler{}
	}
	return &SPAHandler{fsys: os.DirFS(dir)}
}

func NewSPAHandlerFS(fsys fs.FS) *SPAHandler {
	return &SPAHandler{fsys: fsys}
}

func (h *SPAHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if isAPIPath(r.URL.Path) {
		response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "route not found", nil)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		response.Error(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed", nil)
		return
	}
	if h.fsys == nil {
		observability.RecordStaticAsset(r.Context(), "missing")
		http.NotFound(w, r)
		return
	}

	name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
	if name != "" && name != spaIndexFile && isRegularFile(h.fsys, name) {
		observability.RecordStaticAsset(r.Context(), "file")
		http.ServeFileFS(w, r, h.fsys, name)
		return
	}
	if !isRegularFile(h.fsys, spaIndexFile) {
		observability.RecordStaticAsset(r.Context(), "missing")
		http.NotFound(w, r)
		return
	}
	observability.RecordStaticAsset(r.Context(), "fallback")
	w.Header().Set("Cache-Control", "no-cache")
	serveIndex(w, r, h.fsys)
}

// serveIndex writes index.html without ServeFileFS's redirect of
// "/index.html" requests.
func serveIndex(w http.ResponseWriter, r *http.Request, fsys fs.FS) {
	f, err := fsys.Open(spaIndexFile)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		http.NotFound(w, r)
		return
	}
	content, ok := f.(io.ReadSeeker)
	if !ok {
		data, err := fs.ReadFile(fsys, spaIndexFile)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		content = strings.NewReader(string(data))
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	http.ServeContent(w, r, spaIndexFile, info.ModTime(), content)
}

func isRegularFile(fsys fs.FS, name string) bool {
	if !fs.ValidPath(name) {
		return false
	}
	info, err := fs.Stat(fsys, name)
	return err == nil && info.Mode().IsRegular()
}

func isAPIPath(p string) bool {
	for _, prefix := range []string{"/api", "/health"} {
		if p == prefix || strings.HasPrefix(p, prefix+"/") {
			return true
		}
	}
	return false
}
