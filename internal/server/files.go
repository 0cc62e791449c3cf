package server

import (
	"net/http"
	"path"
	"strings"

	"github.com/spf13/afero"

	"github.com/Kush-Singh-26/devserve/internal/mime"
)

const indexPage = "index.html"

// FileHandler serves files from fs with content types forced by a
// mime.Resolver. Directories, redirects and the 403/404 mapping are left to
// http.FileServer; regular files go through http.ServeContent so that
// /index.html is answered directly instead of being redirected.
type FileHandler struct {
	fs       afero.Fs
	files    http.Handler
	resolver mime.Resolver
}

var _ http.Handler = (*FileHandler)(nil)

// NewFileHandler serves fsys with "/" as the served root.
func NewFileHandler(fsys afero.Fs, resolver mime.Resolver) *FileHandler {
	return &FileHandler{
		fs:       fsys,
		files:    http.FileServer(afero.NewHttpFs(fsys).Dir("/")),
		resolver: resolver,
	}
}

func (h *FileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := path.Clean("/" + r.URL.Path)

	info, err := h.fs.Stat(name)
	if err != nil {
		h.files.ServeHTTP(w, r)
		return
	}

	w.Header().Set("Cache-Control", cacheControl(name, info.IsDir()))

	if info.IsDir() {
		// Without an index page the listing sets its own content type.
		if index, ok := h.indexFile(name); ok {
			w.Header().Set("Content-Type", h.resolver.ContentType(index))
		}
		h.files.ServeHTTP(w, r)
		return
	}

	// "/app.js/" is redirected to "../app.js" by the file server.
	if strings.HasSuffix(r.URL.Path, "/") {
		h.files.ServeHTTP(w, r)
		return
	}

	f, err := h.fs.Open(name)
	if err != nil {
		h.files.ServeHTTP(w, r)
		return
	}
	defer func() { _ = f.Close() }()

	w.Header().Set("Content-Type", h.resolver.ContentType(name))
	w.Header().Set("ETag", etag(name, info))
	http.ServeContent(w, r, name, info.ModTime(), f)
}

func (h *FileHandler) indexFile(dir string) (string, bool) {
	index := path.Join(dir, indexPage)
	info, err := h.fs.Stat(index)
	if err != nil || info.IsDir() {
		return "", false
	}
	return index, true
}
