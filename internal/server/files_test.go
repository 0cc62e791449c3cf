package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kush-Singh-26/devserve/internal/mime"
)

var (
	indexHTML = []byte("<!doctype html><script src=\"app.js\"></script>")
	appJS     = []byte("WebAssembly.instantiateStreaming(fetch('app.wasm'))")
	appWASM   = []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}
)

func newMemFs(t *testing.T, files map[string][]byte) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for name, data := range files {
		require.NoError(t, fs.MkdirAll(filepath.Dir(name), 0o755))
		require.NoError(t, afero.WriteFile(fs, name, data, 0o644))
	}
	return fs
}

func playgroundFs(t *testing.T) afero.Fs {
	return newMemFs(t, map[string][]byte{
		"/index.html":             indexHTML,
		"/app.js":                 appJS,
		"/app.wasm":               appWASM,
		"/style.css":              []byte("body{margin:0}"),
		"/logo.png":               {0x89, 'P', 'N', 'G'},
		"/data.bin":               {0x01, 0x02},
		"/LICENSE":                []byte("MIT"),
		"/pkg/main.a1b2c3d4.wasm": appWASM,
		"/assets/readme.txt":      []byte("hello"),
	})
}

func serve(h http.Handler, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestFileHandler_ContentTypes(t *testing.T) {
	h := NewFileHandler(playgroundFs(t), mime.NewResolver(mime.DefaultTable()))

	tests := []struct {
		path string
		want string
		body []byte
	}{
		{path: "/index.html", want: "text/html", body: indexHTML},
		{path: "/app.js", want: "application/x-javascript", body: appJS},
		{path: "/app.wasm", want: "application/wasm", body: appWASM},
		{path: "/style.css", want: "text/css"},
		{path: "/logo.png", want: "image/png"},
		{path: "/data.bin", want: "application/octet-stream"},
		{path: "/LICENSE", want: "application/octet-stream"},
		{path: "/assets/readme.txt", want: "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := serve(h, http.MethodGet, tt.path)

			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.want, rec.Header().Get("Content-Type"))
			assert.Equal(t, strconv.Itoa(rec.Body.Len()), rec.Header().Get("Content-Length"))
			if tt.body != nil {
				assert.Equal(t, tt.body, rec.Body.Bytes())
			}
		})
	}
}

func TestFileHandler_RootServesIndex(t *testing.T) {
	h := NewFileHandler(playgroundFs(t), mime.NewResolver(mime.DefaultTable()))

	rec := serve(h, http.MethodGet, "/")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html", rec.Header().Get("Content-Type"))
	assert.Equal(t, indexHTML, rec.Body.Bytes())
	assert.Equal(t, cacheNoStore, rec.Header().Get("Cache-Control"))
}

func TestFileHandler_DirectoryListing(t *testing.T) {
	h := NewFileHandler(playgroundFs(t), mime.NewResolver(mime.DefaultTable()))

	rec := serve(h, http.MethodGet, "/assets/")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "readme.txt")
}

func TestFileHandler_DirectoryRedirect(t *testing.T) {
	h := NewFileHandler(playgroundFs(t), mime.NewResolver(mime.DefaultTable()))

	rec := serve(h, http.MethodGet, "/assets")

	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "assets/", rec.Header().Get("Location"))
}

func TestFileHandler_NotFound(t *testing.T) {
	h := NewFileHandler(playgroundFs(t), mime.NewResolver(mime.DefaultTable()))

	for _, p := range []string{"/missing.xyz", "/nope/app.wasm", "/app.wasm/extra"} {
		t.Run(p, func(t *testing.T) {
			rec := serve(h, http.MethodGet, p)
			assert.Equal(t, http.StatusNotFound, rec.Code)
		})
	}
}

func TestFileHandler_Head(t *testing.T) {
	h := NewFileHandler(playgroundFs(t), mime.NewResolver(mime.DefaultTable()))

	rec := serve(h, http.MethodHead, "/app.wasm")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/wasm", rec.Header().Get("Content-Type"))
	assert.Equal(t, strconv.Itoa(len(appWASM)), rec.Header().Get("Content-Length"))
	assert.Zero(t, rec.Body.Len())
}

func TestFileHandler_Range(t *testing.T) {
	h := NewFileHandler(playgroundFs(t), mime.NewResolver(mime.DefaultTable()))

	req := httptest.NewRequest(http.MethodGet, "/app.wasm", nil)
	req.Header.Set("Range", "bytes=0-3")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusPartialContent, rec.Code)
	assert.Equal(t, "application/wasm", rec.Header().Get("Content-Type"))
	assert.Equal(t, appWASM[:4], rec.Body.Bytes())
}

func TestFileHandler_CacheControl(t *testing.T) {
	h := NewFileHandler(playgroundFs(t), mime.NewResolver(mime.DefaultTable()))

	assert.Equal(t, cacheImmutable, serve(h, http.MethodGet, "/pkg/main.a1b2c3d4.wasm").Header().Get("Cache-Control"))
	assert.Equal(t, cacheNoStore, serve(h, http.MethodGet, "/index.html").Header().Get("Cache-Control"))
	assert.Equal(t, cacheShort, serve(h, http.MethodGet, "/app.js").Header().Get("Cache-Control"))
	assert.Empty(t, serve(h, http.MethodGet, "/missing.xyz").Header().Get("Cache-Control"))
}

func TestFileHandler_NotModified(t *testing.T) {
	h := NewFileHandler(playgroundFs(t), mime.NewResolver(mime.DefaultTable()))

	tag := serve(h, http.MethodGet, "/app.wasm").Header().Get("ETag")
	require.NotEmpty(t, tag)

	req := httptest.NewRequest(http.MethodGet, "/app.wasm", nil)
	req.Header.Set("If-None-Match", tag)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotModified, rec.Code)
	assert.Zero(t, rec.Body.Len())
}

func TestFileHandler_InjectedResolver(t *testing.T) {
	resolver := mime.NewResolver(mime.Table{"": "text/plain", ".wasm": "application/x-custom"})
	h := NewFileHandler(playgroundFs(t), resolver)

	assert.Equal(t, "application/x-custom", serve(h, http.MethodGet, "/app.wasm").Header().Get("Content-Type"))
	assert.Equal(t, "text/plain", serve(h, http.MethodGet, "/app.js").Header().Get("Content-Type"))
}

func TestFileHandler_StaysInsideRoot(t *testing.T) {
	base := t.TempDir()
	root := filepath.Join(base, "www")
	require.NoError(t, os.Mkdir(root, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(base, "secret.txt"), []byte("secret"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "app.wasm"), appWASM, 0o644))

	h := NewFileHandler(afero.NewBasePathFs(afero.NewOsFs(), root), mime.NewResolver(mime.DefaultTable()))

	rec := serve(h, http.MethodGet, "/app.wasm")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, appWASM, rec.Body.Bytes())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.URL.Path = "/../secret.txt"
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	assert.NotContains(t, string(body), "secret")
}

func TestFileHandler_Forbidden(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores file permissions")
	}

	root := t.TempDir()
	locked := filepath.Join(root, "locked.wasm")
	require.NoError(t, os.WriteFile(locked, appWASM, 0o644))
	require.NoError(t, os.Chmod(locked, 0))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o644) })

	h := NewFileHandler(afero.NewBasePathFs(afero.NewOsFs(), root), mime.NewResolver(mime.DefaultTable()))

	rec := serve(h, http.MethodGet, "/locked.wasm")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
