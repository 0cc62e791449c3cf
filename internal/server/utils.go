package server

import (
	"encoding/hex"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/zeebo/blake3"
)

const (
	cacheImmutable = "public, max-age=31536000, immutable"
	cacheNoStore   = "no-store, no-cache, must-revalidate, proxy-revalidate"
	cacheShort     = "public, max-age=60"
)

// cacheControl picks the Cache-Control value for a request path.
// Fingerprinted bundles never change; pages must always be refetched.
func cacheControl(name string, isDir bool) string {
	filename := path.Base(name)
	switch {
	case isHashedAsset(filename):
		return cacheImmutable
	case isDir || strings.HasSuffix(filename, ".html"):
		return cacheNoStore
	default:
		return cacheShort
	}
}

// isHashedAsset checks if filename contains a content hash (e.g., main.a1b2c3d4.wasm)
func isHashedAsset(filename string) bool {
	parts := strings.Split(filename, ".")
	if len(parts) < 3 {
		return false
	}

	hashPart := parts[len(parts)-2]
	if len(hashPart) < 8 || len(hashPart) > 12 {
		return false
	}
	for _, c := range hashPart {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') && (c < 'A' || c > 'F') {
			return false
		}
	}
	return true
}

// etag is a weak validator built from name, size and mtime, so any edit on
// disk changes it without reading the file.
func etag(name string, info fs.FileInfo) string {
	h := blake3.New()
	_, _ = fmt.Fprintf(h, "%s:%d:%d;", name, info.Size(), info.ModTime().UnixNano())
	return `W/"` + hex.EncodeToString(h.Sum(nil)[:16]) + `"`
}
