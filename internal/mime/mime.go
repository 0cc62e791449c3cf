// Package mime resolves response content types from file names using a fixed
// extension table instead of the host's mime database.
package mime

import "path"

// OctetStream is the content type used when nothing else matches.
const OctetStream = "application/octet-stream"

// Table maps an extension (with its leading dot) to a content type.
// The "" key holds the fallback type.
type Table map[string]string

// DefaultTable returns the types browsers need for WASM/JS playgrounds.
// Some platforms map .wasm to nothing, or .js to text/plain, which breaks
// WebAssembly.instantiateStreaming.
func DefaultTable() Table {
	return Table{
		"":      OctetStream,
		".html": "text/html",
		".png":  "image/png",
		".css":  "text/css",
		".js":   "application/x-javascript",
		".wasm": "application/wasm",
	}
}

// Resolver maps a file name to a content type. Implementations never fail.
type Resolver interface {
	ContentType(name string) string
}

// TableResolver resolves against a Table.
type TableResolver struct {
	table    Table
	fallback string
}

var _ Resolver = (*TableResolver)(nil)

// NewResolver copies t so later changes to the map do not leak in.
func NewResolver(t Table) *TableResolver {
	table := make(Table, len(t))
	for ext, ct := range t {
		table[ext] = ct
	}

	fallback, ok := table[""]
	if !ok || fallback == "" {
		fallback = OctetStream
	}

	return &TableResolver{table: table, fallback: fallback}
}

// Ext returns the extension of the final element of name, from its last dot.
// "archive.tar.gz" yields ".gz"; "Makefile" yields "".
func Ext(name string) string {
	return path.Ext(name)
}

// ContentType looks up the extension of name exactly as written (no case
// folding) and falls back to the "" entry.
func (r *TableResolver) ContentType(name string) string {
	if ct, ok := r.table[Ext(name)]; ok && ct != "" {
		return ct
	}
	return r.fallback
}
