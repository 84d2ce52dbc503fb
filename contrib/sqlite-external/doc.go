// Package sqliteexternal registers the CGO SQLite driver
// (github.com/mattn/go-sqlite3) for core/sqlite.
//
// It is linked in only when building with the cgo_sqlite tag:
//
//	CGO_ENABLED=1 go build -tags cgo_sqlite ./cmd/ligolw
//
// Without the tag, core/sqlite uses modernc.org/sqlite and needs no C
// toolchain. The CGO driver is faster when exporting large trigger or
// injection tables.
package sqliteexternal
