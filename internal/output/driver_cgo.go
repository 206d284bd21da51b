//go:build cgo_sqlite

// Build with: go build -tags cgo_sqlite
// Requires: CGO_ENABLED=1
package output

import (
	_ "github.com/mattn/go-sqlite3" // CGO SQLite driver
)

const driverName = "sqlite3"
