//go:build !cgo_sqlite

package output

import (
	_ "modernc.org/sqlite" // pure Go SQLite driver
)

const driverName = "sqlite"
