//go:build !cgo

package store

import (
	"fmt"
	"runtime"
	"strings"

	_ "modernc.org/sqlite"
)

// DriverName is the database/sql driver used by OpenSQLite.
const DriverName = "sqlite"

// IsCgoEnabled reports whether the cgo sqlite driver is compiled in.
const IsCgoEnabled = false

func dataSourceName(dbPath string) string {
	if runtime.GOOS == "windows" {
		dbPath = strings.ReplaceAll(dbPath, "\\", "/")
	}
	return fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(%d)", dbPath, busyTimeout)
}
