//go:build cgo

package store

import (
	"fmt"
	"runtime"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// DriverName is the database/sql driver used by OpenSQLite.
const DriverName = "sqlite3"

// IsCgoEnabled reports whether the cgo sqlite driver is compiled in.
const IsCgoEnabled = true

func dataSourceName(dbPath string) string {
	if runtime.GOOS == "windows" {
		dbPath = strings.ReplaceAll(dbPath, "\\", "/")
	}
	return fmt.Sprintf("file:%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=%d", dbPath, busyTimeout)
}
