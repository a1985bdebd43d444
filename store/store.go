// Package store opens the persistent ledger.Store backends by driver name.
package store

import (
	"fmt"
	"strings"

	"github.com/robinvdvleuten/compta/ledger"
	"github.com/robinvdvleuten/compta/store/bolt"
	"github.com/robinvdvleuten/compta/store/sqlite"
)

// Driver names accepted by Open.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
	DriverBolt   = "bolt"
)

// Drivers lists the supported drivers.
var Drivers = []string{DriverMemory, DriverSQLite, DriverBolt}

// Open opens the store named by driver at path. The memory driver ignores path.
func Open(driver, path string) (ledger.Store, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case DriverMemory:
		return ledger.NewMemoryStore(), nil
	case DriverSQLite, "":
		return sqlite.Open(path)
	case DriverBolt:
		return bolt.Open(path)
	}
	return nil, fmt.Errorf("unknown store driver %q, expected one of %s", driver, strings.Join(Drivers, ", "))
}

// Persistent reports whether driver keeps entries in a file that can be watched.
func Persistent(driver string) bool {
	d := strings.ToLower(strings.TrimSpace(driver))
	return d != DriverMemory
}
