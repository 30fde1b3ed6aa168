package db

import (
	"strings"

	"github.com/cohortlab/resilient-aging/errors"
)

// ErrDatabaseClosed reports an operation attempted after the connection
// was closed, typically a batch worker racing a deferred Close during
// shutdown.
var ErrDatabaseClosed = errors.New("database is closed")

// IsDatabaseClosed reports whether err means the underlying connection
// is gone. Raw driver errors are matched by message because database/sql
// returns them unwrapped.
func IsDatabaseClosed(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrDatabaseClosed) {
		return true
	}
	return strings.Contains(err.Error(), "database is closed")
}
