package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/cleanops/internal/persistence"
	"github.com/example/cleanops/internal/persistence/sqlite"
)

// SQLiteHarness provides repository access backed by a temporary SQLite
// database for integration-style persistence tests.
type SQLiteHarness struct {
	Staff        persistence.StaffRepository
	Sessions     persistence.SessionRepository
	Locations    persistence.LocationRepository
	Jobs         persistence.JobRepository
	Tasks        persistence.TaskRepository
	Availability persistence.AvailabilityRepository

	cleanup func()
}

// Close releases resources associated with the harness.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness constructs a SQLiteHarness over a temporary, migrated
// database file. A cleanup callback is registered with the provided
// testing.TB; callers may also Close explicitly.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "cleanops.db")

	pool, err := sqlite.Open(context.Background(), "file:"+path)
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}

	harness := &SQLiteHarness{
		Staff:        sqlite.NewStaffRepository(pool),
		Sessions:     sqlite.NewSessionRepository(pool),
		Locations:    sqlite.NewLocationRepository(pool),
		Jobs:         sqlite.NewJobRepository(pool),
		Tasks:        sqlite.NewTaskRepository(pool),
		Availability: sqlite.NewAvailabilityRepository(pool),
		cleanup: func() {
			_ = pool.Close()
		},
	}

	tb.Cleanup(harness.Close)
	return harness
}
