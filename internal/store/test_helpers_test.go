package store

import (
	"path/filepath"
	"testing"
	"time"
)

// createTestStore creates a new store in a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

var testEpoch = time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)

// createTestRun creates a successful run with minimal required fields.
func createTestRun(id string, startedAt time.Time) Run {
	return Run{
		ID:          id,
		InputPath:   "/data/users.json",
		OutputPath:  "/data/stats.json",
		StartedAt:   startedAt,
		ReferenceAt: testEpoch,
		Status:      StatusOK,
		UserCount:   3,
		Digest:      "abc123",
		Output:      "{}\n",
	}
}
