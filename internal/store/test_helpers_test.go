package store

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/roach88/docmig/internal/doc"
	"github.com/roach88/docmig/internal/ledger"
	"github.com/roach88/docmig/internal/steps"
	"github.com/roach88/docmig/internal/testutil"
)

// createTestStore opens a fresh database in a temp dir.
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

// migrateLegacy runs the default catalogue over the legacy fixture.
func migrateLegacy(t *testing.T) (*doc.Domain, *ledger.Report) {
	t.Helper()
	l := testutil.NewLegacy()
	led := steps.NewLedger(
		ledger.WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))),
		ledger.WithIDGenerator(testutil.NewSequentialIDs(100)),
	)
	rep, err := led.RunReport(l.Domain)
	if err != nil {
		t.Fatalf("RunReport() failed: %v", err)
	}
	return l.Domain, rep
}
