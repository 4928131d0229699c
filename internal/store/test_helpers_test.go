package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/donorlog/internal/donation"
	"github.com/roach88/donorlog/internal/testutil"
)

// createTestSQLite creates an empty SQLite store in a temp directory.
func createTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	return s
}

// scenarioRecords returns Ana and Bruno in insertion order.
func scenarioRecords(t *testing.T) []donation.Record {
	t.Helper()
	return []donation.Record{
		testutil.MustRecord(t, testutil.AnaFields),
		testutil.MustRecord(t, testutil.BrunoFields),
	}
}

// assertRecords fails the test unless got equals want element-wise.
func assertRecords(t *testing.T, got, want []donation.Record) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d records, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Errorf("record %d = %q, want %q", i, got[i].Text(), want[i].Text())
		}
	}
}
