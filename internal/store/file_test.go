package store

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/roach88/donorlog/internal/donation"
	"github.com/roach88/donorlog/internal/testutil"
)

func TestFileStore_LoadAll(t *testing.T) {
	path := testutil.StoreFile(t,
		"1,Ana,111,1990-05-01,O+,450",
		"2,Bruno,222,1985-11-20,A-,500",
	)

	got, err := NewFileStore(path).LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll() failed: %v", err)
	}
	assertRecords(t, got, scenarioRecords(t))
}

func TestFileStore_LoadAllEmptyFile(t *testing.T) {
	got, err := NewFileStore(testutil.StoreFile(t)).LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll() failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d records from empty file", len(got))
	}
}

func TestFileStore_LoadAllCRLF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doacoes.csv")
	content := "1,Ana,111,1990-05-01,O+,450\r\n2,Bruno,222,1985-11-20,A-,500\r\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := NewFileStore(path).LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll() failed: %v", err)
	}
	assertRecords(t, got, scenarioRecords(t))
}

func TestFileStore_LoadAllMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.csv")

	_, err := NewFileStore(path).LoadAll(context.Background())
	if !donation.IsStorageRead(err) {
		t.Fatalf("LoadAll() error = %v, want STORAGE_READ", err)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("cause should be not-exist, got %v", err)
	}
}

func TestFileStore_LoadAllMalformed(t *testing.T) {
	tests := []struct {
		name string
		bad  string
		code donation.ErrorCode
	}{
		{"field count", "2,Bruno,222,1985-11-20,A-", donation.ErrCodeRecordParse},
		{"code", "dois,Bruno,222,1985-11-20,A-,500", donation.ErrCodeRecordParse},
		{"volume", "2,Bruno,222,1985-11-20,A-,meio litro", donation.ErrCodeRecordParse},
		{"date", "2,Bruno,222,20-11-1985,A-,500", donation.ErrCodeInvalidDate},
		{"blank line", "", donation.ErrCodeRecordParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := testutil.StoreFile(t, "1,Ana,111,1990-05-01,O+,450", tt.bad, "3,Caio,333,2000-01-01,B+,400")

			got, err := NewFileStore(path).LoadAll(context.Background())
			if err == nil {
				t.Fatalf("LoadAll() succeeded with %d records, want error", len(got))
			}
			if got != nil {
				t.Errorf("partial result returned: %+v", got)
			}

			de, ok := err.(*donation.Error)
			if !ok {
				t.Fatalf("error type = %T, want *donation.Error", err)
			}
			if de.Code != tt.code {
				t.Errorf("Code = %s, want %s", de.Code, tt.code)
			}
			if de.Line != 2 {
				t.Errorf("Line = %d, want 2", de.Line)
			}
			if de.Path != path {
				t.Errorf("Path = %q, want %q", de.Path, path)
			}
		})
	}
}

func TestFileStore_SaveAllWritesRows(t *testing.T) {
	path := testutil.StoreFile(t)
	s := NewFileStore(path)

	if err := s.SaveAll(context.Background(), scenarioRecords(t)); err != nil {
		t.Fatalf("SaveAll() failed: %v", err)
	}

	lines := testutil.ReadLines(t, path)
	want := []string{"1,Ana,111,1990-05-01,O+,450", "2,Bruno,222,1985-11-20,A-,500"}
	if len(lines) != len(want) {
		t.Fatalf("file has %d lines, want %d: %q", len(lines), len(want), lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i+1, lines[i], want[i])
		}
	}
}

func TestFileStore_SaveAllCreatesMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "new.csv")

	if err := NewFileStore(path).SaveAll(context.Background(), scenarioRecords(t)[:1]); err != nil {
		t.Fatalf("SaveAll() failed: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("store file not created: %v", err)
	}
	if info.Mode().Perm() != 0o644 {
		t.Errorf("mode = %v, want 0644", info.Mode().Perm())
	}
}

func TestFileStore_SaveAllKeepsMode(t *testing.T) {
	path := testutil.StoreFile(t, "1,Ana,111,1990-05-01,O+,450")
	if err := os.Chmod(path, 0o600); err != nil {
		t.Fatal(err)
	}

	if err := NewFileStore(path).SaveAll(context.Background(), scenarioRecords(t)); err != nil {
		t.Fatalf("SaveAll() failed: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("mode = %v, want 0600", info.Mode().Perm())
	}
}

func TestFileStore_SaveAllLeavesNoTempFiles(t *testing.T) {
	path := testutil.StoreFile(t)
	if err := NewFileStore(path).SaveAll(context.Background(), scenarioRecords(t)); err != nil {
		t.Fatalf("SaveAll() failed: %v", err)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("directory holds %v, want only the store file", names)
	}
}

func TestFileStore_SaveAllMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "no-such-dir", "doacoes.csv")

	err := NewFileStore(path).SaveAll(context.Background(), scenarioRecords(t))
	if !donation.IsStorageWrite(err) {
		t.Fatalf("SaveAll() error = %v, want STORAGE_WRITE", err)
	}
}

func TestFileStore_FailedSaveKeepsPreviousContent(t *testing.T) {
	dir := t.TempDir()
	// The store path is a non-empty directory, so the final rename fails
	// after the temporary file has been written.
	path := filepath.Join(dir, "doacoes.csv")
	if err := os.MkdirAll(filepath.Join(path, "keep"), 0o755); err != nil {
		t.Fatal(err)
	}

	err := NewFileStore(path).SaveAll(context.Background(), scenarioRecords(t))
	if !donation.IsStorageWrite(err) {
		t.Fatalf("SaveAll() error = %v, want STORAGE_WRITE", err)
	}
	if _, statErr := os.Stat(filepath.Join(path, "keep")); statErr != nil {
		t.Errorf("previous content disturbed: %v", statErr)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("temporary file left behind: %d entries", len(entries))
	}
}

func TestFileStore_Init(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "doacoes.csv")
	s := NewFileStore(path)
	ctx := context.Background()

	if err := s.Init(ctx); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	got, err := s.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll() after Init failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("new store has %d records", len(got))
	}

	// Init again keeps existing rows.
	if err := s.SaveAll(ctx, scenarioRecords(t)); err != nil {
		t.Fatal(err)
	}
	if err := s.Init(ctx); err != nil {
		t.Fatalf("second Init() failed: %v", err)
	}
	got, err = s.LoadAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	assertRecords(t, got, scenarioRecords(t))
}

func TestFileStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewFileStore(testutil.StoreFile(t))
	if _, err := s.LoadAll(ctx); err != context.Canceled {
		t.Errorf("LoadAll() error = %v, want context.Canceled", err)
	}
	if err := s.SaveAll(ctx, nil); err != context.Canceled {
		t.Errorf("SaveAll() error = %v, want context.Canceled", err)
	}
}
