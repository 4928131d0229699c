// Package testutil provides fixtures shared by donorlog tests.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/roach88/donorlog/internal/donation"
)

// AnaFields and BrunoFields are the two donors of the reference scenario.
var (
	AnaFields = donation.Fields{
		Code: 1, Name: "Ana", NationalID: "111", BirthDate: "1990-05-01", BloodType: "O+", Volume: 450,
	}
	BrunoFields = donation.Fields{
		Code: 2, Name: "Bruno", NationalID: "222", BirthDate: "1985-11-20", BloodType: "A-", Volume: 500,
	}
)

// MustRecord builds a record from f, failing the test on error.
func MustRecord(t testing.TB, f donation.Fields) donation.Record {
	t.Helper()
	r, err := donation.New(f)
	if err != nil {
		t.Fatalf("donation.New(%+v) failed: %v", f, err)
	}
	return r
}

// StoreFile returns a path for a store file in a fresh temp directory,
// pre-filled with lines. With no lines the file is created empty.
func StoreFile(t testing.TB, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doacoes.csv")
	WriteLines(t, path, lines...)
	return path
}

// WriteLines overwrites path with lines, each terminated by a newline.
func WriteLines(t testing.TB, path string, lines ...string) {
	t.Helper()
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l)
		b.WriteString("\n")
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// ReadLines returns the lines of path without their terminators.
func ReadLines(t testing.TB, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	text := strings.TrimSuffix(string(data), "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

// FixedRunID returns the same run ID every time.
// Used to keep log and golden output deterministic.
type FixedRunID string

// Generate returns the fixed ID, or "test-run-default" when empty.
func (id FixedRunID) Generate() string {
	if id == "" {
		return "test-run-default"
	}
	return string(id)
}
