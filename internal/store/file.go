package store

import (
	"bufio"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/roach88/donorlog/internal/donation"
)

// maxLineSize bounds a single stored row.
const maxLineSize = 1 << 20

// FileStore keeps records in a plain text file, one row per line.
type FileStore struct {
	path string
}

// NewFileStore returns a store backed by the text file at path.
// The file is not touched until the first LoadAll, SaveAll or Init.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the store file location.
func (s *FileStore) Path() string {
	return s.path
}

// Close is a no-op; handles are scoped to each call.
func (s *FileStore) Close() error {
	return nil
}

// LoadAll reads every row of the store file.
//
// Returns STORAGE_READ if the file cannot be opened or read. A malformed row
// fails the whole load with an error naming its line; nothing is recovered.
func (s *FileStore) LoadAll(ctx context.Context) ([]donation.Record, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	f, err := os.Open(s.path)
	if err != nil {
		return nil, donation.NewStorageReadError(s.path, err)
	}
	defer f.Close()

	var records []donation.Record
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSuffix(scanner.Text(), "\r")
		r, err := donation.ParseText(text)
		if err != nil {
			return nil, donation.AtLine(err, s.path, line)
		}
		records = append(records, r)
	}
	if err := scanner.Err(); err != nil {
		return nil, donation.NewStorageReadError(s.path, err)
	}

	return records, nil
}

// SaveAll replaces the store file with records, one row each, in order.
//
// Rows are written to a temporary file in the same directory, synced, and
// renamed over the store. On failure the previous file is left as it was
// and STORAGE_WRITE is returned.
func (s *FileStore) SaveAll(ctx context.Context, records []donation.Record) error {
	if err := checkContext(ctx); err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return donation.NewStorageWriteError(s.path, err)
	}
	tmpName := tmp.Name()
	renamed := false
	defer func() {
		if !renamed {
			_ = os.Remove(tmpName)
		}
	}()

	w := bufio.NewWriter(tmp)
	for _, r := range records {
		if _, err := w.WriteString(r.Text() + "\n"); err != nil {
			_ = tmp.Close()
			return donation.NewStorageWriteError(s.path, err)
		}
	}
	if err := w.Flush(); err != nil {
		_ = tmp.Close()
		return donation.NewStorageWriteError(s.path, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return donation.NewStorageWriteError(s.path, err)
	}
	if err := tmp.Close(); err != nil {
		return donation.NewStorageWriteError(s.path, err)
	}

	// CreateTemp uses 0600; keep the mode of the file being replaced.
	mode := fs.FileMode(0o644)
	if info, err := os.Stat(s.path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		return donation.NewStorageWriteError(s.path, err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		return donation.NewStorageWriteError(s.path, err)
	}
	renamed = true
	return nil
}

// Init creates an empty store file, and its directory, if none exists.
func (s *FileStore) Init(ctx context.Context) error {
	if err := checkContext(ctx); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return donation.NewStorageWriteError(s.path, err)
	}
	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return nil
	}
	if err != nil {
		return donation.NewStorageWriteError(s.path, err)
	}
	if err := f.Close(); err != nil {
		return donation.NewStorageWriteError(s.path, err)
	}
	return nil
}
