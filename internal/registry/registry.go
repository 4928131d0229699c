// Package registry implements the donation operations on top of a store.
//
// Each call loads the full record set, optionally validates, changes the set
// in memory and writes the full set back. No state survives between calls.
package registry

import (
	"context"
	"fmt"

	"github.com/roach88/donorlog/internal/donation"
	"github.com/roach88/donorlog/internal/logging"
	"github.com/roach88/donorlog/internal/store"
)

// Registry runs list, insert and delete against a backend.
type Registry struct {
	backend store.Backend
}

// New returns a registry over backend.
func New(backend store.Backend) *Registry {
	return &Registry{backend: backend}
}

// List returns every stored record in stored order.
func (r *Registry) List(ctx context.Context) ([]donation.Record, error) {
	records, err := r.backend.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	logging.FromContext(ctx).Debug("records listed", "count", len(records), "path", r.backend.Path())
	return records, nil
}

// Find returns the record with the given code.
// The boolean is false when no record matches.
func (r *Registry) Find(ctx context.Context, code int) (donation.Record, bool, error) {
	records, err := r.backend.LoadAll(ctx)
	if err != nil {
		return donation.Record{}, false, fmt.Errorf("find: %w", err)
	}
	for _, rec := range records {
		if rec.Code == code {
			return rec, true, nil
		}
	}
	return donation.Record{}, false, nil
}

// Insert appends a record built from f and rewrites the store.
//
// Checks run in order: DUPLICATE_CODE when f.Code is already stored,
// INVALID_DATE_FORMAT when f.BirthDate is not YYYY-MM-DD, INVALID_FIELD when
// a free-text field holds the delimiter. A rejected insert never writes.
// Retrying with another code is left to the caller.
func (r *Registry) Insert(ctx context.Context, f donation.Fields) (donation.Record, error) {
	logger := logging.FromContext(ctx)

	records, err := r.backend.LoadAll(ctx)
	if err != nil {
		return donation.Record{}, fmt.Errorf("insert: %w", err)
	}

	if !donation.CodeUnique(records, f.Code) {
		logger.Warn("insert rejected", "code", f.Code, "reason", donation.ErrCodeDuplicateCode)
		return donation.Record{}, fmt.Errorf("insert: %w", donation.NewDuplicateCodeError(f.Code))
	}
	if !donation.ValidDate(f.BirthDate) {
		logger.Warn("insert rejected", "code", f.Code, "reason", donation.ErrCodeInvalidDate)
		return donation.Record{}, fmt.Errorf("insert: %w", donation.NewInvalidDateError(f.BirthDate))
	}
	if err := donation.ValidateFields(f); err != nil {
		logger.Warn("insert rejected", "code", f.Code, "reason", donation.ErrCodeInvalidField)
		return donation.Record{}, fmt.Errorf("insert: %w", err)
	}

	rec, err := donation.New(f)
	if err != nil {
		return donation.Record{}, fmt.Errorf("insert: %w", err)
	}
	if !donation.KnownBloodType(rec.BloodType) {
		logger.Warn("unrecognized blood type stored as given", "code", rec.Code, "blood_type", rec.BloodType)
	}

	records = append(records, rec)
	if err := r.backend.SaveAll(ctx, records); err != nil {
		return donation.Record{}, fmt.Errorf("insert: %w", err)
	}

	logger.Info("record inserted", "code", rec.Code, "count", len(records))
	return rec, nil
}

// Delete removes every record with the given code and rewrites the store.
//
// A code that matches nothing is not an error: the unchanged set is still
// written back and false is returned.
func (r *Registry) Delete(ctx context.Context, code int) (bool, error) {
	records, err := r.backend.LoadAll(ctx)
	if err != nil {
		return false, fmt.Errorf("delete: %w", err)
	}

	kept := make([]donation.Record, 0, len(records))
	for _, rec := range records {
		if rec.Code != code {
			kept = append(kept, rec)
		}
	}

	if err := r.backend.SaveAll(ctx, kept); err != nil {
		return false, fmt.Errorf("delete: %w", err)
	}

	removed := len(kept) < len(records)
	logging.FromContext(ctx).Info("delete applied", "code", code, "removed", removed, "count", len(kept))
	return removed, nil
}
