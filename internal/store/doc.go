// Package store persists the full set of donation records.
//
// Every operation loads the complete set and writes the complete set back;
// there is no append or in-place edit. Two backends implement Backend:
//
//   - FileStore: one record per line in a plain text file, the canonical
//     format (code,name,nationalId,birthDate,bloodType,volume).
//   - SQLiteStore: the same contract in a SQLite table, for larger sets.
//
// # Write Semantics
//
// SaveAll is a full replace. Records missing from the supplied slice are
// dropped from storage. FileStore writes to a temporary file in the target
// directory and renames it over the store, so a failed write leaves the
// previous content in place. SQLiteStore replaces all rows in one
// transaction.
//
// # Concurrency
//
// A store is used by exactly one process at a time. Nothing is locked.
package store
