// Package donation defines the blood-donation record and its text form.
//
// A record is persisted as a single line of six comma-separated fields:
//
//	code,name,nationalId,birthDate,bloodType,volume
//
// The birth date is always written as YYYY-MM-DD. Fields are not quoted or
// escaped, so free-text fields must not contain the delimiter; ValidateFields
// rejects such input before it reaches storage.
//
// This package imports nothing internal. Store, registry and CLI packages
// build on it.
package donation
