package donation

import (
	"time"

	"golang.org/x/text/unicode/norm"
)

// DateLayout is the only accepted birth date format (YYYY-MM-DD).
const DateLayout = "2006-01-02"

// Record is one blood-donation entry.
//
// Records are values. Workflows never edit a loaded record; they build a new
// sequence and hand it to the store.
type Record struct {
	Code       int
	Name       string
	NationalID string
	BirthDate  time.Time
	BloodType  string
	Volume     int // millilitres
}

// Fields carries the raw values a record is built from.
// BirthDate is kept as text so validation happens in one place.
type Fields struct {
	Code       int    `json:"code" yaml:"code"`
	Name       string `json:"name" yaml:"name"`
	NationalID string `json:"national_id" yaml:"national_id"`
	BirthDate  string `json:"birth_date" yaml:"birth_date"`
	BloodType  string `json:"blood_type" yaml:"blood_type"`
	Volume     int    `json:"volume" yaml:"volume"`
}

// New builds a record from f.
// Returns an INVALID_DATE_FORMAT error if f.BirthDate is not YYYY-MM-DD.
//
// Free-text fields are NFC normalized so that composed and decomposed
// spellings of the same name are stored identically.
func New(f Fields) (Record, error) {
	birth, err := ParseDate(f.BirthDate)
	if err != nil {
		return Record{}, err
	}
	return Record{
		Code:       f.Code,
		Name:       norm.NFC.String(f.Name),
		NationalID: norm.NFC.String(f.NationalID),
		BirthDate:  birth,
		BloodType:  norm.NFC.String(f.BloodType),
		Volume:     f.Volume,
	}, nil
}

// BirthDateText renders the birth date as YYYY-MM-DD.
func (r Record) BirthDateText() string {
	return r.BirthDate.Format(DateLayout)
}

// Fields returns the raw values of r, the inverse of New.
func (r Record) Fields() Fields {
	return Fields{
		Code:       r.Code,
		Name:       r.Name,
		NationalID: r.NationalID,
		BirthDate:  r.BirthDateText(),
		BloodType:  r.BloodType,
		Volume:     r.Volume,
	}
}

// Equal reports whether r and other hold the same values.
// Birth dates are compared as calendar days.
func (r Record) Equal(other Record) bool {
	return r.Code == other.Code &&
		r.Name == other.Name &&
		r.NationalID == other.NationalID &&
		r.BirthDateText() == other.BirthDateText() &&
		r.BloodType == other.BloodType &&
		r.Volume == other.Volume
}

// knownBloodTypes lists the ABO/Rh tokens.
var knownBloodTypes = map[string]bool{
	"A+": true, "A-": true,
	"B+": true, "B-": true,
	"AB+": true, "AB-": true,
	"O+": true, "O-": true,
}

// KnownBloodType reports whether s is one of the eight ABO/Rh tokens.
// Blood types are not validated; callers use this only to warn.
func KnownBloodType(s string) bool {
	return knownBloodTypes[s]
}
