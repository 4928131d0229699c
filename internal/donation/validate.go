package donation

import (
	"regexp"
	"strings"
	"time"
)

// datePattern pins the digit counts; time.Parse alone accepts a signed year.
var datePattern = regexp.MustCompile(`^[0-9]{4}-[0-9]{2}-[0-9]{2}$`)

// ParseDate parses a YYYY-MM-DD birth date.
// The date must exist on the calendar: 2020-13-40 is rejected.
func ParseDate(text string) (time.Time, error) {
	if !datePattern.MatchString(text) {
		return time.Time{}, NewInvalidDateError(text)
	}
	t, err := time.Parse(DateLayout, text)
	if err != nil {
		de := NewInvalidDateError(text)
		de.Err = err
		return time.Time{}, de
	}
	return t, nil
}

// ValidDate reports whether text is a YYYY-MM-DD calendar date.
func ValidDate(text string) bool {
	_, err := ParseDate(text)
	return err == nil
}

// CodeUnique reports whether no record in records has the given code.
func CodeUnique(records []Record, code int) bool {
	for _, r := range records {
		if r.Code == code {
			return false
		}
	}
	return true
}

// ValidateFields rejects free-text values that would corrupt the text form.
// The format has no escaping, so a comma or line break in a field would
// split the row on the next load.
func ValidateFields(f Fields) error {
	checks := []struct {
		name  string
		value string
	}{
		{"name", f.Name},
		{"national id", f.NationalID},
		{"blood type", f.BloodType},
	}
	for _, c := range checks {
		if strings.ContainsAny(c.value, ",\r\n") {
			return NewInvalidFieldError(c.name, c.value)
		}
	}
	return nil
}
