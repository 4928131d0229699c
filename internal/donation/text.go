package donation

import (
	"fmt"
	"strconv"
	"strings"
)

// fieldCount is the number of positional fields in a row.
const fieldCount = 6

// Text renders r as code,name,nationalId,birthDate,bloodType,volume.
// No quoting or escaping is applied.
func (r Record) Text() string {
	return strings.Join([]string{
		strconv.Itoa(r.Code),
		r.Name,
		r.NationalID,
		r.BirthDateText(),
		r.BloodType,
		strconv.Itoa(r.Volume),
	}, ",")
}

// ParseText parses one stored row.
//
// The row must split on "," into exactly six fields. A wrong field count or
// a non-integer code or volume is a RECORD_PARSE error; a bad birth date is
// INVALID_DATE_FORMAT.
func ParseText(line string) (Record, error) {
	parts := strings.Split(line, ",")
	if len(parts) != fieldCount {
		return Record{}, NewRecordParseError(
			fmt.Sprintf("expected %d fields, got %d", fieldCount, len(parts)), nil)
	}

	code, err := strconv.Atoi(parts[0])
	if err != nil {
		return Record{}, NewRecordParseError(fmt.Sprintf("code %q is not an integer", parts[0]), err)
	}
	volume, err := strconv.Atoi(parts[5])
	if err != nil {
		return Record{}, NewRecordParseError(fmt.Sprintf("volume %q is not an integer", parts[5]), err)
	}

	return New(Fields{
		Code:       code,
		Name:       parts[1],
		NationalID: parts[2],
		BirthDate:  parts[3],
		BloodType:  parts[4],
		Volume:     volume,
	})
}
