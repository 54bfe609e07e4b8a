package contacts

import (
	"fmt"
	"regexp"
	"time"

	"github.com/tartampluch/go-addressbook/internal/config"
)

// phonePattern matches exactly ten ASCII digits, no separators or prefix.
var phonePattern = regexp.MustCompile(fmt.Sprintf(`^[0-9]{%d}$`, config.PhoneDigits))

// Name is the identity of a record. Any string is accepted.
type Name struct {
	value string
}

// NewName wraps raw without validation.
func NewName(raw string) (Name, error) {
	return Name{value: raw}, nil
}

func (n Name) String() string { return n.value }

// Phone is a validated ten digit phone number.
type Phone struct {
	value string
}

// NewPhone validates raw and returns the phone, or an error matching ErrInvalidPhoneFormat.
func NewPhone(raw string) (Phone, error) {
	if !phonePattern.MatchString(raw) {
		return Phone{}, &FieldError{Field: "phone", Value: raw, Err: ErrInvalidPhoneFormat}
	}
	return Phone{value: raw}, nil
}

func (p Phone) String() string { return p.value }

// Birthday is a calendar date entered as DD.MM.YYYY.
type Birthday struct {
	value string
	date  time.Time
}

// NewBirthday parses raw as DD.MM.YYYY. Impossible dates such as 31.02 or
// 29.02 of a common year are rejected with ErrInvalidDateFormat.
func NewBirthday(raw string) (Birthday, error) {
	// time.Parse checks the day against the month length, leap years included.
	d, err := time.Parse(config.DateFormatBirthday, raw)
	if err != nil {
		return Birthday{}, &FieldError{Field: "birthday", Value: raw, Err: ErrInvalidDateFormat}
	}
	return Birthday{value: raw, date: d}, nil
}

func (b Birthday) String() string { return b.value }

// Date returns the parsed date at UTC midnight.
func (b Birthday) Date() time.Time { return b.date }
