package contacts

import (
	"errors"
	"fmt"

	"github.com/tartampluch/go-addressbook/internal/config"
)

// Error kinds returned by the contact book. Callers match them with errors.Is.
var (
	ErrInvalidPhoneFormat = errors.New(config.ErrPhoneFormat)
	ErrInvalidDateFormat  = errors.New(config.ErrDateFormat)
	ErrPhoneNotFound      = errors.New(config.ErrPhoneNotFound)
	ErrRecordNotFound     = errors.New(config.ErrRecordNotFound)
)

// FieldError reports a raw value rejected by a field constructor.
type FieldError struct {
	Field string
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Field, e.Value, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}
