package contacts

import (
	"fmt"
	"strings"

	"github.com/tartampluch/go-addressbook/internal/config"
)

// Record is one contact: a name, an ordered list of phones and an optional birthday.
// A record is not safe for concurrent use.
type Record struct {
	name     Name
	phones   []Phone
	birthday *Birthday
}

// NewRecord creates an empty record for name.
func NewRecord(name string) *Record {
	n, _ := NewName(name)
	return &Record{name: n}
}

// Name returns the record's identity.
func (r *Record) Name() Name {
	return r.name
}

// Phones returns a copy of the phones in insertion order.
func (r *Record) Phones() []Phone {
	out := make([]Phone, len(r.phones))
	copy(out, r.phones)
	return out
}

// Birthday returns the birthday and whether one is set.
func (r *Record) Birthday() (Birthday, bool) {
	if r.birthday == nil {
		return Birthday{}, false
	}
	return *r.birthday, true
}

// AddPhone validates raw and appends it. Duplicates are kept.
func (r *Record) AddPhone(raw string) error {
	p, err := NewPhone(raw)
	if err != nil {
		return err
	}
	r.phones = append(r.phones, p)
	return nil
}

// RemovePhone removes the first phone equal to raw and reports whether one was removed.
func (r *Record) RemovePhone(raw string) bool {
	i := r.indexOf(raw)
	if i < 0 {
		return false
	}
	r.phones = append(r.phones[:i], r.phones[i+1:]...)
	return true
}

// EditPhone replaces the first phone equal to oldRaw with newRaw, keeping its position.
// Nothing changes unless both the lookup and the validation succeed.
func (r *Record) EditPhone(oldRaw, newRaw string) error {
	i := r.indexOf(oldRaw)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrPhoneNotFound, oldRaw)
	}
	p, err := NewPhone(newRaw)
	if err != nil {
		return err
	}
	r.phones[i] = p
	return nil
}

// FindPhone returns the first phone equal to raw.
func (r *Record) FindPhone(raw string) (Phone, bool) {
	i := r.indexOf(raw)
	if i < 0 {
		return Phone{}, false
	}
	return r.phones[i], true
}

// SetBirthday validates raw and overwrites the birthday. On error the previous value stays.
func (r *Record) SetBirthday(raw string) error {
	b, err := NewBirthday(raw)
	if err != nil {
		return err
	}
	r.birthday = &b
	return nil
}

// PhoneList joins the phones with "; " in insertion order.
func (r *Record) PhoneList() string {
	values := make([]string, len(r.phones))
	for i, p := range r.phones {
		values[i] = p.String()
	}
	return strings.Join(values, config.PhoneSeparator)
}

func (r *Record) String() string {
	bday := config.BirthdayUnsetMarker
	if r.birthday != nil {
		bday = r.birthday.String()
	}
	return fmt.Sprintf("Contact name: %s, phones: %s, birthday: %s", r.name, r.PhoneList(), bday)
}

func (r *Record) indexOf(raw string) int {
	for i, p := range r.phones {
		if p.value == raw {
			return i
		}
	}
	return -1
}
