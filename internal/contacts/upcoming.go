package contacts

import (
	"time"

	"github.com/tartampluch/go-addressbook/internal/config"
)

// UpcomingBirthday is one hit of Book.UpcomingBirthdays.
type UpcomingBirthday struct {
	Name string
	// Date is the birthday projected onto the reference year, UTC midnight.
	Date time.Time
}

// DateString formats the projected date as DD.MM.YYYY.
func (u UpcomingBirthday) DateString() string {
	return u.Date.Format(config.DateFormatBirthday)
}

// UpcomingBirthdays lists the records whose birthday, moved to today's year,
// falls within [today, today+7 days]. Results follow the book's insertion order.
//
// Only today's year is considered, so on Dec 30 a Jan 2 birthday is not
// reported. A Feb 29 birthday lands on Mar 1 in common years.
func (b *Book) UpcomingBirthdays(today time.Time) []UpcomingBirthday {
	start := civilDate(today)
	end := start.AddDate(0, 0, config.UpcomingWindowDays)

	var out []UpcomingBirthday
	for _, r := range b.Records() {
		bday, ok := r.Birthday()
		if !ok {
			continue
		}
		candidate := ProjectBirthday(bday, start.Year())
		if candidate.Before(start) || candidate.After(end) {
			continue
		}
		out = append(out, UpcomingBirthday{Name: r.Name().String(), Date: candidate})
	}
	return out
}

// ProjectBirthday moves the birthday's month and day onto year.
// time.Date normalizes Feb 29 of a common year to Mar 1.
func ProjectBirthday(b Birthday, year int) time.Time {
	d := b.Date()
	return time.Date(year, d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

// civilDate drops the time of day and location, keeping the calendar date of t.
func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
