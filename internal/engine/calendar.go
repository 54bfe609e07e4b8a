package engine

import (
	"bytes"
	"fmt"
	"log/slog"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"
	"github.com/tartampluch/go-addressbook/internal/config"
	"github.com/tartampluch/go-addressbook/internal/contacts"
)

// uidNamespace seeds the name-based UUIDs so event UIDs stay stable across renders.
var uidNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte(config.UIDNamespace))

// SummaryFunc renders the event title. age is 0 for the year of birth.
type SummaryFunc func(name string, age int) string

// CalendarBuilder renders the birthdays of a book as an iCalendar feed.
type CalendarBuilder struct {
	Clock contacts.Clock

	// Reminder is an ISO-8601 trigger such as "-P1D". Empty disables alarms.
	Reminder string

	// FormatSummary lets the caller inject localized titles.
	FormatSummary SummaryFunc
}

// BirthdayEntry is the part of a record the feed needs. Entries are plain
// values, so a slice of them can be handed to another goroutine.
type BirthdayEntry struct {
	Name     string
	Birthday contacts.Birthday
}

// Snapshot copies the birthdays of book in insertion order.
func Snapshot(book *contacts.Book) []BirthdayEntry {
	var out []BirthdayEntry
	for _, r := range book.Records() {
		if bday, ok := r.Birthday(); ok {
			out = append(out, BirthdayEntry{Name: r.Name().String(), Birthday: bday})
		}
	}
	return out
}

// Build renders every record that has a birthday.
func (b *CalendarBuilder) Build(book *contacts.Book) ([]byte, error) {
	return b.Render(Snapshot(book))
}

// Render emits an all-day event for the previous, current and next year of
// each entry, skipping years before birth.
func (b *CalendarBuilder) Render(entries []BirthdayEntry) ([]byte, error) {
	start := time.Now()

	// 1. Calendar header
	cal := ical.NewCalendar()
	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropXWRCalName, config.ICalCalName)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	refreshProp := ical.NewProp(config.PropRefresh)
	refreshProp.SetDuration(config.DefaultICalRefresh)
	cal.Props.Set(refreshProp)

	// 2. Events, all sharing one DTSTAMP per render
	now := b.Clock.Now()
	dtStampProp := ical.NewProp(config.PropDTStamp)
	dtStampProp.SetDateTime(now.UTC())

	for _, entry := range entries {
		for _, e := range b.createEvents(entry.Name, entry.Birthday, now.Year()) {
			e.Props.Set(dtStampProp)
			cal.Children = append(cal.Children, e.Component)
		}
	}

	// Clients flag a calendar without components as invalid; serve the minimal stub.
	if len(cal.Children) == 0 {
		return []byte(config.StubVCalendar), nil
	}

	// 3. Encode
	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}

	slog.Debug(config.MsgFeedRendered,
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyEvents, len(cal.Children),
		config.LogKeyDuration, time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func (b *CalendarBuilder) createEvents(name string, bday contacts.Birthday, currentYear int) []*ical.Event {
	born := bday.Date()
	uidBase := uuid.NewSHA1(uidNamespace, []byte(name+"|"+bday.String())).String()

	var events []*ical.Event
	for _, y := range []int{currentYear - 1, currentYear, currentYear + 1} {
		if y < born.Year() {
			continue
		}
		age := y - born.Year()

		event := ical.NewEvent()
		event.Props.SetText(config.PropUID, fmt.Sprintf(config.FormatUID, uidBase, y, config.ICalDomain))

		summary := b.summary(name, age)
		event.Props.SetText(config.PropSummary, summary)

		dtStartProp := ical.NewProp(config.PropDTStart)
		dtStartProp.SetDate(contacts.ProjectBirthday(bday, y))
		event.Props.Set(dtStartProp)

		if b.Reminder != "" {
			addAlarm(event, b.Reminder, summary)
		}
		events = append(events, event)
	}
	return events
}

func (b *CalendarBuilder) summary(name string, age int) string {
	if b.FormatSummary != nil {
		if s := b.FormatSummary(name, age); s != "" {
			return s
		}
	}
	if age == 0 {
		return fmt.Sprintf(config.FallbackSummaryBirth, name)
	}
	return fmt.Sprintf(config.FallbackSummaryAge, name, age)
}

// addAlarm appends a DISPLAY alarm to the event.
func addAlarm(event *ical.Event, trigger, description string) {
	alarm := ical.NewComponent(config.ICalComponent)
	alarm.Props.SetText(config.PropAction, config.ICalAction)
	alarm.Props.SetText(config.PropDescription, description)

	// Assigned directly; SetText would add VALUE=TEXT.
	triggerProp := ical.NewProp(config.PropTrigger)
	triggerProp.Value = trigger
	alarm.Props.Set(triggerProp)

	event.Children = append(event.Children, alarm)
}
