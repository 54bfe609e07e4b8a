package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/emersion/go-vcard"
	"github.com/tartampluch/go-addressbook/internal/config"
	"github.com/tartampluch/go-addressbook/internal/contacts"
)

// maxDecodeErrors bounds consecutive decode failures so a broken stream cannot spin forever.
const maxDecodeErrors = 10

// ImportStats summarizes one vCard import.
type ImportStats struct {
	Cards    int
	Imported int
	Skipped  int
}

// ImportCards merges every card of r into book. Cards for an existing name
// add the phones the record does not have yet and overwrite its birthday.
// Phones are reduced to their digits and kept only when ten remain.
//
// The book is only touched once the whole stream decoded: a cancelled or
// aborted import leaves it unchanged.
func ImportCards(ctx context.Context, r io.Reader, book *contacts.Book) (ImportStats, error) {
	var stats ImportStats
	dec := vcard.NewDecoder(r)
	failures := 0

	type namedCard struct {
		name string
		card vcard.Card
	}
	var pending []namedCard

	// 1. Decode and stage
	for {
		if err := ctx.Err(); err != nil {
			return ImportStats{}, err
		}

		card, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			slog.Warn(config.MsgSkippedCard,
				config.LogKeyComponent, config.CompImporter,
				config.LogKeyError, err)
			stats.Skipped++
			// Consecutive failures mean the stream is not vCard at all.
			failures++
			if failures >= maxDecodeErrors {
				return ImportStats{}, fmt.Errorf("%s: %w", config.ErrVCardParse, err)
			}
			continue
		}
		failures = 0
		stats.Cards++

		name := cardName(card)
		if name == "" {
			slog.Debug(config.ErrCardNoName, config.LogKeyComponent, config.CompImporter)
			stats.Skipped++
			continue
		}
		pending = append(pending, namedCard{name: name, card: card})
	}

	// 2. Merge into the book
	for _, nc := range pending {
		rec, exists := book.Find(nc.name)
		if !exists {
			rec = contacts.NewRecord(nc.name)
		}
		mergeCard(nc.card, rec)
		if !exists {
			book.AddRecord(rec)
		}
		stats.Imported++
	}
	return stats, nil
}

func mergeCard(card vcard.Card, rec *contacts.Record) {
	for _, tel := range card.Values(vcard.FieldTelephone) {
		digits := digitsOnly(tel)
		if _, dup := rec.FindPhone(digits); dup {
			continue
		}
		if err := rec.AddPhone(digits); err != nil {
			slog.Debug(config.MsgSkippedPhone,
				config.LogKeyComponent, config.CompImporter,
				config.LogKeyValue, tel)
		}
	}

	bday := card.Get(vcard.FieldBirthday)
	if bday == nil || bday.Value == "" {
		return
	}
	d, err := parseDate(bday.Value)
	if err == nil {
		err = rec.SetBirthday(d.Format(config.DateFormatBirthday))
	}
	if err != nil {
		slog.Debug(config.MsgSkippedDate,
			config.LogKeyComponent, config.CompImporter,
			config.LogKeyValue, bday.Value)
	}
}

// cardName prefers FN, then the structured N property.
func cardName(card vcard.Card) string {
	if fn := strings.TrimSpace(card.PreferredValue(vcard.FieldFormattedName)); fn != "" {
		return fn
	}
	if n := card.Name(); n != nil {
		return strings.TrimSpace(strings.Join([]string{n.GivenName, n.FamilyName}, " "))
	}
	return ""
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// parseDate accepts the vCard BDAY layouts that carry a year.
// Year-less dates (--MM-DD) cannot become a Birthday and are rejected.
func parseDate(value string) (time.Time, error) {
	layouts := []string{
		config.DateFormatFullDash,
		config.DateFormatFullBasic,
		config.DateFormatRFC3339,
		config.DateFormatFullT,
	}
	for _, l := range layouts {
		if t, err := time.Parse(l, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.New(config.ErrDateParse)
}

// EncodeCard renders a record as a vCard 4.0 document.
func EncodeCard(rec *contacts.Record) ([]byte, error) {
	card := make(vcard.Card)
	card.SetValue(vcard.FieldFormattedName, rec.Name().String())
	for _, p := range rec.Phones() {
		card.AddValue(vcard.FieldTelephone, p.String())
	}
	if bday, ok := rec.Birthday(); ok {
		card.SetValue(vcard.FieldBirthday, bday.Date().Format(config.DateFormatFullBasic))
	}
	vcard.ToV4(card)

	var buf bytes.Buffer
	if err := vcard.NewEncoder(&buf).Encode(card); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrVCardEncode, err)
	}
	return buf.Bytes(), nil
}
