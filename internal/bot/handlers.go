package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/tartampluch/go-addressbook/internal/config"
	"github.com/tartampluch/go-addressbook/internal/contacts"
	"github.com/tartampluch/go-addressbook/internal/engine"
)

func (b *Bot) hello(context.Context, []string) (string, error) {
	return b.T.Msg(config.TKeyHello, nil), nil
}

func (b *Bot) help(context.Context, []string) (string, error) {
	return b.T.Msg(config.TKeyHelp, nil), nil
}

// find resolves a name or reports ErrRecordNotFound.
func (b *Bot) find(name string) (*contacts.Record, error) {
	rec, ok := b.Book.Find(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", contacts.ErrRecordNotFound, name)
	}
	return rec, nil
}

// addContact appends a phone, creating the contact on first use. A new
// contact is only stored once its first phone is valid.
func (b *Bot) addContact(_ context.Context, args []string) (string, error) {
	name, phone := args[0], args[1]

	if rec, ok := b.Book.Find(name); ok {
		if err := rec.AddPhone(phone); err != nil {
			return "", err
		}
		return b.T.Msg(config.TKeyContactUpdated, nil), nil
	}

	rec := contacts.NewRecord(name)
	if err := rec.AddPhone(phone); err != nil {
		return "", err
	}
	b.Book.AddRecord(rec)
	return b.T.Msg(config.TKeyContactAdded, nil), nil
}

func (b *Bot) changePhone(_ context.Context, args []string) (string, error) {
	rec, err := b.find(args[0])
	if err != nil {
		return "", err
	}
	if err := rec.EditPhone(args[1], args[2]); err != nil {
		return "", err
	}
	return b.T.Msg(config.TKeyPhoneUpdated, nil), nil
}

func (b *Bot) showPhones(_ context.Context, args []string) (string, error) {
	rec, err := b.find(args[0])
	if err != nil {
		return "", err
	}
	if len(rec.Phones()) == 0 {
		return b.T.Msg(config.TKeyNoPhones, nil), nil
	}
	return rec.PhoneList(), nil
}

func (b *Bot) removePhone(_ context.Context, args []string) (string, error) {
	rec, err := b.find(args[0])
	if err != nil {
		return "", err
	}
	if !rec.RemovePhone(args[1]) {
		return "", fmt.Errorf("%w: %q", contacts.ErrPhoneNotFound, args[1])
	}
	return b.T.Msg(config.TKeyPhoneRemoved, nil), nil
}

func (b *Bot) showContact(_ context.Context, args []string) (string, error) {
	rec, err := b.find(args[0])
	if err != nil {
		return "", err
	}
	return rec.String(), nil
}

func (b *Bot) showAll(context.Context, []string) (string, error) {
	records := b.Book.Records()
	if len(records) == 0 {
		return b.T.Msg(config.TKeyNoContacts, nil), nil
	}
	lines := make([]string, len(records))
	for i, r := range records {
		lines[i] = r.String()
	}
	return strings.Join(lines, "\n"), nil
}

func (b *Bot) deleteContact(_ context.Context, args []string) (string, error) {
	if _, err := b.find(args[0]); err != nil {
		return "", err
	}
	b.Book.Delete(args[0])
	return b.T.Msg(config.TKeyContactDeleted, nil), nil
}

func (b *Bot) addBirthday(_ context.Context, args []string) (string, error) {
	rec, err := b.find(args[0])
	if err != nil {
		return "", err
	}
	if err := rec.SetBirthday(args[1]); err != nil {
		return "", err
	}
	return b.T.Msg(config.TKeyBirthdayAdded, nil), nil
}

func (b *Bot) showBirthday(_ context.Context, args []string) (string, error) {
	rec, err := b.find(args[0])
	if err != nil {
		return "", err
	}
	bday, ok := rec.Birthday()
	if !ok {
		return b.T.Msg(config.TKeyBirthdayUnset, nil), nil
	}
	return bday.String(), nil
}

func (b *Bot) birthdays(context.Context, []string) (string, error) {
	upcoming := b.Book.UpcomingBirthdays(b.Clock.Now())
	if len(upcoming) == 0 {
		return b.T.Msg(config.TKeyNoBirthdays, nil), nil
	}
	lines := make([]string, len(upcoming))
	for i, u := range upcoming {
		lines[i] = u.Name + ": " + u.DateString()
	}
	return strings.Join(lines, "\n"), nil
}

func (b *Bot) vcard(_ context.Context, args []string) (string, error) {
	rec, err := b.find(args[0])
	if err != nil {
		return "", err
	}
	data, err := engine.EncodeCard(rec)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

func (b *Bot) importFile(ctx context.Context, args []string) (string, error) {
	if b.Importer == nil {
		return "", errImportUnavailable
	}
	stats, err := b.Importer.ImportFile(ctx, b.Book, args[0])
	if err != nil {
		return "", &importError{err: err}
	}
	return b.importedReply(stats), nil
}

// importURL takes an optional URL and user, defaulting to the configured CardDAV account.
func (b *Bot) importURL(ctx context.Context, args []string) (string, error) {
	if b.Importer == nil {
		return "", errImportUnavailable
	}
	url, user := b.CardDAVURL, b.CardDAVUser
	if len(args) > 0 {
		url, user = args[0], ""
	}
	if len(args) > 1 {
		user = args[1]
	}
	if url == "" {
		return "", errNotEnoughArgs
	}

	stats, err := b.Importer.ImportURL(ctx, b.Book, url, user)
	if err != nil {
		return "", &importError{err: err}
	}
	return b.importedReply(stats), nil
}

func (b *Bot) importedReply(stats engine.ImportStats) string {
	return b.T.Msg(config.TKeyImported, map[string]any{
		"Imported": stats.Imported,
		"Skipped":  stats.Skipped,
	})
}
