package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"time"

	"github.com/tartampluch/go-addressbook/internal/config"
	"github.com/tartampluch/go-addressbook/internal/contacts"
)

// Importer loads vCards from a local file or a remote address book into a Book.
type Importer struct {
	Fetcher     VCardFetcher
	Credentials CredentialStore
}

// ImportFile merges the vCards stored at path.
func (im *Importer) ImportFile(ctx context.Context, book *contacts.Book, path string) (ImportStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return ImportStats{}, fmt.Errorf("%s: %w", config.ErrVCardParse, err)
	}
	defer func() { _ = f.Close() }()

	return im.run(ctx, book, f, config.LogKeyFile, path)
}

// ImportURL downloads and merges the vCards served at rawURL. When user is
// set, its password is looked up in the credential store.
func (im *Importer) ImportURL(ctx context.Context, book *contacts.Book, rawURL, user string) (ImportStats, error) {
	if rawURL == "" {
		return ImportStats{}, errors.New(config.ErrURLEmpty)
	}
	if im.Fetcher == nil {
		return ImportStats{}, errors.New(config.ErrFetcherMissing)
	}

	// 1. Resolve credentials
	var pass string
	if user != "" && im.Credentials != nil {
		slog.DebugContext(ctx, config.MsgCredLookup,
			config.LogKeyComponent, config.CompImporter,
			config.LogKeyUser, user)
		p, err := im.Credentials.Password(user)
		if err != nil {
			return ImportStats{}, fmt.Errorf("%s: %w", config.ErrCredentialFetch, err)
		}
		pass = p
	}

	// 2. Acquire the data stream
	rc, err := im.Fetcher.Fetch(ctx, rawURL, user, pass)
	if err != nil {
		// Report cancellation as such, not as a network failure.
		if ctx.Err() != nil {
			return ImportStats{}, ctx.Err()
		}
		return ImportStats{}, err
	}
	defer func() { _ = rc.Close() }()

	// 3. Decode and merge
	var logged string
	if u, err := url.Parse(rawURL); err == nil {
		logged = redactURL(u)
	}
	return im.run(ctx, book, rc, config.LogKeyURL, logged)
}

func (im *Importer) run(ctx context.Context, book *contacts.Book, r io.Reader, sourceKey, source string) (ImportStats, error) {
	start := time.Now()
	log := slog.With(config.LogKeyComponent, config.CompImporter)
	log.InfoContext(ctx, config.MsgImportStarted, sourceKey, source)

	stats, err := ImportCards(ctx, r, book)
	if err != nil {
		return stats, err
	}

	log.InfoContext(ctx, config.MsgImportDone,
		slog.Group(config.LogKeyStats,
			slog.Int(config.LogKeyCards, stats.Cards),
			slog.Int(config.LogKeyImported, stats.Imported),
			slog.Int(config.LogKeySkipped, stats.Skipped),
		),
		config.LogKeyDuration, time.Since(start).Milliseconds(),
	)
	return stats, nil
}
