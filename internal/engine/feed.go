package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/tartampluch/go-addressbook/internal/config"
	"github.com/tartampluch/go-addressbook/internal/contacts"
)

// FeedRefresher keeps a published feed current. Update is called from the
// goroutine that owns the book; Run re-renders the last snapshot when the
// calendar day changes, so the previous/current/next year window follows
// the clock even when nobody edits the book.
type FeedRefresher struct {
	Builder *CalendarBuilder
	Publish func([]byte)

	// Interval is how often Run checks the clock. Zero means config.FeedCheckInterval.
	Interval time.Duration

	mu       sync.Mutex
	entries  []BirthdayEntry
	rendered string // civil date of the last render
}

// Update snapshots book and publishes a fresh rendering.
func (f *FeedRefresher) Update(book *contacts.Book) {
	entries := Snapshot(book)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = entries
	f.renderLocked()
}

// Refresh re-renders the last snapshot if the day changed since the last
// render. It reports whether a new feed was published.
func (f *FeedRefresher) Refresh() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.rendered == f.today() {
		return false
	}
	return f.renderLocked()
}

// Run calls Refresh on every tick until ctx is cancelled.
func (f *FeedRefresher) Run(ctx context.Context) error {
	interval := f.Interval
	if interval <= 0 {
		interval = config.FeedCheckInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log := slog.With(config.LogKeyComponent, config.CompEngine)
	log.Debug(config.MsgRefreshStart, config.LogKeyInterval, interval)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if f.Refresh() {
				log.Info(config.MsgFeedRolled, config.LogKeyDate, f.today())
			}
		}
	}
}

func (f *FeedRefresher) renderLocked() bool {
	data, err := f.Builder.Render(f.entries)
	if err != nil {
		slog.Error(config.ErrFeedRender,
			config.LogKeyComponent, config.CompEngine,
			config.LogKeyError, err,
		)
		return false
	}
	f.rendered = f.today()
	f.Publish(data)
	return true
}

func (f *FeedRefresher) today() string {
	return f.Builder.Clock.Now().Format(config.DateFormatBirthday)
}
