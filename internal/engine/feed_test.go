package engine_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-addressbook/internal/contacts"
	"github.com/tartampluch/go-addressbook/internal/engine"
)

// -----------------------------------------------------------------------------
// Mocks
// -----------------------------------------------------------------------------

// recorder collects every published feed.
type recorder struct {
	mu    sync.Mutex
	feeds []string
}

func (r *recorder) Publish(data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.feeds = append(r.feeds, string(data))
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.feeds)
}

func (r *recorder) last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.feeds[len(r.feeds)-1]
}

// -----------------------------------------------------------------------------
// Snapshot & Refresh Tests
// -----------------------------------------------------------------------------

func TestSnapshot_OnlyBirthdaysInOrder(t *testing.T) {
	book := newBook(t, [2]string{"Bob", "20.06.1985"}, [2]string{"NoBday", ""}, [2]string{"Ann", "10.06.1990"})

	entries := engine.Snapshot(book)

	require.Len(t, entries, 2)
	assert.Equal(t, "Bob", entries[0].Name)
	assert.Equal(t, "Ann", entries[1].Name)
	assert.Equal(t, "10.06.1990", entries[1].Birthday.String())
}

func TestFeedRefresher_Update(t *testing.T) {
	clock := &MockClock{CurrentTime: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
	rec := &recorder{}
	f := &engine.FeedRefresher{Builder: &engine.CalendarBuilder{Clock: clock}, Publish: rec.Publish}
	book := newBook(t, [2]string{"Ann", "10.06.1990"})

	f.Update(book)

	require.Equal(t, 1, rec.count())
	assert.Contains(t, rec.last(), "DTSTART;VALUE=DATE:20250610")
}

func TestFeedRefresher_Refresh_RollsOverNewYear(t *testing.T) {
	clock := &MockClock{CurrentTime: time.Date(2025, 12, 31, 23, 0, 0, 0, time.UTC)}
	rec := &recorder{}
	f := &engine.FeedRefresher{Builder: &engine.CalendarBuilder{Clock: clock}, Publish: rec.Publish}
	book := newBook(t, [2]string{"Ann", "10.06.1990"})

	// 1. Initial render on Dec 31
	f.Update(book)
	require.Equal(t, 1, rec.count())
	assert.NotContains(t, rec.last(), "DTSTART;VALUE=DATE:20270610")

	// 2. Same day: nothing to do
	assert.False(t, f.Refresh())
	assert.Equal(t, 1, rec.count())

	// 3. Next day: the year window moves without any edit to the book
	clock.CurrentTime = time.Date(2026, 1, 1, 0, 5, 0, 0, time.UTC)
	assert.True(t, f.Refresh())
	require.Equal(t, 2, rec.count())
	assert.Contains(t, rec.last(), "DTSTART;VALUE=DATE:20270610")
	assert.NotContains(t, rec.last(), "DTSTART;VALUE=DATE:20240610")
}

func TestFeedRefresher_UsesSnapshotNotLiveBook(t *testing.T) {
	clock := &MockClock{CurrentTime: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)}
	rec := &recorder{}
	f := &engine.FeedRefresher{Builder: &engine.CalendarBuilder{Clock: clock}, Publish: rec.Publish}
	book := newBook(t, [2]string{"Ann", "10.06.1990"})
	f.Update(book)

	// Edits not followed by Update are invisible to the refresher.
	book.AddRecord(contacts.NewRecord("Bob"))
	r, _ := book.Find("Bob")
	require.NoError(t, r.SetBirthday("20.06.1985"))

	clock.CurrentTime = clock.CurrentTime.AddDate(0, 0, 1)
	require.True(t, f.Refresh())
	assert.NotContains(t, rec.last(), "Bob")
}

func TestFeedRefresher_RunStopsOnCancel(t *testing.T) {
	f := &engine.FeedRefresher{
		Builder:  &engine.CalendarBuilder{Clock: MockClock{CurrentTime: time.Now()}},
		Publish:  func([]byte) {},
		Interval: time.Millisecond,
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() { done <- f.Run(ctx) }()
	time.Sleep(5 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
