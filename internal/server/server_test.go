package server_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-addressbook/internal/config"
	"github.com/tartampluch/go-addressbook/internal/server"
)

// Conditional request headers are handled by http.ServeContent, so the
// server code never names them.
const (
	headerLastModified    = "Last-Modified"
	headerIfNoneMatch     = "If-None-Match"
	headerIfModifiedSince = "If-Modified-Since"
)

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

func get(t *testing.T, h http.Handler, method string, header map[string]string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, "/", nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	resp := w.Result()
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

// -----------------------------------------------------------------------------
// Handler Tests
// -----------------------------------------------------------------------------

func TestFeedServer_ServesContent(t *testing.T) {
	srv := server.NewFeedServer("0")
	feed := []byte("BEGIN:VCALENDAR\r\nVERSION:2.0\r\nEND:VCALENDAR\r\n")
	srv.Publish(feed)

	resp := get(t, srv, http.MethodGet, nil)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, config.MimeTextCalendar, resp.Header.Get(config.HeaderContentType))
	assert.Equal(t, config.MimeNoSniff, resp.Header.Get(config.HeaderXContentType))
	assert.Contains(t, resp.Header.Get(config.HeaderCacheControl), "no-cache")
	assert.NotEmpty(t, resp.Header.Get(config.HeaderETag))
	assert.NotEmpty(t, resp.Header.Get(headerLastModified))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, feed, body)
}

func TestFeedServer_HeadHasNoBody(t *testing.T) {
	srv := server.NewFeedServer("0")
	srv.Publish([]byte("DATA"))

	resp := get(t, srv, http.MethodHead, nil)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Empty(t, body)
}

func TestFeedServer_ETagCaching(t *testing.T) {
	srv := server.NewFeedServer("0")
	srv.Publish([]byte("DATA_VERSION_1"))

	etag := get(t, srv, http.MethodGet, nil).Header.Get(config.HeaderETag)
	require.NotEmpty(t, etag)

	resp := get(t, srv, http.MethodGet, map[string]string{headerIfNoneMatch: etag})
	assert.Equal(t, http.StatusNotModified, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Empty(t, body, "Body must be empty on 304 Not Modified")

	srv.Publish([]byte("DATA_VERSION_2"))
	resp = get(t, srv, http.MethodGet, map[string]string{headerIfNoneMatch: etag})
	assert.Equal(t, http.StatusOK, resp.StatusCode, "A new feed invalidates the old ETag")
}

func TestFeedServer_IfModifiedSince(t *testing.T) {
	srv := server.NewFeedServer("0")
	srv.Publish([]byte("DATA"))

	future := time.Now().Add(time.Hour).UTC().Format(http.TimeFormat)
	resp := get(t, srv, http.MethodGet, map[string]string{headerIfModifiedSince: future})
	assert.Equal(t, http.StatusNotModified, resp.StatusCode)

	past := time.Now().Add(-time.Hour).UTC().Format(http.TimeFormat)
	resp = get(t, srv, http.MethodGet, map[string]string{headerIfModifiedSince: past})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestFeedServer_MethodNotAllowed(t *testing.T) {
	srv := server.NewFeedServer("0")

	resp := get(t, srv, http.MethodPost, nil)

	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Equal(t, config.AllowedMethods, resp.Header.Get(config.HeaderAllow))
}

func TestFeedServer_NotReady(t *testing.T) {
	srv := server.NewFeedServer("0")

	resp := get(t, srv, http.MethodGet, nil)

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, config.RetryAfterSeconds, resp.Header.Get(config.HeaderRetryAfter))
}

// -----------------------------------------------------------------------------
// Concurrency & Lifecycle Tests
// -----------------------------------------------------------------------------

// TestFeedServer_ConcurrentPublish is meant to be run with -race.
func TestFeedServer_ConcurrentPublish(t *testing.T) {
	srv := server.NewFeedServer("0")
	var wg sync.WaitGroup
	end := time.Now().Add(300 * time.Millisecond)

	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := 0; time.Now().Before(end); i++ {
				srv.Publish([]byte(fmt.Sprintf("VERSION:%d-%d", id, i)))
			}
		}(w)
	}
	for r := 0; r < 8; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(end) {
				w := httptest.NewRecorder()
				srv.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
				if w.Code != http.StatusOK && w.Code != http.StatusServiceUnavailable {
					t.Errorf("unexpected status code: %d", w.Code)
				}
			}
		}()
	}
	wg.Wait()
}

func TestFeedServer_Lifecycle(t *testing.T) {
	srv := server.NewFeedServer("0")
	ctx, cancel := context.WithCancel(context.Background())
	errChan := make(chan error, 1)

	go func() { errChan <- srv.Start(ctx) }()

	// 1. Wait for the listener
	require.Eventually(t, func() bool { return srv.Addr() != "" }, 2*time.Second, 10*time.Millisecond)
	url := "http://" + srv.Addr() + "/"

	// 2. Nothing published yet (503)
	resp, err := http.Get(url)
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	_ = resp.Body.Close()

	// 3. Publish and read back (200)
	srv.Publish([]byte("BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n"))

	resp, err = http.Get(url)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "BEGIN:VCALENDAR")

	// 4. Graceful shutdown
	cancel()
	select {
	case err := <-errChan:
		assert.NoError(t, err, "Server should shut down gracefully")
	case <-time.After(5 * time.Second):
		t.Fatal("Server shutdown timed out")
	}
}

func TestFeedServer_Start_RequiresPort(t *testing.T) {
	err := server.NewFeedServer("").Start(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrPortRequired)
}
