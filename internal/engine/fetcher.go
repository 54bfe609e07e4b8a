package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/tartampluch/go-addressbook/internal/config"
)

// VCardFetcher downloads a vCard stream from a CardDAV or WebDAV address.
type VCardFetcher interface {
	Fetch(ctx context.Context, url, user, pass string) (io.ReadCloser, error)
}

// HTTPFetcher implements VCardFetcher with net/http.
type HTTPFetcher struct {
	Client *http.Client

	// MaxBytes caps the body handed to the decoder. Zero means config.MaxHTTPResponseSize.
	MaxBytes int64
}

// NewHTTPFetcher returns a fetcher with the default request timeout.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{
		Client:   &http.Client{Timeout: config.HTTPTimeout},
		MaxBytes: config.MaxHTTPResponseSize,
	}
}

// Fetch issues a GET for the address book export and returns its body.
// Basic auth is only sent when a user or password is given.
func (f *HTTPFetcher) Fetch(ctx context.Context, targetURL, user, pass string) (io.ReadCloser, error) {
	// 1. Validate the address
	u, err := url.Parse(targetURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrInvalidURL, err)
	}
	if u.Scheme != config.SchemeHTTP && u.Scheme != config.SchemeHTTPS {
		return nil, fmt.Errorf("%s: %s", config.ErrProtocol, u.Scheme)
	}

	log := slog.With(
		slog.String(config.LogKeyComponent, config.CompFetcher),
		slog.String(config.LogKeyURL, redactURL(u)),
	)

	// 2. Build the request
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrFetchRequest, err)
	}
	req.Header.Set(config.HeaderUserAgent, config.UserAgent)
	req.Header.Set(config.HeaderAccept, config.MimeVCard)
	if user != "" || pass != "" {
		req.SetBasicAuth(user, pass)
	}

	// 3. Execute
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrFetchNetwork, err)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		log.Warn(config.MsgFetchStatus, slog.Int(config.LogKeyStatus, resp.StatusCode))
		return nil, fmt.Errorf("%s: %s", config.ErrFetchStatus, resp.Status)
	}

	log.Debug(config.MsgFetchStarted, slog.Int64(config.LogKeyLength, resp.ContentLength))

	// 4. Hand over the body, capped at MaxBytes
	limit := f.MaxBytes
	if limit <= 0 {
		limit = config.MaxHTTPResponseSize
	}
	return &limitedReadCloser{
		Reader: io.LimitReader(resp.Body, limit),
		Closer: resp.Body,
	}, nil
}

// limitedReadCloser reads through a LimitReader and closes the underlying body.
type limitedReadCloser struct {
	io.Reader
	io.Closer
}

// redactURL keeps scheme, host and path. Userinfo and query may hold secrets.
func redactURL(u *url.URL) string {
	return u.Scheme + "://" + u.Host + u.Path
}
