// Package server publishes the birthday feed over HTTP on the loopback interface.
package server

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/tartampluch/go-addressbook/internal/config"
)

// snapshot is an immutable rendering of the feed.
type snapshot struct {
	data    []byte
	etag    string
	modTime time.Time
}

// FeedServer serves the latest published iCalendar bytes.
// Publish and ServeHTTP may run concurrently; readers see either the old or
// the new snapshot, never a mix.
type FeedServer struct {
	Port string

	current atomic.Pointer[snapshot]
	addr    atomic.Pointer[string]
}

// NewFeedServer creates a server bound to 127.0.0.1:port once started.
func NewFeedServer(port string) *FeedServer {
	return &FeedServer{Port: port}
}

// Addr returns the listening address, or "" before Start has bound the socket.
func (s *FeedServer) Addr() string {
	if a := s.addr.Load(); a != nil {
		return *a
	}
	return ""
}

// Start listens and serves until ctx is cancelled, then shuts down gracefully.
func (s *FeedServer) Start(ctx context.Context) error {
	if s.Port == "" {
		return errors.New(config.ErrPortRequired)
	}

	ln, err := net.Listen("tcp", config.LocalhostBindAddr+config.AddrSeparator+s.Port)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrServerStartup, err)
	}
	addr := ln.Addr().String()
	s.addr.Store(&addr)

	mux := http.NewServeMux()
	mux.Handle(config.RouteRoot, s)

	srv := &http.Server{
		Handler:      mux,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	serveErr := make(chan error, config.ChannelBufferSize)
	go func() {
		slog.Info(config.MsgServerListen,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyPort, addr,
		)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info(config.MsgServerStop, config.LogKeyComponent, config.CompServer)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s: %w", config.ErrServerShutdown, err)
		}
		return nil

	case err := <-serveErr:
		return fmt.Errorf("%s: %w", config.ErrServerStartup, err)
	}
}

// Publish replaces the served feed.
func (s *FeedServer) Publish(data []byte) {
	sum := sha256.Sum256(data)
	snap := &snapshot{
		data:    data,
		etag:    fmt.Sprintf(config.FormatETag, hex.EncodeToString(sum[:])),
		modTime: time.Now().UTC().Truncate(time.Second),
	}
	s.current.Store(snap)

	slog.Debug(config.MsgCacheUpdated,
		config.LogKeyComponent, config.CompServer,
		config.LogKeySizeBytes, len(data),
		config.LogKeyETag, snap.etag,
	)
}

// ServeHTTP answers GET and HEAD with the current feed. Conditional requests
// (If-None-Match, If-Modified-Since) are resolved by http.ServeContent.
func (s *FeedServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// 1. Method validation
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set(config.HeaderAllow, config.AllowedMethods)
		http.Error(w, config.HTTPMsgMethodNotAll, http.StatusMethodNotAllowed)
		return
	}

	// 2. Load the snapshot; nil until the first Publish
	snap := s.current.Load()
	if snap == nil {
		w.Header().Set(config.HeaderRetryAfter, config.RetryAfterSeconds)
		http.Error(w, config.HTTPMsgInitializing, http.StatusServiceUnavailable)
		return
	}

	// 3. Response headers
	h := w.Header()
	h.Set(config.HeaderContentType, config.MimeTextCalendar)
	h.Set(config.HeaderXContentType, config.MimeNoSniff)
	h.Set(config.HeaderCacheControl, config.CacheControlPrivate)
	h.Set(config.HeaderETag, snap.etag)

	// 4. Serve, answering 304 when the client copy is current
	http.ServeContent(w, r, "", snap.modTime, bytes.NewReader(snap.data))
}
