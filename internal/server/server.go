// Package server exposes a Store to the window surfaces over local HTTP
// and a websocket change stream.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/aretw0/dailynotes/internal/config"
	"github.com/aretw0/dailynotes/pkg/core"
)

// Subscriber hands out a window's note-updated payload stream.
type Subscriber interface {
	Subscribe(ctx context.Context, window string) (<-chan string, error)
}

// Server routes the command surface to a Store.
type Server struct {
	store  *core.Store
	hub    Subscriber
	policy core.RecentPolicy
	logger *slog.Logger
	mux    *http.ServeMux

	origins originPolicy
}

// Option configures a Server.
type Option func(*Server)

// WithAllowedOrigins admits browser origins beyond loopback, for example
// "app://dailynotes".
func WithAllowedOrigins(origins ...string) Option {
	return func(s *Server) {
		s.origins = newOriginPolicy(origins)
	}
}

// New builds a Server. policy is used by /api/recent when the request
// names neither days nor hours.
func New(store *core.Store, hub Subscriber, policy core.RecentPolicy, logger *slog.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		store:  store,
		hub:    hub,
		policy: policy,
		logger: logger,
		mux:    http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /api/today", s.handleReadToday)
	s.mux.HandleFunc("PUT /api/today", s.handleSaveToday)
	s.mux.HandleFunc("POST /api/today/append", s.handleAppend)
	s.mux.HandleFunc("GET /api/recent", s.handleRecent)
	s.mux.HandleFunc("GET /api/notes", s.handleListNotes)
	s.mux.HandleFunc("PATCH /api/notes/{id}", s.handleUpdateNote)
	s.mux.HandleFunc("DELETE /api/notes/{id}", s.handleDeleteNote)
	s.mux.HandleFunc("GET /api/state", s.handleState)
	s.mux.HandleFunc("GET /ws", s.handleWS)
}

// Handler returns the routed handler. Requests carrying a foreign Origin
// are refused with 403 before routing.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); !s.origins.allows(origin) {
			s.logger.Warn("request from foreign origin refused", "origin", origin, "path", r.URL.Path)
			s.writeError(w, errForbiddenOrigin)
			return
		}
		s.mux.ServeHTTP(w, r)
	})
}

// Run serves on cfg.Addr until ctx is done, then shuts down gracefully.
// ready, if non-nil, receives the bound address once listening.
func (s *Server) Run(ctx context.Context, cfg config.ServerConfig, ready func(addr string)) error {
	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.Addr, err)
	}

	srv := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	addr := ln.Addr().String()
	s.logger.Info("serving", "addr", addr)
	if ready != nil {
		ready(addr)
	}

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
