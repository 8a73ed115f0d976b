// Package web serves archived run results over HTTP as a JSON API plus
// plain-text table rendering. Binds wherever the caller points it; the
// default is localhost.
package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mypersonaltherapeutics/qtip/internal/domain/recovery"
	"github.com/mypersonaltherapeutics/qtip/internal/ports"
)

// Server exposes a read-only view of the run archive.
type Server struct {
	store    ports.RunStore
	router   chi.Router
	listener net.Listener
	httpSrv  *http.Server
	port     int
	started  time.Time
	stopOnce sync.Once
}

// NewServer wires the routes. Nothing listens until Start.
func NewServer(store ports.RunStore) *Server {
	s := &Server{store: store}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", s.handleHealth)
	r.Route("/api/runs", func(r chi.Router) {
		r.Get("/", s.handleListRuns)
		r.Get("/{id}", s.handleGetRun)
		r.Get("/{id}/table", s.handleRunTable)
	})

	s.router = r
	return s
}

// Handler returns the route tree, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start begins listening on addr (host:port; port 0 picks a free one).
func (s *Server) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	s.listener = ln
	s.port = ln.Addr().(*net.TCPAddr).Port
	s.started = time.Now()
	s.httpSrv = &http.Server{Handler: s.router}

	go s.httpSrv.Serve(ln)
	return nil
}

// Stop gracefully shuts down the HTTP server. Idempotent.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		if s.httpSrv != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			s.httpSrv.Shutdown(ctx)
		}
	})
}

// Port returns the bound port number.
func (s *Server) Port() int {
	return s.port
}

// URL returns the server's base URL.
func (s *Server) URL() string {
	return fmt.Sprintf("http://localhost:%d", s.port)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	runs, err := s.store.ListRuns()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{
		"status": "ok",
		"runs":   len(runs),
		"uptime": time.Since(s.started).Round(time.Second).String(),
	})
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.store.ListRuns()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if runs == nil {
		runs = []ports.RunSummary{}
	}
	writeJSON(w, runs)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.loadRun(w, r)
	if !ok {
		return
	}
	writeJSON(w, rec)
}

func (s *Server) handleRunTable(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.loadRun(w, r)
	if !ok {
		return
	}

	tally := recovery.FromRows(rec.ByScore, rec.ByScoreLen)
	var buf bytes.Buffer
	switch mode := r.URL.Query().Get("mode"); mode {
	case "", "flat":
		if err := recovery.WriteFlat(&buf, tally); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	case "cumulative":
		if err := recovery.WriteCumulative(&buf, tally); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	default:
		http.Error(w, fmt.Sprintf("unknown table mode %q", mode), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	buf.WriteTo(w)
}

// loadRun fetches the record named in the URL, writing the error
// response itself when the lookup fails.
func (s *Server) loadRun(w http.ResponseWriter, r *http.Request) (*ports.RunRecord, bool) {
	id := chi.URLParam(r, "id")
	rec, err := s.store.LoadRun(id)
	if errors.Is(err, ports.ErrRunNotFound) {
		http.Error(w, "run not found", http.StatusNotFound)
		return nil, false
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return nil, false
	}
	return rec, true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
