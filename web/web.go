// Package web provides an HTTP server for the ledger.
//
// The server exposes every ledger operation as a REST route and as a JSON
// RPC call under /api/rpc/{name}, both resolved from the same operation
// table. Clients subscribe to /api/events to learn about changes made by
// other clients or by another process writing the store file.
//
// SECURITY WARNING: This server has no authentication and should only be
// bound to localhost (127.0.0.1). Do not expose it to untrusted networks.
package web

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/robinvdvleuten/compta/ledger"
	"github.com/robinvdvleuten/compta/telemetry"
)

// SSE event names.
const (
	EventChanged = "changed"
	EventReload  = "reload"
)

type Server struct {
	Port         int
	Host         string
	Version      string
	CommitSHA    string
	ReadOnly     bool
	WatchEnabled bool

	// StorePath is the store file watched for changes made by other processes.
	StorePath string

	// RequestTimeout bounds API requests. Event streams are not bounded.
	RequestTimeout time.Duration

	Logger *slog.Logger

	ledger  *ledger.Ledger
	metrics *serverMetrics

	// SSE clients for broadcasting change events
	sseClients map[chan string]struct{}
	sseMu      sync.Mutex
}

func New(l *ledger.Ledger) *Server {
	return NewWithVersion(l, "", "")
}

func NewWithVersion(l *ledger.Ledger, version, commitSHA string) *Server {
	return &Server{
		Port:           8080,
		Host:           "127.0.0.1",
		Version:        version,
		CommitSHA:      commitSHA,
		RequestTimeout: time.Minute,
		Logger:         slog.Default(),
		ledger:         l,
		metrics:        newServerMetrics(),
		sseClients:     make(map[chan string]struct{}),
	}
}

// Start serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	collector := telemetry.FromContext(ctx)
	timer := collector.Start(fmt.Sprintf("web.start %s:%d", s.Host, s.Port))

	if err := s.refreshEntries(ctx); err != nil {
		timer.End()
		return fmt.Errorf("failed to read ledger: %w", err)
	}

	if s.WatchEnabled && s.StorePath != "" {
		watchTimer := timer.Child(fmt.Sprintf("web.watch %s", filepath.Base(s.StorePath)))
		err := s.startWatcher(ctx)
		watchTimer.End()
		if err != nil {
			timer.End()
			return fmt.Errorf("failed to start file watcher: %w", err)
		}
	}

	setupTimer := timer.Child("web.setup_router")
	handler := s.Handler()
	setupTimer.End()
	timer.End()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.Host, s.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.Logger.Info("server listening", slog.String("addr", srv.Addr), slog.Bool("read_only", s.ReadOnly))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", s.metrics.handler())
	r.Get("/api/events", s.handleSSE)

	ops := Operations()
	byName := make(map[string]Operation, len(ops))

	r.Group(func(r chi.Router) {
		if s.RequestTimeout > 0 {
			r.Use(middleware.Timeout(s.RequestTimeout))
		}

		for _, op := range ops {
			byName[op.Name] = op
			r.Method(op.Method, op.Path, s.metrics.instrument(op.Name, s.serveOperation(op, true)))
		}

		r.Post("/api/rpc/{name}", func(w http.ResponseWriter, r *http.Request) {
			op, ok := byName[chi.URLParam(r, "name")]
			if !ok {
				writeError(w, notFound("unknown operation %q", chi.URLParam(r, "name")))
				return
			}
			s.metrics.instrument(op.Name, s.serveOperation(op, false))(w, r)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, notFound("no route for %s %s", r.Method, r.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, &httpError{Status: http.StatusMethodNotAllowed, Err: fmt.Errorf("method %s not allowed on %s", r.Method, r.URL.Path)})
	})

	return r
}

// serveOperation adapts op to an HTTP handler. REST bindings read route
// parameters and answer with the operation status; RPC calls answer 200.
func (s *Server) serveOperation(op Operation, rest bool) http.HandlerFunc {
	handler := func(w http.ResponseWriter, r *http.Request) {
		params := map[string]string{}
		if rest {
			if id := chi.URLParam(r, "id"); id != "" {
				params["id"] = id
			}
		}

		in, err := readInput(r, params)
		if err != nil {
			writeError(w, err)
			return
		}

		ctx := telemetry.WithCollector(r.Context(), s.metrics.operations)
		out, err := op.handle(ctx, s, in)
		if err != nil {
			if statusOf(err) >= http.StatusInternalServerError {
				s.Logger.ErrorContext(ctx, "operation failed", slog.String("operation", op.Name), slog.Any("error", err))
			}
			writeError(w, err)
			return
		}

		if op.Mutates {
			s.changed(ctx)
		}

		status := http.StatusOK
		if rest && op.Status != 0 {
			status = op.Status
		}
		writeJSON(w, status, out)
	}

	if op.Mutates {
		return s.requireWritable(handler)
	}
	return handler
}

// requireWritable is middleware that rejects write requests in read-only mode.
func (s *Server) requireWritable(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.ReadOnly {
			writeError(w, errReadOnly)
			return
		}
		next(w, r)
	}
}

// HealthResponse is the body of /health.
type HealthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version,omitempty"`
	CommitSHA string `json:"commitSha,omitempty"`
	ReadOnly  bool   `json:"readOnly"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, &HealthResponse{
		Status:    "ok",
		Version:   s.Version,
		CommitSHA: s.CommitSHA,
		ReadOnly:  s.ReadOnly,
	})
}

// logRequests logs every request at debug level, with its status and duration.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.Logger.DebugContext(r.Context(), "request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Duration("duration", time.Since(start)),
			slog.String("request_id", middleware.GetReqID(r.Context())))
	})
}

// changed records a mutation: it refreshes the entries gauge and notifies clients.
func (s *Server) changed(ctx context.Context) {
	if err := s.refreshEntries(ctx); err != nil {
		s.Logger.WarnContext(ctx, "failed to count entries", slog.Any("error", err))
	}
	s.broadcast(EventChanged)
}

func (s *Server) refreshEntries(ctx context.Context) error {
	n, err := s.countEntries(ctx)
	if err != nil {
		return err
	}
	s.metrics.entries.Set(float64(n))
	return nil
}

// startWatcher watches the store file and broadcasts reload events when
// another process writes it.
func (s *Server) startWatcher(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	// Watch the directory: SQLite and editors replace or recreate files.
	if err := watcher.Add(filepath.Dir(s.StorePath)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", s.StorePath, err)
	}

	go s.runWatcher(ctx, watcher)
	return nil
}

// runWatcher processes file system events with debouncing.
func (s *Server) runWatcher(ctx context.Context, watcher *fsnotify.Watcher) {
	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
		_ = watcher.Close()
	}()

	// Writers often touch the file several times per transaction
	const debounceDelay = 100 * time.Millisecond

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !s.isStoreFile(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounceDelay, func() {
				s.handleFileChange(ctx)
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.Logger.Warn("file watcher error", slog.Any("error", err))
		}
	}
}

// isStoreFile reports whether name is the store file or one of its SQLite
// companions (-wal, -journal).
func (s *Server) isStoreFile(name string) bool {
	base := filepath.Clean(s.StorePath)
	name = filepath.Clean(name)
	return name == base || name == base+"-wal" || name == base+"-journal"
}

func (s *Server) handleFileChange(ctx context.Context) {
	if err := s.refreshEntries(ctx); err != nil {
		s.Logger.Warn("failed to reload ledger", slog.Any("error", err))
		return
	}
	s.broadcast(EventReload)
}

// handleSSE handles Server-Sent Events connections for real-time updates.
func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	clientChan := make(chan string, 10)

	s.sseMu.Lock()
	s.sseClients[clientChan] = struct{}{}
	s.sseMu.Unlock()
	s.metrics.sseClient.Inc()

	defer func() {
		s.sseMu.Lock()
		delete(s.sseClients, clientChan)
		s.sseMu.Unlock()
		s.metrics.sseClient.Dec()
	}()

	_, _ = fmt.Fprintf(w, "data: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case event := <-clientChan:
			_, _ = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, event)
			flusher.Flush()
		}
	}
}

// broadcast sends an event to all connected SSE clients.
func (s *Server) broadcast(event string) {
	s.sseMu.Lock()
	defer s.sseMu.Unlock()

	for clientChan := range s.sseClients {
		select {
		case clientChan <- event:
		default:
			// Client buffer full, skip
		}
	}
}

// clientCount returns the number of connected SSE clients.
func (s *Server) clientCount() int {
	s.sseMu.Lock()
	defer s.sseMu.Unlock()
	return len(s.sseClients)
}
