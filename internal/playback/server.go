package playback

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"channelsurfer/internal/config"
	"channelsurfer/internal/guide"
	"channelsurfer/internal/library"
	"channelsurfer/internal/logging"
	"channelsurfer/internal/services"
)

const (
	eventBatch        = 50
	keepAliveInterval = 15 * time.Second
	maxPlayBody       = 4 << 10
)

// Server is the playback HTTP server.
type Server struct {
	libraryDir string
	staticDir  string
	bind       string
	player     Player
	hub        *Hub
	logger     *slog.Logger
	metrics    http.Handler
	watch      bool

	router chi.Router

	playCtx    context.Context
	playCancel context.CancelFunc
	plays      sync.WaitGroup
}

// Option configures a Server.
type Option func(*Server)

// WithPlayer overrides the player built from configuration.
func WithPlayer(player Player) Option {
	return func(s *Server) {
		if player != nil {
			s.player = player
		}
	}
}

// WithHub shares an event hub with other publishers such as the download
// orchestrator.
func WithHub(hub *Hub) Option {
	return func(s *Server) {
		if hub != nil {
			s.hub = hub
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithoutWatcher disables the library filesystem watcher in Run.
func WithoutWatcher() Option {
	return func(s *Server) {
		s.watch = false
	}
}

// New builds a server for the configured library.
func New(cfg *config.Config, opts ...Option) (*Server, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "playback", "new server", "config required", nil)
	}
	s := &Server{
		libraryDir: cfg.Paths.LibraryDir,
		staticDir:  strings.TrimSpace(cfg.Server.StaticDir),
		bind:       cfg.Server.Bind,
		hub:        NewHub(0),
		logger:     logging.NewNop(),
		metrics:    promhttp.Handler(),
		watch:      true,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.player == nil {
		player, err := NewCommandPlayer(cfg.Server.Player)
		if err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "playback", "new server", "server.player", err)
		}
		s.player = player
	}
	s.logger = logging.NewComponentLogger(s.logger, "playback")
	s.playCtx, s.playCancel = context.WithCancel(context.Background())
	s.router = s.routes()
	return s, nil
}

// Hub returns the event hub the server streams from.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(s.logRequests)

	r.Route("/api", func(r chi.Router) {
		r.Get("/videos", s.handleVideos)
		r.Get("/guide", s.handleGuide)
		r.Post("/play", s.handlePlay)
		r.Get("/events", s.handleEvents)
	})
	r.Handle("/videos/*", http.StripPrefix("/videos/", http.FileServer(http.Dir(s.libraryDir))))
	r.Handle("/metrics", s.metrics)
	if s.staticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(s.staticDir)))
	} else {
		r.Get("/", s.handleIndex)
	}
	return r
}

// Run listens on the configured address until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("playback listen: %w", err)
	}
	return s.Serve(ctx, listener)
}

// Serve handles requests on listener until ctx is done, then shuts down and
// waits for running players to be stopped.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	watchCtx, stopWatch := context.WithCancel(ctx)
	defer stopWatch()
	var watcher *LibraryWatcher
	if s.watch {
		watcher = NewLibraryWatcher(s.libraryDir, s.hub, s.logger)
		if err := watcher.Start(watchCtx); err != nil {
			s.logger.Warn("library watcher unavailable",
				logging.Error(err),
				logging.String(logging.FieldEventType, "library_watch_unavailable"),
				logging.String(logging.FieldErrorHint, "library change events will not be streamed"),
			)
			watcher = nil
		}
	}

	server := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(listener)
	}()
	s.logger.Info("playback server listening",
		logging.String("address", listener.Addr().String()),
		logging.String("library", s.libraryDir),
	)

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)
	if serveErr == nil {
		serveErr = <-errCh
	}
	stopWatch()
	if watcher != nil {
		<-watcher.Done()
	}
	s.Close()

	if errors.Is(serveErr, http.ErrServerClosed) {
		return nil
	}
	return serveErr
}

// Close stops running players and waits for their goroutines.
func (s *Server) Close() {
	s.playCancel()
	s.plays.Wait()
}

type videoResponse struct {
	Filename  string        `json:"filename"`
	SizeBytes int64         `json:"size_bytes"`
	URL       string        `json:"url"`
	Guide     *guide.Record `json:"guide,omitempty"`
}

func (s *Server) handleVideos(w http.ResponseWriter, r *http.Request) {
	entries, err := library.Scan(s.libraryDir)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	videos := make([]videoResponse, 0, len(entries))
	for _, entry := range entries {
		videos = append(videos, videoResponse{
			Filename:  entry.Name,
			SizeBytes: entry.SizeBytes,
			URL:       "/videos/" + url.PathEscape(entry.Name),
			Guide:     entry.Record,
		})
	}
	s.writeJSON(w, http.StatusOK, videos)
}

func (s *Server) handleGuide(w http.ResponseWriter, r *http.Request) {
	records, err := library.Records(s.libraryDir)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	s.writeJSON(w, http.StatusOK, library.BuildGrid(records, limit))
}

type playRequest struct {
	Filename string `json:"filename"`
}

func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	var req playRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxPlayBody)).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	path, err := s.resolveLibraryFile(req.Filename)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, services.ErrNotFound) {
			status = http.StatusNotFound
		}
		s.writeError(w, status, err.Error())
		return
	}

	name := filepath.Base(path)
	logger := logging.WithContext(r.Context(), s.logger)
	logger.Info("starting playback",
		logging.String("filename", name),
		logging.String(logging.FieldEventType, "playback_start"),
	)

	s.plays.Add(1)
	go func() {
		defer s.plays.Done()
		err := s.player.Play(s.playCtx, path)
		if err != nil {
			logging.WarnWithContext(s.logger, "playback failed", "playback_failed",
				logging.String("filename", name),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check server.player in the config"),
			)
			s.hub.Publish(Event{Type: EventPlayFailed, Filename: name, Message: err.Error()})
			return
		}
		s.hub.Publish(Event{Type: EventPlayed, Filename: name})
	}()

	s.writeJSON(w, http.StatusAccepted, map[string]string{"filename": name, "status": "playing"})
}

// resolveLibraryFile maps a client supplied name to a video file directly
// inside the library directory.
func (s *Server) resolveLibraryFile(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("filename required")
	}
	if name != filepath.Base(name) || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", errors.New("filename must not contain a path")
	}
	if !library.IsArtifactFile(name) {
		return "", errors.New("not a video file")
	}
	path := filepath.Join(s.libraryDir, name)
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return "", fmt.Errorf("%w: %s", services.ErrNotFound, name)
	}
	return path, nil
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}
	since := s.hub.Last()
	if value := strings.TrimSpace(r.Header.Get("Last-Event-ID")); value != "" {
		since, _ = strconv.ParseUint(value, 10, 64)
	} else if value := strings.TrimSpace(r.URL.Query().Get("since")); value != "" {
		since, _ = strconv.ParseUint(value, 10, 64)
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ctx := r.Context()
	for {
		waitCtx, cancel := context.WithTimeout(ctx, keepAliveInterval)
		events, next, err := s.hub.Fetch(waitCtx, since, eventBatch, true)
		cancel()
		if ctx.Err() != nil {
			return
		}
		if err != nil && len(events) == 0 {
			if _, werr := fmt.Fprint(w, ": keep-alive\n\n"); werr != nil {
				return
			}
			flusher.Flush()
			continue
		}
		for _, evt := range events {
			data, err := json.Marshal(evt)
			if err != nil {
				continue
			}
			if _, err := fmt.Fprintf(w, "id: %d\nevent: %s\ndata: %s\n\n", evt.Sequence, evt.Type, data); err != nil {
				return
			}
		}
		flusher.Flush()
		since = next
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"name": "channelsurfer",
		"endpoints": []string{
			"GET /api/videos", "GET /api/guide", "POST /api/play",
			"GET /api/events", "GET /videos/{filename}", "GET /metrics",
		},
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := services.WithRequestID(r.Context(), middleware.GetReqID(r.Context()))
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))
		logging.WithContext(ctx, s.logger).Debug("http request",
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
			logging.Int("status", ww.Status()),
			logging.Duration("latency", time.Since(start)),
		)
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
