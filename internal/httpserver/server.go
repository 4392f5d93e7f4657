// internal/httpserver/server.go
//
// HTTP server wiring for the word-rain backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health", "/debug/words".
//   - POST /game/new creates a session and returns a session token.
//   - Session endpoints under /game/{id} require that token (see session.go).
//   - POST /dictionary/reload re-reads the configured word source.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled.
//   - Each session runs on its own goroutine (game.Runner); handlers talk to it
//     through Runner.Do and never touch session state directly.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/dmitryfil/da-word-rain/internal/config"
	"github.com/dmitryfil/da-word-rain/internal/game"
	"github.com/dmitryfil/da-word-rain/internal/rack"
	"github.com/dmitryfil/da-word-rain/internal/store"
	"github.com/dmitryfil/da-word-rain/internal/words"
)

// Options configures a Server. Zero values pick the defaults noted per field.
type Options struct {
	Config       *config.Config // config.Default()
	Dict         *words.Dictionary
	DictSource   words.Source  // reloaded by POST /dictionary/reload
	Secret       string        // session token signing key; "dev_secret_change_me"
	ClientOrigin string        // CORS origin; "http://localhost:5173"
	TickHz       int           // session tick rate; game.DefaultTickHz
	TokenTTL     time.Duration // session token lifetime; 24h
	DailySalt    string        // keys the daily tile seed; "local_dev_salt"
}

// Server bundles router, session store, and the shared dictionary.
type Server struct {
	r     *chi.Mux
	store store.Store
	dict  *words.Dictionary
	opts  Options

	runCtx context.Context // parent of every session runner
	cancel context.CancelFunc
}

// New constructs a Server, installs middleware, and registers routes.
func New(st store.Store, opts Options) *Server {
	if opts.Config == nil {
		opts.Config = config.Default()
	}
	if opts.Dict == nil {
		opts.Dict = words.New()
	}
	if opts.Secret == "" {
		opts.Secret = "dev_secret_change_me"
	}
	if opts.ClientOrigin == "" {
		opts.ClientOrigin = "http://localhost:5173"
	}
	if opts.DailySalt == "" {
		opts.DailySalt = "local_dev_salt"
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 24 * time.Hour
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		r:      chi.NewRouter(),
		store:  st,
		dict:   opts.Dict,
		opts:   opts,
		runCtx: ctx,
		cancel: cancel,
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(chimw.Recoverer)
	s.r.Use(jsonContentType)
	s.r.Use(cors(opts.ClientOrigin))

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"service":   "word-rain",
			"endpoints": []string{"/health", "POST /game/new", "/game/{id}/*", "POST /dictionary/reload"},
		})
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "sessions": s.store.Len()})
	})
	s.r.Get("/debug/words", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]int{"words": s.dict.Size()})
	})

	timeout := chimw.Timeout(10 * time.Second)
	s.r.With(timeout).Post("/dictionary/reload", s.handleReload)
	s.r.Route("/game", func(r chi.Router) {
		r.With(timeout).Post("/new", s.handleNewGame)
		r.Route("/{id}", func(r chi.Router) {
			r.Use(s.requireSession)
			// long-lived; no request timeout
			r.Get("/ws", s.handleStream)
			r.Group(func(r chi.Router) {
				r.Use(timeout)
				s.mountGame(r)
			})
		})
	})

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s
}

// Handler exposes the router (useful for tests and custom http.Server setups).
func (s *Server) Handler() http.Handler { return s.r }

// Close stops every session runner.
func (s *Server) Close() {
	s.cancel()
	s.store.Close()
}

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for a single origin.
func cors(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,DELETE,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ------------------------------- replies -----------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("encode response")
	}
}

type errorRes struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// writeErr maps domain errors onto status codes and stable error codes.
func writeErr(w http.ResponseWriter, err error) {
	status, code := http.StatusInternalServerError, "internal"
	switch {
	case errors.Is(err, game.ErrWordRejected):
		status, code = http.StatusUnprocessableEntity, "word_rejected"
	case errors.Is(err, game.ErrNotRunning):
		status, code = http.StatusConflict, "not_running"
	case errors.Is(err, game.ErrRackNotFull):
		status, code = http.StatusConflict, "rack_not_full"
	case errors.Is(err, rack.ErrRackFull):
		status, code = http.StatusConflict, "rack_full"
	case errors.Is(err, game.ErrNotReady):
		status, code = http.StatusServiceUnavailable, "not_ready"
	case errors.Is(err, game.ErrTileNotFound):
		status, code = http.StatusNotFound, "tile_not_found"
	case errors.Is(err, store.ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, game.ErrBadViewport), errors.Is(err, errBadRequest):
		status, code = http.StatusBadRequest, "bad_request"
	case errors.Is(err, game.ErrStopped):
		status, code = http.StatusGone, "session_stopped"
	case errors.Is(err, context.DeadlineExceeded):
		status, code = http.StatusServiceUnavailable, "timeout"
	}
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg("request failed")
	}
	writeJSON(w, status, errorRes{Error: code, Message: err.Error()})
}

var errBadRequest = errors.New("bad request")

// decode reads a JSON body into v. An empty body leaves v untouched.
func decode(r *http.Request, v any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return errors.Join(errBadRequest, err)
	}
	return nil
}
