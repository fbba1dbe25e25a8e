// internal/httpserver/server.go
//
// HTTP server wiring for the Unscramble mini-app.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health", "/words/stats".
//   - Session endpoints: POST /sessions, then token-guarded
//     /sessions/{id}/* commands that drive a play.Runner.
//   - GET /leaderboard for the caller's scope.
//   - Janitor that closes idle sessions.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so cookies work).
//   - Every response body is JSON; errors are {"error": "..."}.

package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/basfurolhi/unscramble/internal/game"
	"github.com/basfurolhi/unscramble/internal/leaderboard"
	"github.com/basfurolhi/unscramble/internal/relay"
	"github.com/basfurolhi/unscramble/internal/store"
	"github.com/basfurolhi/unscramble/internal/words"
)

// Deps are the collaborators a Server drives.
type Deps struct {
	Store    store.Store
	Words    *words.List // nil when WordsErr is set
	WordsErr error
	Board    *leaderboard.Board
	Notifier relay.Notifier // for Telegram users; guests always get relay.Nop
	Clock    clockwork.Clock
}

// Options are the tunables from config.
type Options struct {
	ClientOrigin string
	BotToken       string // verifies init data; empty accepts it unverified
	InitDataMaxAge time.Duration
	TokenSecret    string
	TokenTTL       time.Duration
	SessionTTL     time.Duration
	RoundUnit      time.Duration
	FallbackName   string
	Game           game.Config // PlayerName is set per session
}

// Server bundles router, live sessions and their dependencies.
type Server struct {
	ctx  context.Context // parent of every session loop
	r    *chi.Mux
	deps Deps
	opts Options
}

// New constructs a Server, installs middleware, and registers routes.
// Sessions it creates run until ctx is cancelled or they are swept.
func New(ctx context.Context, d Deps, o Options) *Server {
	if d.Clock == nil {
		d.Clock = clockwork.NewRealClock()
	}
	if d.Notifier == nil {
		d.Notifier = relay.Nop{}
	}
	if d.Store == nil {
		d.Store = store.NewMemoryStore()
	}
	s := &Server{ctx: ctx, r: chi.NewRouter(), deps: d, opts: o}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                 // add X-Request-ID
	s.r.Use(chimw.RealIP)                    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer)                 // recover from panics
	s.r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
	s.r.Use(jsonContentType)                 // default JSON responses
	s.r.Use(cors(o.ClientOrigin))            // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"service":"unscramble","endpoints":["/health","/words/stats","POST /sessions","/sessions/{id}/*","/leaderboard"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":       true,
			"words":    s.deps.WordsErr == nil,
			"sessions": s.deps.Store.Len(),
		})
	})
	s.r.Get("/words/stats", s.handleWordStats)

	s.mountSessions()

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// Handler returns the root handler for an http.Server.
func (s *Server) Handler() http.Handler { return s.r }

// RunJanitor sweeps idle sessions every interval until ctx is done.
func (s *Server) RunJanitor(ctx context.Context, every time.Duration) {
	t := s.deps.Clock.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.Chan():
			s.Sweep(ctx)
		}
	}
}

// Sweep closes sessions idle for longer than the session TTL.
func (s *Server) Sweep(ctx context.Context) int {
	return s.deps.Store.Sweep(ctx, s.deps.Clock.Now().Add(-s.opts.SessionTTL))
}

func (s *Server) handleWordStats(w http.ResponseWriter, r *http.Request) {
	if s.deps.WordsErr != nil || s.deps.Words == nil {
		msg := "word list not loaded"
		if s.deps.WordsErr != nil {
			msg = s.deps.WordsErr.Error()
		}
		writeError(w, http.StatusServiceUnavailable, msg)
		return
	}
	writeJSON(w, http.StatusOK, s.deps.Words.Stats())
}

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for a single origin
// (default http://localhost:5173).
func cors(origin string) func(http.Handler) http.Handler {
	if origin == "" {
		origin = "http://localhost:5173"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,DELETE,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+initDataHeader)
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ------------------------------- small util --------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
