// internal/httpserver/routes_sessions.go
//
// Game session routes.
//   - POST /sessions                   → create a session for the Telegram user
//                                        in the init data (or a guest)
//   - GET  /sessions/{id}              → current snapshot
//   - POST /sessions/{id}/start        → start / play again
//   - POST /sessions/{id}/menu         → game over → start screen
//   - POST /sessions/{id}/place        → {"slot": n} scrambled tile into answer
//   - POST /sessions/{id}/retract      → {"slot": n} answer tile back out
//   - POST /sessions/{id}/clear        → retract every answer tile
//   - DELETE /sessions/{id}            → end the session
//   - GET  /leaderboard                → the caller's top scores
//
// Every command answers with the session snapshot after it was applied.

package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/basfurolhi/unscramble/internal/game"
	"github.com/basfurolhi/unscramble/internal/leaderboard"
	"github.com/basfurolhi/unscramble/internal/play"
	"github.com/basfurolhi/unscramble/internal/relay"
	"github.com/basfurolhi/unscramble/internal/store"
)

// initDataHeader carries Telegram WebApp init data when the body does not.
const initDataHeader = "X-Telegram-Init-Data"

// mountSessions registers the session and leaderboard routes.
func (s *Server) mountSessions() {
	s.r.Post("/sessions", s.handleCreateSession)

	s.r.Route("/sessions/{id}", func(r chi.Router) {
		r.Use(s.requireSession)
		r.Get("/", s.handleSnapshot)
		r.Delete("/", s.handleDeleteSession)
		r.Post("/start", s.command(func(*http.Request) (game.Event, error) { return game.StartGame{}, nil }))
		r.Post("/menu", s.command(func(*http.Request) (game.Event, error) { return game.GoToStart{}, nil }))
		r.Post("/clear", s.command(func(*http.Request) (game.Event, error) { return game.ClearAnswer{}, nil }))
		r.Post("/place", s.command(func(r *http.Request) (game.Event, error) {
			slot, err := decodeSlot(r)
			return game.PlaceGrapheme{Slot: slot}, err
		}))
		r.Post("/retract", s.command(func(r *http.Request) (game.Event, error) {
			slot, err := decodeSlot(r)
			return game.RetractSlot{Slot: slot}, err
		}))
	})

	s.r.With(s.requireSession).Get("/leaderboard", s.handleLeaderboard)
}

// -----------------------------------------------------------------------------
// POST /sessions

type createSessionReq struct {
	InitData string `json:"initData"`
}

type createSessionRes struct {
	SessionID string        `json:"sessionId"`
	Token     string        `json:"token"`
	Player    string        `json:"player"`
	State     play.Snapshot `json:"state"`
}

// handleCreateSession verifies the host identity, boots a runner with the
// loaded word list (or its load error) and returns a token for it.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	raw := strings.TrimSpace(req.InitData)
	if raw == "" {
		raw = r.Header.Get(initDataHeader)
	}

	ident, err := relay.ParseInitData(raw, s.opts.BotToken, s.opts.InitDataMaxAge, s.deps.Clock.Now())
	if err != nil {
		log.Warn().Err(err).Msg("reject init data")
		writeError(w, http.StatusUnauthorized, "invalid init data")
		return
	}

	p := player{
		SessionID: uuid.NewString(),
		UserID:    ident.UserID,
		Name:      ident.DisplayName(s.opts.FallbackName),
	}

	var notifier relay.Notifier = relay.Nop{}
	if !ident.Guest() {
		notifier = s.deps.Notifier
	}
	cfg := s.opts.Game
	cfg.PlayerName = p.Name

	runner := play.Start(s.ctx, play.Options{
		Game:     cfg,
		Unit:     s.opts.RoundUnit,
		Clock:    s.deps.Clock,
		Board:    s.deps.Board,
		Scope:    leaderboard.ScopeFor(ident.UserID),
		Notifier: notifier,
		UserID:   ident.UserID,
	}, s.deps.Words, s.deps.WordsErr)

	if err := s.deps.Store.Save(r.Context(), p.SessionID, runner); err != nil {
		runner.Close()
		log.Error().Err(err).Msg("save session")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}

	tok, exp, err := s.signToken(p)
	if err != nil {
		_ = s.deps.Store.Delete(r.Context(), p.SessionID)
		writeError(w, http.StatusInternalServerError, "sign_failed")
		return
	}
	setAuthCookie(w, r, tok, exp)

	snap, err := runner.Snapshot(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	log.Info().Str("session", p.SessionID).Int64("userId", p.UserID).Msg("session created")
	writeJSON(w, http.StatusCreated, createSessionRes{SessionID: p.SessionID, Token: tok, Player: p.Name, State: snap})
}

// -----------------------------------------------------------------------------
// /sessions/{id}

func (s *Server) runner(w http.ResponseWriter, r *http.Request) (*play.Runner, bool) {
	rn, err := s.deps.Store.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "session_not_found")
		return nil, false
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return nil, false
	}
	return rn, true
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	rn, ok := s.runner(w, r)
	if !ok {
		return
	}
	snap, err := rn.Snapshot(r.Context())
	s.reply(w, snap, err)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// command adapts an event decoder into a handler that dispatches the event.
func (s *Server) command(decode func(*http.Request) (game.Event, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ev, err := decode(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		rn, ok := s.runner(w, r)
		if !ok {
			return
		}
		snap, err := rn.Dispatch(r.Context(), ev)
		s.reply(w, snap, err)
	}
}

func (s *Server) reply(w http.ResponseWriter, snap play.Snapshot, err error) {
	switch {
	case errors.Is(err, play.ErrClosed):
		writeError(w, http.StatusGone, "session_closed")
	case err != nil:
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		writeJSON(w, http.StatusOK, snap)
	}
}

type slotReq struct {
	Slot *int `json:"slot"`
}

func decodeSlot(r *http.Request) (int, error) {
	var req slotReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return 0, errors.New("bad_json")
	}
	if req.Slot == nil {
		return 0, errors.New("slot is required")
	}
	return *req.Slot, nil
}

// -----------------------------------------------------------------------------
// GET /leaderboard

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	p := currentPlayer(r)
	if p == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if s.deps.Board == nil {
		writeJSON(w, http.StatusOK, []leaderboard.Entry{})
		return
	}
	entries, err := s.deps.Board.Load(r.Context(), leaderboard.ScopeFor(p.UserID))
	if err != nil {
		log.Error().Err(err).Msg("load leaderboard")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	if entries == nil {
		entries = []leaderboard.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}
