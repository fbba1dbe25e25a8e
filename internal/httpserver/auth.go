// internal/httpserver/auth.go
//
// Session tokens.
// POST /sessions returns an HS256 JWT naming the session and the player; the
// mini-app sends it back as "Authorization: Bearer <token>" (or the cookie
// set alongside it). requireSession verifies it and, on /sessions/{id}
// routes, that it was issued for that session.

package httpserver

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
)

const cookieName = "unscramble_token"

// player is placed into request context by requireSession.
type player struct {
	SessionID string
	UserID    int64
	Name      string
}

// ctxPlayerKey is the context key type for storing *player.
type ctxPlayerKey struct{}

// signToken creates an HS256 JWT for p that expires after TokenTTL.
func (s *Server) signToken(p player) (string, time.Time, error) {
	now := s.deps.Clock.Now()
	exp := now.Add(s.opts.TokenTTL)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sid":  p.SessionID,
		"uid":  p.UserID,
		"name": p.Name,
		"exp":  exp.Unix(),
		"iat":  now.Unix(),
	})
	ss, err := t.SignedString([]byte(s.opts.TokenSecret))
	return ss, exp, err
}

// parseToken verifies tok and returns the player it names.
func (s *Server) parseToken(tok string) (*player, bool) {
	claims := jwt.MapClaims{}
	t, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.opts.TokenSecret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.deps.Clock.Now),
	)
	if err != nil || !t.Valid {
		return nil, false
	}
	sid, _ := claims["sid"].(string)
	if sid == "" {
		return nil, false
	}
	uid, _ := claims["uid"].(float64) // JSON numbers decode as float64
	name, _ := claims["name"].(string)
	return &player{SessionID: sid, UserID: int64(uid), Name: name}, true
}

// setAuthCookie writes the token cookie; Secure when served over TLS.
func setAuthCookie(w http.ResponseWriter, r *http.Request, token string, exp time.Time) {
	secure := r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
	sameSite := http.SameSiteLaxMode
	if secure {
		sameSite = http.SameSiteNoneMode // the mini-app runs inside Telegram's webview
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: sameSite,
		Expires:  exp,
	})
}

// bearerOrCookie extracts a bearer token from Authorization header or auth cookie.
func bearerOrCookie(r *http.Request) string {
	// Authorization: Bearer <token>
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(cookieName); err == nil {
		return c.Value
	}
	return ""
}

// requireSession enforces a valid token and injects *player into the
// request context. Under /sessions/{id} the token must be for that id.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok := bearerOrCookie(r)
		if tok == "" {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		p, ok := s.parseToken(tok)
		if !ok {
			writeError(w, http.StatusUnauthorized, "Invalid token")
			return
		}
		if id := chi.URLParam(r, "id"); id != "" && id != p.SessionID {
			writeError(w, http.StatusForbidden, "token is for another session")
			return
		}
		ctx := context.WithValue(r.Context(), ctxPlayerKey{}, p)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func currentPlayer(r *http.Request) *player {
	p, _ := r.Context().Value(ctxPlayerKey{}).(*player)
	return p
}
