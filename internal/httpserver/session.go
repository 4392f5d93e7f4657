// internal/httpserver/session.go
//
// Session tokens bind a client to the game session it created.
//   - POST /game/new signs an HS256 JWT whose subject is the session id.
//   - requireSession accepts the token from "Authorization: Bearer" or, for
//     websocket upgrades that cannot set headers, a "token" query parameter.
//   - The token subject must match the {id} in the path.

package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitryfil/da-word-rain/internal/game"
)

const tokenIssuer = "word-rain"

var errBadToken = errors.New("invalid session token")

// signToken creates an HS256 JWT for session id.
func (s *Server) signToken(id string) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(s.opts.TokenTTL)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   id,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	ss, err := t.SignedString([]byte(s.opts.Secret))
	return ss, exp, err
}

// parseToken validates tok and returns the session id it was issued for.
func (s *Server) parseToken(tok string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	t, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (any, error) {
		return []byte(s.opts.Secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !t.Valid || claims.Subject == "" {
		return "", errBadToken
	}
	return claims.Subject, nil
}

// bearerOrQuery extracts a bearer token from the Authorization header or the
// "token" query parameter.
func bearerOrQuery(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	return r.URL.Query().Get("token")
}

// ctxRunnerKey is the context key type for the request's session runner.
type ctxRunnerKey struct{}

// requireSession enforces a valid token for the {id} in the path and injects
// the session runner into the request context.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok := bearerOrQuery(r)
		if tok == "" {
			writeJSON(w, http.StatusUnauthorized, errorRes{Error: "unauthorized"})
			return
		}
		id := chi.URLParam(r, "id")
		sub, err := s.parseToken(tok)
		if err != nil || sub != id {
			writeJSON(w, http.StatusUnauthorized, errorRes{Error: "invalid_token"})
			return
		}
		run, err := s.store.Get(r.Context(), id)
		if err != nil {
			writeErr(w, err)
			return
		}
		ctx := context.WithValue(r.Context(), ctxRunnerKey{}, run)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// runnerFrom returns the runner injected by requireSession.
func runnerFrom(r *http.Request) *game.Runner {
	run, _ := r.Context().Value(ctxRunnerKey{}).(*game.Runner)
	return run
}
