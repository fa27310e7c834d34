package server

import (
	"context"
	"net/http"
	"strings"

	apperrors "github.com/jrsteele09/go-oauth-grants/internal/errors"
	"github.com/jrsteele09/go-oauth-grants/sessions"
	"github.com/rs/zerolog"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeySession stores the authenticated *sessions.SessionToken
const ContextKeySession ContextKey = "session"

// RequireSession rejects requests without a valid session token.
func (s *Server) RequireSession(next http.Handler) http.Handler {
	return s.sessionAuth(next, true)
}

// OptionalSession authenticates a session token when one is presented.
// Requests using another Authorization scheme pass through unauthenticated.
func (s *Server) OptionalSession(next http.Handler) http.Handler {
	return s.sessionAuth(next, false)
}

func (s *Server) sessionAuth(next http.Handler, required bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenData, ok := bearerToken(r)
		if !ok {
			if required {
				writeError(w, r, apperrors.InvalidToken("missing session token"))
				return
			}
			next.ServeHTTP(w, r)
			return
		}

		session, err := s.loadSession(r.Context(), tokenData)
		if err != nil {
			zerolog.Ctx(r.Context()).Debug().Err(err).Msg("session authentication failed")
			writeError(w, r, apperrors.InvalidToken("unknown session token"))
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ContextKeySession, session)))
	})
}

// loadSession resolves the token data a client holds to its stored session.
func (s *Server) loadSession(ctx context.Context, tokenData string) (*sessions.SessionToken, error) {
	id, err := sessions.DeriveTokenID(tokenData)
	if err != nil {
		return nil, err
	}
	return s.sessions.SessionToken(ctx, id)
}

func bearerToken(r *http.Request) (string, bool) {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// sessionFromContext returns the authenticated session, or nil.
func sessionFromContext(ctx context.Context) *sessions.SessionToken {
	session, _ := ctx.Value(ContextKeySession).(*sessions.SessionToken)
	return session
}
