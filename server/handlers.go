package server

import (
	"io"
	"net/http"

	"github.com/jrsteele09/go-oauth-grants/auth"
	"github.com/jrsteele09/go-oauth-grants/clients"
	apperrors "github.com/jrsteele09/go-oauth-grants/internal/errors"
	"github.com/jrsteele09/go-oauth-grants/oauthmodel"
	"github.com/jrsteele09/go-oauth-grants/useragent"
)

const maxBodyBytes = 64 << 10

// Heartbeat reports that the process is serving.
func (s *Server) Heartbeat() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{})
	}
}

func (s *Server) NotFound() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]any{
			"code":    http.StatusNotFound,
			"errno":   errnoUnexpected,
			"error":   "Not Found",
			"message": "Unknown endpoint",
		})
	}
}

// ScopedKeyData lists the scoped keys the client may derive for the session's account.
func (s *Server) ScopedKeyData() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, ok := readBody(w, r)
		if !ok {
			return
		}
		req, err := oauthmodel.DecodeScopedKeyDataRequest(body)
		if err != nil {
			writeError(w, r, err)
			return
		}
		data, err := s.auth.GetScopedKeyData(r.Context(), sessionFromContext(r.Context()), req)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, data)
	}
}

func (s *Server) IDTokenVerify() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, ok := readBody(w, r)
		if !ok {
			return
		}
		req, err := oauthmodel.DecodeIDTokenVerifyRequest(body)
		if err != nil {
			writeError(w, r, err)
			return
		}
		claims, err := s.auth.VerifyIDToken(r.Context(), req)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, claims)
	}
}

// Authorization issues an authorization code for the session's account.
func (s *Server) Authorization() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, ok := readBody(w, r)
		if !ok {
			return
		}
		req, err := oauthmodel.DecodeAuthorizationRequest(body)
		if err != nil {
			writeError(w, r, err)
			return
		}
		code, err := s.auth.CreateAuthorizationCode(r.Context(), sessionFromContext(r.Context()), req, s.requestContext(r))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, code)
	}
}

// Token grants tokens. Without a session, confidential clients may
// authenticate with HTTP Basic instead of body credentials.
func (s *Server) Token() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, ok := readBody(w, r)
		if !ok {
			return
		}
		req, err := oauthmodel.DecodeTokenRequest(body)
		if err != nil {
			writeError(w, r, err)
			return
		}

		session := sessionFromContext(r.Context())
		if session == nil {
			creds, err := clients.CredentialsFromRequest(r, req.ClientID, req.ClientSecret)
			if err != nil {
				writeError(w, r, err)
				return
			}
			req.ClientID, req.ClientSecret = creds.ClientID, creds.ClientSecret
		}

		resp, err := s.auth.GrantTokens(r.Context(), session, req, s.requestContext(r))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// Destroy revokes a token (RFC 7009). Unknown tokens are not an error.
func (s *Server) Destroy() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, ok := readBody(w, r)
		if !ok {
			return
		}
		req, err := oauthmodel.DecodeRevocationRequest(body)
		if err != nil {
			writeError(w, r, err)
			return
		}
		creds, err := clients.CredentialsFromRequest(r, req.ClientID, req.ClientSecret)
		if err != nil {
			writeError(w, r, err)
			return
		}
		req.ClientID, req.ClientSecret = creds.ClientID, creds.ClientSecret

		if err := s.auth.RevokeToken(r.Context(), req); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{})
	}
}

// requestContext describes the calling device.
func (s *Server) requestContext(r *http.Request) auth.RequestContext {
	return auth.RequestContext{
		UserAgent:       useragent.Parse(r.UserAgent()),
		UserAgentString: r.UserAgent(),
		Location:        s.geo.Resolve(r),
	}
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, r, apperrors.InvalidParameter("body: unreadable or too large"))
		return nil, false
	}
	return body, true
}
