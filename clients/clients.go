package clients

import (
	"net/http"
	"strings"

	apperrors "github.com/jrsteele09/go-oauth-grants/internal/errors"
)

// Credentials identify an OAuth client to the backend. A public client has
// an empty Secret.
type Credentials struct {
	ClientID     string `json:"client_id,omitempty"`
	ClientSecret string `json:"client_secret,omitempty"`
}

// CredentialsFromRequest resolves the client credentials of a request. They
// come either from an HTTP Basic Authorization header or from the body
// fields, never from both.
func CredentialsFromRequest(r *http.Request, bodyClientID, bodyClientSecret string) (Credentials, error) {
	authz := r.Header.Get("Authorization")
	if authz == "" {
		return Credentials{ClientID: bodyClientID, ClientSecret: bodyClientSecret}, nil
	}

	if !strings.HasPrefix(strings.ToLower(authz), "basic ") {
		return Credentials{}, apperrors.InvalidParameter("authorization: only Basic client authentication is accepted")
	}
	id, secret, ok := r.BasicAuth()
	if !ok || id == "" {
		return Credentials{}, apperrors.InvalidParameter("authorization: malformed Basic credentials")
	}
	if bodyClientSecret != "" {
		return Credentials{}, apperrors.InvalidParameter("client_secret: credentials supplied twice")
	}
	if bodyClientID != "" && bodyClientID != id {
		return Credentials{}, apperrors.InvalidParameter("client_id: does not match Authorization header")
	}
	return Credentials{ClientID: id, ClientSecret: secret}, nil
}
