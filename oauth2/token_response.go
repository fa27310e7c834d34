package oauth2

// Grant is the token grant as returned by the authorization engine.
// It is passed by value: every change produces a new Grant, and the only way
// out to a caller is Response, which has no room for SessionTokenID.
type Grant struct {
	// AccessToken is the bearer token used to access protected resources.
	AccessToken string `json:"access_token"`

	// RefreshToken is present when offline access was granted.
	RefreshToken string `json:"refresh_token,omitempty"`

	// IDToken is the OpenID Connect ID token, present when "openid" was granted.
	IDToken string `json:"id_token,omitempty"`

	// Scope is the space-delimited set of granted scopes.
	Scope string `json:"scope"`

	// TokenType is always "bearer".
	TokenType string `json:"token_type"`

	// ExpiresIn is the lifetime in seconds of the access token.
	ExpiresIn int64 `json:"expires_in"`

	// AuthAt is the unix time at which the user authenticated.
	AuthAt int64 `json:"auth_at,omitempty"`

	// KeysJWE is the encrypted bundle of scoped keys, when requested.
	KeysJWE string `json:"keys_jwe,omitempty"`

	// SessionTokenID identifies the session token the grant was derived from.
	// Internal only: used to provision a new session token and to attach it
	// to device records.
	SessionTokenID string `json:"session_token_id,omitempty"`

	// SessionToken is the opaque data of a newly provisioned session token.
	SessionToken string `json:"session_token,omitempty"`
}

// Scopes parses the granted scope string.
func (g Grant) Scopes() ScopeSet {
	return ParseScopes(g.Scope)
}

// HasRefreshToken reports whether a refresh token was provisioned.
func (g Grant) HasRefreshToken() bool {
	return g.RefreshToken != ""
}

// WithSessionToken returns a copy of g bound to a newly created session token.
func (g Grant) WithSessionToken(id, data string) Grant {
	g.SessionTokenID = id
	g.SessionToken = data
	return g
}

// Response returns the externally visible form of the grant.
func (g Grant) Response() TokenResponse {
	return TokenResponse{
		AccessToken:  g.AccessToken,
		RefreshToken: g.RefreshToken,
		IDToken:      g.IDToken,
		SessionToken: g.SessionToken,
		Scope:        g.Scope,
		TokenType:    g.TokenType,
		ExpiresIn:    g.ExpiresIn,
		AuthAt:       g.AuthAt,
		KeysJWE:      g.KeysJWE,
	}
}

// TokenResponse represents the response from an OAuth2 token request.
// This is the RFC 6749 token endpoint response, extended with the session
// token and scoped-key fields.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	IDToken      string `json:"id_token,omitempty"`
	SessionToken string `json:"session_token,omitempty"`
	Scope        string `json:"scope"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	AuthAt       int64  `json:"auth_at,omitempty"`
	KeysJWE      string `json:"keys_jwe,omitempty"`
}

// AuthorizationCode is the result of a successful code issuance.
type AuthorizationCode struct {
	Redirect string `json:"redirect,omitempty"`
	Code     string `json:"code,omitempty"`
	State    string `json:"state,omitempty"`
}

// ScopedKeyData describes the key material a client may derive for a scope.
type ScopedKeyData struct {
	Identifier           string `json:"identifier"`
	KeyRotationSecret    string `json:"keyRotationSecret"`
	KeyRotationTimestamp int64  `json:"keyRotationTimestamp"`
}

// TokenInfo is the subset of an access token's introspection used here.
type TokenInfo struct {
	User     string `json:"user"`
	ClientID string `json:"client_id,omitempty"`
	Scope    string `json:"scope,omitempty"`
}
