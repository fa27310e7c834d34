package oauth2

// ResponseType represents the OAuth 2.0 response type.
// Determines what is returned from the authorization endpoint.
type ResponseType string

const (
	// CodeResponseType indicates the authorization code flow.
	// It is the only response type the authorization endpoint accepts.
	CodeResponseType ResponseType = "code"
)

// CodeMethodType represents the PKCE (Proof Key for Code Exchange) challenge method.
type CodeMethodType string

const (
	// CodeMethodTypeS256 indicates SHA-256 hashing is used for the code challenge.
	// Client sends: code_challenge = BASE64URL(SHA256(code_verifier))
	CodeMethodTypeS256 CodeMethodType = "S256"
)

// AccessType selects whether a refresh token is issued with the grant.
type AccessType string

const (
	// OnlineAccess issues an access token only.
	OnlineAccess AccessType = "online"
	// OfflineAccess additionally issues a refresh token.
	OfflineAccess AccessType = "offline"
)

// GrantType represents the OAuth 2.0 grant type used at the token endpoint.
// The set is closed: values outside it are rejected by ParseGrantType.
type GrantType string

const (
	// AuthorizationCodeGrant exchanges an authorization code (plus optional PKCE verifier) for tokens.
	AuthorizationCodeGrant GrantType = "authorization_code"

	// RefreshTokenGrant exchanges a refresh token for a fresh access token.
	RefreshTokenGrant GrantType = "refresh_token"

	// CredentialsGrant exchanges the caller's authenticated session token directly for tokens.
	// Only valid on requests that carry session authentication.
	CredentialsGrant GrantType = "fxa-credentials"
)

// ParseGrantType returns the grant type named by s and whether it is one of
// the supported values.
func ParseGrantType(s string) (GrantType, bool) {
	switch g := GrantType(s); g {
	case AuthorizationCodeGrant, RefreshTokenGrant, CredentialsGrant:
		return g, true
	}
	return GrantType(s), false
}

// TokenTypeHint is the RFC 7009 token_type_hint. It is advisory: unknown
// values are kept as-is and simply do not change the search order.
type TokenTypeHint string

const (
	AccessTokenHint  TokenTypeHint = "access_token"
	RefreshTokenHint TokenTypeHint = "refresh_token"
)

// TokenKind identifies a revocable token class.
type TokenKind int

const (
	AccessTokenKind TokenKind = iota
	RefreshTokenKind
)

func (k TokenKind) String() string {
	switch k {
	case AccessTokenKind:
		return "access_token"
	case RefreshTokenKind:
		return "refresh_token"
	}
	return "unknown"
}

// SearchOrder returns the order in which token kinds are tried for a revocation.
// Only an explicit refresh_token hint reorders the search; every other value,
// including unknown ones, yields the default order.
func (h TokenTypeHint) SearchOrder() []TokenKind {
	if h == RefreshTokenHint {
		return []TokenKind{RefreshTokenKind, AccessTokenKind}
	}
	return []TokenKind{AccessTokenKind, RefreshTokenKind}
}

// TokenTypeBearer is the only token_type issued.
const TokenTypeBearer = "bearer"
