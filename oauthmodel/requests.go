package oauthmodel

import (
	"encoding/json"

	"github.com/jrsteele09/go-oauth-grants/oauth2"
)

// AuthorizationRequest holds parameters for the authorization code request.
// It is received as the JSON body of /oauth/authorization from an
// authenticated session.
type AuthorizationRequest struct {
	// ResponseType is always "code".
	ResponseType oauth2.ResponseType `json:"response_type"`

	// ClientID identifies the application requesting authorization.
	ClientID string `json:"client_id"`

	// RedirectURI is where the authorization response will be sent.
	RedirectURI string `json:"redirect_uri,omitempty"`

	// Scope specifies the permissions being requested.
	Scope string `json:"scope,omitempty"`

	// State is echoed back to the client with the code.
	State string `json:"state"`

	// AccessType controls whether a refresh token will be issued for the code.
	AccessType oauth2.AccessType `json:"access_type"`

	// CodeChallengeMethod and CodeChallenge are the PKCE parameters; both or neither.
	CodeChallengeMethod oauth2.CodeMethodType `json:"code_challenge_method,omitempty"`
	CodeChallenge       string                `json:"code_challenge,omitempty"`

	// KeysJWE carries scoped keys encrypted for the client.
	KeysJWE string `json:"keys_jwe,omitempty"`

	// AcrValues requests an authentication context class.
	AcrValues string `json:"acr_values,omitempty"`
}

// ScopedKeyDataRequest asks which scoped keys a client may derive.
type ScopedKeyDataRequest struct {
	ClientID string `json:"client_id"`
	Scope    string `json:"scope"`
}

// IDTokenVerifyRequest asks for an ID token to be verified for a client.
type IDTokenVerifyRequest struct {
	ClientID string `json:"client_id"`
	IDToken  string `json:"id_token"`
	// ExpiryGracePeriod is the number of seconds an expired token is still accepted.
	ExpiryGracePeriod int64 `json:"expiry_grace_period"`
}

// RevocationRequest is an RFC 7009 revocation request. The client credentials
// may also arrive in an Authorization header; see clients.CredentialsFromRequest.
type RevocationRequest struct {
	ClientID      string               `json:"client_id,omitempty"`
	ClientSecret  string               `json:"client_secret,omitempty"`
	Token         string               `json:"token"`
	TokenTypeHint oauth2.TokenTypeHint `json:"token_type_hint,omitempty"`
}

// DecodeAuthorizationRequest validates and decodes an authorization request body.
func DecodeAuthorizationRequest(body []byte) (*AuthorizationRequest, error) {
	req := &AuthorizationRequest{}
	if err := decodeInto(authorizationSchema, body, req); err != nil {
		return nil, err
	}
	if req.ResponseType == "" {
		req.ResponseType = oauth2.CodeResponseType
	}
	if req.AccessType == "" {
		req.AccessType = oauth2.OnlineAccess
	}
	return req, nil
}

// DecodeScopedKeyDataRequest validates and decodes a scoped-key-data request body.
func DecodeScopedKeyDataRequest(body []byte) (*ScopedKeyDataRequest, error) {
	req := &ScopedKeyDataRequest{}
	if err := decodeInto(scopedKeyDataSchema, body, req); err != nil {
		return nil, err
	}
	return req, nil
}

// DecodeIDTokenVerifyRequest validates and decodes an id-token-verify request body.
func DecodeIDTokenVerifyRequest(body []byte) (*IDTokenVerifyRequest, error) {
	req := &IDTokenVerifyRequest{}
	if err := decodeInto(idTokenVerifySchema, body, req); err != nil {
		return nil, err
	}
	return req, nil
}

// DecodeRevocationRequest validates and decodes a revocation request body.
// The token_type_hint is length-limited but otherwise unconstrained.
func DecodeRevocationRequest(body []byte) (*RevocationRequest, error) {
	req := &RevocationRequest{}
	if err := decodeInto(revocationSchema, body, req); err != nil {
		return nil, err
	}
	return req, nil
}

func decodeInto(schema *compiledSchema, body []byte, out any) error {
	doc, err := decodeObject(body)
	if err != nil {
		return err
	}
	if err := validate(schema, doc); err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return invalidParameter(err.Error())
	}
	return nil
}
