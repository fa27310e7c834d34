package oauthmodel

import (
	"encoding/json"

	"github.com/jrsteele09/go-oauth-grants/oauth2"
)

// TokenRequest holds parameters for the OAuth2 token request.
// This represents the request body sent to the /oauth/token endpoint.
// Supports three grant types: authorization_code, refresh_token, fxa-credentials
type TokenRequest struct {
	// GrantType selects the exchange. When absent it defaults to
	// "authorization_code" if a code is supplied and "fxa-credentials" otherwise.
	GrantType oauth2.GrantType `json:"grant_type"`

	// ClientID identifies the OAuth2 client making the request.
	// Required: Yes (for all grant types)
	ClientID string `json:"client_id"`

	// ClientSecret is the secret credential for confidential clients.
	// Security: Never log or expose this value
	ClientSecret string `json:"client_secret,omitempty"`

	// Code is the authorization code received from the authorization endpoint.
	// Required: Yes (only for authorization_code grant)
	Code string `json:"code,omitempty"`

	// CodeVerifier is the PKCE code verifier that matches the code_challenge.
	// Exactly one of ClientSecret or CodeVerifier accompanies a code.
	CodeVerifier string `json:"code_verifier,omitempty"`

	// RedirectURI must match the one used in the authorization request, if any.
	RedirectURI string `json:"redirect_uri,omitempty"`

	// RefreshToken is used to obtain new access tokens without re-authentication.
	// Required: Yes (only for refresh_token grant)
	RefreshToken string `json:"refresh_token,omitempty"`

	// Scope optionally narrows the granted scopes (refresh_token, fxa-credentials).
	Scope string `json:"scope,omitempty"`

	// AccessType requests a refresh token when "offline" (fxa-credentials).
	AccessType oauth2.AccessType `json:"access_type,omitempty"`

	// TTL optionally shortens the access token lifetime, in seconds.
	TTL int64 `json:"ttl,omitempty"`

	// PPIDSeed rotates the pairwise pseudonymous identifier.
	PPIDSeed *int `json:"ppid_seed,omitempty"`

	// Resource is the RFC 8707 resource indicator.
	Resource string `json:"resource,omitempty"`
}

// DecodeTokenRequest validates a token request body against the schema of its
// grant type and decodes it, applying defaults.
func DecodeTokenRequest(body []byte) (*TokenRequest, error) {
	doc, err := decodeObject(body)
	if err != nil {
		return nil, err
	}

	grantType := string(defaultGrantType(doc))
	if raw, present := doc["grant_type"]; present {
		given, isString := raw.(string)
		if !isString {
			return nil, invalidParameter("grant_type: must be a string")
		}
		grantType = given
	}
	doc["grant_type"] = grantType

	schema, ok := tokenSchemas[oauth2.GrantType(grantType)]
	if !ok {
		return nil, invalidParameter("grant_type: must be one of authorization_code, refresh_token, fxa-credentials")
	}
	if err := validate(schema, doc); err != nil {
		return nil, err
	}

	req := &TokenRequest{}
	if err := json.Unmarshal(body, req); err != nil {
		return nil, invalidParameter(err.Error())
	}
	req.GrantType = oauth2.GrantType(grantType)
	if req.GrantType == oauth2.CredentialsGrant && req.AccessType == "" {
		req.AccessType = oauth2.OnlineAccess
	}
	return req, nil
}

func defaultGrantType(doc map[string]any) oauth2.GrantType {
	if _, hasCode := doc["code"]; hasCode {
		return oauth2.AuthorizationCodeGrant
	}
	return oauth2.CredentialsGrant
}
