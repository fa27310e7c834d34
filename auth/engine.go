package auth

import (
	"context"

	"github.com/jrsteele09/go-oauth-grants/clients"
	"github.com/jrsteele09/go-oauth-grants/oauth2"
	"github.com/jrsteele09/go-oauth-grants/oauthmodel"
	"github.com/jrsteele09/go-oauth-grants/sessions"
)

// Engine is the authorization backend that owns codes and tokens.
// Failures are returned as *errors.AppError where the backend reported a
// typed error; revocation reports an unknown token as InvalidToken.
type Engine interface {
	GetScopedKeyData(ctx context.Context, session *sessions.SessionToken, req *oauthmodel.ScopedKeyDataRequest) (map[string]oauth2.ScopedKeyData, error)
	CreateAuthorizationCode(ctx context.Context, session *sessions.SessionToken, req *oauthmodel.AuthorizationRequest) (*oauth2.AuthorizationCode, error)

	GrantTokensFromAuthorizationCode(ctx context.Context, req *oauthmodel.TokenRequest) (oauth2.Grant, error)
	GrantTokensFromRefreshToken(ctx context.Context, req *oauthmodel.TokenRequest) (oauth2.Grant, error)
	GrantTokensFromSessionToken(ctx context.Context, session *sessions.SessionToken, req *oauthmodel.TokenRequest) (oauth2.Grant, error)

	RevokeAccessToken(ctx context.Context, token string, creds clients.Credentials) error
	RevokeRefreshToken(ctx context.Context, token string, creds clients.Credentials) error

	// VerifyAccessToken introspects an access token issued by the engine.
	VerifyAccessToken(ctx context.Context, accessToken string) (*oauth2.TokenInfo, error)
}
