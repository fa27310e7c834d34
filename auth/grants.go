package auth

import (
	"context"

	apperrors "github.com/jrsteele09/go-oauth-grants/internal/errors"
	"github.com/jrsteele09/go-oauth-grants/oauth2"
	"github.com/jrsteele09/go-oauth-grants/oauthmodel"
	"github.com/jrsteele09/go-oauth-grants/sessions"
	"github.com/pkg/errors"
)

// GrantTokens runs a token request. session is nil when the request carried
// no session authentication.
//
// After the backend grants tokens, a new session token is minted when the
// session scope was granted, and new refresh tokens trigger notifications.
// Metrics are recorded last and can never fail the request.
func (s *Service) GrantTokens(ctx context.Context, session *sessions.SessionToken, req *oauthmodel.TokenRequest, rc RequestContext) (*oauth2.TokenResponse, error) {
	if req == nil {
		return nil, apperrors.InternalValidationError("GrantTokens")
	}
	// Refresh exchanges keep working for clients that are already connected.
	if req.GrantType != oauth2.RefreshTokenGrant {
		if err := s.policy.Check(req.ClientID); err != nil {
			return nil, err
		}
	}

	grant, err := s.dispatch(ctx, session, req)
	if err != nil {
		return nil, err
	}

	if grant.Scopes().Contains(oauth2.ScopeSessionToken) {
		grant, err = s.provisionSessionToken(ctx, grant, rc)
		if err != nil {
			return nil, err
		}
	}

	// The notification and the metrics share one owner lookup.
	uid, uidErr := s.resolveUID(ctx, session, grant.AccessToken)
	if grant.HasRefreshToken() {
		if uidErr != nil {
			return nil, errors.Wrap(uidErr, "[Service.GrantTokens]")
		}
		if err := s.notifyNewToken(ctx, uid, req, grant, rc); err != nil {
			return nil, err
		}
	}

	resp := grant.Response()

	BestEffort(ctx, s.logger(ctx), "recordTokenMetrics", func(ctx context.Context) error {
		if uidErr != nil {
			return uidErr
		}
		return s.recordTokenMetrics(ctx, uid, session, req, resp)
	})
	return &resp, nil
}

// dispatch hands the request to the backend exchange for its grant type.
func (s *Service) dispatch(ctx context.Context, session *sessions.SessionToken, req *oauthmodel.TokenRequest) (oauth2.Grant, error) {
	switch req.GrantType {
	case oauth2.AuthorizationCodeGrant:
		return s.deps.Engine.GrantTokensFromAuthorizationCode(ctx, req)
	case oauth2.RefreshTokenGrant:
		return s.deps.Engine.GrantTokensFromRefreshToken(ctx, req)
	case oauth2.CredentialsGrant:
		if session == nil {
			return oauth2.Grant{}, apperrors.InvalidToken("session token required")
		}
		return s.deps.Engine.GrantTokensFromSessionToken(ctx, session, req)
	default:
		return oauth2.Grant{}, apperrors.InternalValidationError("dispatch")
	}
}
