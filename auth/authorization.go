package auth

import (
	"context"

	apperrors "github.com/jrsteele09/go-oauth-grants/internal/errors"
	"github.com/jrsteele09/go-oauth-grants/notify"
	"github.com/jrsteele09/go-oauth-grants/oauth2"
	"github.com/jrsteele09/go-oauth-grants/oauthmodel"
	"github.com/jrsteele09/go-oauth-grants/sessions"
	"github.com/pkg/errors"
)

// CreateAuthorizationCode issues an authorization code for the session's
// account and announces the login to attached services. The backend's
// result is returned unchanged.
func (s *Service) CreateAuthorizationCode(ctx context.Context, session *sessions.SessionToken, req *oauthmodel.AuthorizationRequest, rc RequestContext) (*oauth2.AuthorizationCode, error) {
	if req == nil {
		return nil, apperrors.InternalValidationError("CreateAuthorizationCode")
	}
	if err := s.policy.Check(req.ClientID); err != nil {
		return nil, err
	}
	if session == nil {
		return nil, apperrors.InvalidToken("session token required")
	}

	result, err := s.deps.Engine.CreateAuthorizationCode(ctx, session, req)
	if err != nil {
		return nil, err
	}

	BestEffort(ctx, s.logger(ctx), "notifyLogin", func(ctx context.Context) error {
		return s.notifyLogin(ctx, session, req.ClientID, rc)
	})
	return result, nil
}

func (s *Service) notifyLogin(ctx context.Context, session *sessions.SessionToken, clientID string, rc RequestContext) error {
	list, err := s.deps.Devices.List(ctx, session.UID)
	if err != nil {
		return errors.Wrap(err, "[Service.notifyLogin] list devices")
	}
	return s.deps.AttachedServices.Publish(ctx, notify.EventLogin, map[string]any{
		"country":     rc.Location.Country,
		"countryCode": rc.Location.CountryCode,
		"deviceCount": len(list),
		"email":       session.Email,
		"service":     clientID,
		"clientId":    clientID,
		"uid":         session.UID,
		"userAgent":   rc.UserAgentString,
	})
}

// GetScopedKeyData returns the scoped-key metadata a client may derive for
// the requested scopes.
func (s *Service) GetScopedKeyData(ctx context.Context, session *sessions.SessionToken, req *oauthmodel.ScopedKeyDataRequest) (map[string]oauth2.ScopedKeyData, error) {
	if req == nil {
		return nil, apperrors.InternalValidationError("GetScopedKeyData")
	}
	if err := s.policy.Check(req.ClientID); err != nil {
		return nil, err
	}
	if session == nil {
		return nil, apperrors.InvalidToken("session token required")
	}
	return s.deps.Engine.GetScopedKeyData(ctx, session, req)
}
