package auth

import (
	"context"

	apperrors "github.com/jrsteele09/go-oauth-grants/internal/errors"
	"github.com/jrsteele09/go-oauth-grants/oauth2"
	"github.com/pkg/errors"
)

// provisionSessionToken creates a sibling of the session token the grant
// was derived from, described by the calling device, and binds it to the
// returned grant.
func (s *Service) provisionSessionToken(ctx context.Context, grant oauth2.Grant, rc RequestContext) (oauth2.Grant, error) {
	orig, err := s.deps.Sessions.SessionToken(ctx, grant.SessionTokenID)
	if err != nil {
		s.logger(ctx).Debug().Err(err).Msg("source session token not found for grant")
		return oauth2.Grant{}, apperrors.UnknownAuthorizationCode()
	}

	state := orig.CopyTokenState().WithUserAgent(rc.UserAgent)
	created, err := s.deps.Sessions.CreateSessionToken(ctx, state)
	if err != nil {
		return oauth2.Grant{}, errors.Wrap(err, "[Service.provisionSessionToken] create session token")
	}
	return grant.WithSessionToken(created.ID, created.Data), nil
}
