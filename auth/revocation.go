package auth

import (
	"context"

	"github.com/jrsteele09/go-oauth-grants/clients"
	apperrors "github.com/jrsteele09/go-oauth-grants/internal/errors"
	"github.com/jrsteele09/go-oauth-grants/oauth2"
	"github.com/jrsteele09/go-oauth-grants/oauthmodel"
	"github.com/jrsteele09/go-oauth-grants/token"
)

type revoker struct {
	matches func(raw string) bool
	revoke  func(ctx context.Context, raw string, creds clients.Credentials) error
}

func (s *Service) revokers() map[oauth2.TokenKind]revoker {
	return map[oauth2.TokenKind]revoker{
		oauth2.AccessTokenKind:  {matches: token.IsAccessToken, revoke: s.deps.Engine.RevokeAccessToken},
		oauth2.RefreshTokenKind: {matches: token.IsRefreshToken, revoke: s.deps.Engine.RevokeRefreshToken},
	}
}

// RevokeToken revokes a token of unknown kind (RFC 7009). Kinds are tried in
// the order suggested by the hint, skipping kinds the token cannot be. A
// token no kind recognises is not an error.
func (s *Service) RevokeToken(ctx context.Context, req *oauthmodel.RevocationRequest) error {
	if req == nil {
		return apperrors.InternalValidationError("RevokeToken")
	}
	creds := clients.Credentials{ClientID: req.ClientID, ClientSecret: req.ClientSecret}
	revokers := s.revokers()
	log := s.logger(ctx)

	for _, kind := range req.TokenTypeHint.SearchOrder() {
		r := revokers[kind]
		if !r.matches(req.Token) {
			continue
		}
		err := r.revoke(ctx, req.Token, creds)
		if err == nil {
			return nil
		}
		if !apperrors.Is(err, apperrors.ErrInvalidToken) {
			return err
		}
		log.Debug().Str("kind", kind.String()).Msg("token not found, trying next kind")
	}
	return nil
}
