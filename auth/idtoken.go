package auth

import (
	"context"
	"time"

	apperrors "github.com/jrsteele09/go-oauth-grants/internal/errors"
	"github.com/jrsteele09/go-oauth-grants/oauthmodel"
)

// IDTokenVerifier checks an ID token for a client, accepting tokens that
// expired less than grace ago.
type IDTokenVerifier interface {
	Verify(ctx context.Context, clientID, rawIDToken string, grace time.Duration) (map[string]any, error)
}

// VerifyIDToken returns the claims of a valid ID token.
func (s *Service) VerifyIDToken(ctx context.Context, req *oauthmodel.IDTokenVerifyRequest) (map[string]any, error) {
	if req == nil {
		return nil, apperrors.InternalValidationError("VerifyIDToken")
	}
	grace := time.Duration(req.ExpiryGracePeriod) * time.Second
	return s.deps.IDTokens.Verify(ctx, req.ClientID, req.IDToken, grace)
}
