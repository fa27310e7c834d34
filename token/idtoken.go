package token

import (
	"context"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	apperrors "github.com/jrsteele09/go-oauth-grants/internal/errors"
	"github.com/pkg/errors"
)

// IDTokenVerifier checks OpenID Connect ID tokens issued by the auth server.
type IDTokenVerifier struct {
	issuer  string
	keySet  oidc.KeySet
	nowFunc func() time.Time
}

// IDTokenVerifierOption configures an IDTokenVerifier.
type IDTokenVerifierOption func(*IDTokenVerifier)

// WithVerifierClock sets the clock (primarily for testing).
func WithVerifierClock(now func() time.Time) IDTokenVerifierOption {
	return func(v *IDTokenVerifier) {
		v.nowFunc = now
	}
}

// NewIDTokenVerifier creates a verifier for tokens from issuer signed by keys in keySet.
func NewIDTokenVerifier(issuer string, keySet oidc.KeySet, options ...IDTokenVerifierOption) (*IDTokenVerifier, error) {
	if issuer == "" {
		return nil, errors.New("[NewIDTokenVerifier] issuer is required")
	}
	if keySet == nil {
		return nil, errors.New("[NewIDTokenVerifier] key set is required")
	}
	v := &IDTokenVerifier{
		issuer:  issuer,
		keySet:  keySet,
		nowFunc: time.Now,
	}
	for _, opt := range options {
		opt(v)
	}
	return v, nil
}

// NewKeySet returns a static key set when jwks is provided, otherwise a
// remote key set fetching from jwksURL.
func NewKeySet(ctx context.Context, jwks []byte, jwksURL string) (oidc.KeySet, error) {
	if len(jwks) > 0 {
		keys, err := ParsePublicKeys(jwks)
		if err != nil {
			return nil, err
		}
		return &oidc.StaticKeySet{PublicKeys: keys}, nil
	}
	if jwksURL == "" {
		return nil, errors.New("[NewKeySet] either a JWKS document or a JWKS URL is required")
	}
	return oidc.NewRemoteKeySet(ctx, jwksURL), nil
}

// Verify validates rawIDToken for clientID and returns its claims. Tokens
// that expired less than grace ago are still accepted.
func (v *IDTokenVerifier) Verify(ctx context.Context, clientID, rawIDToken string, grace time.Duration) (map[string]any, error) {
	if grace < 0 {
		grace = 0
	}
	verifier := oidc.NewVerifier(v.issuer, v.keySet, &oidc.Config{
		ClientID:             clientID,
		SupportedSigningAlgs: []string{RS256},
		Now: func() time.Time {
			return v.nowFunc().Add(-grace)
		},
	})

	idToken, err := verifier.Verify(ctx, rawIDToken)
	if err != nil {
		var expired *oidc.TokenExpiredError
		if errors.As(err, &expired) {
			return nil, apperrors.InvalidToken("id token expired")
		}
		return nil, errors.Wrap(apperrors.InvalidToken("id token rejected"), err.Error())
	}

	claims := map[string]any{}
	if err := idToken.Claims(&claims); err != nil {
		return nil, errors.Wrap(err, "[IDTokenVerifier.Verify] claims")
	}
	return claims, nil
}
