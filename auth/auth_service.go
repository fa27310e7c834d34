package auth

import (
	"context"

	"github.com/jrsteele09/go-oauth-grants/devices"
	"github.com/jrsteele09/go-oauth-grants/metrics"
	"github.com/jrsteele09/go-oauth-grants/notify"
	"github.com/jrsteele09/go-oauth-grants/sessions"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Deps holds all collaborators of the Service
type Deps struct {
	Engine           Engine                  // Authorization backend
	Sessions         sessions.Repo           // Session tokens and accounts
	Devices          devices.Registry        // Connected devices, for login events
	AttachedServices notify.AttachedServices // Account event fan-out
	TokenNotifier    notify.NewTokenNotifier // Reacts to new refresh tokens
	Metrics          metrics.Emitter         // Flow events
	IDTokens         IDTokenVerifier         // ID token verification
}

// Service mediates grant issuance and revocation between the transport and
// the authorization backend.
type Service struct {
	deps   Deps
	policy ClientPolicy
	log    zerolog.Logger
}

// ServiceOption defines a function type to modify the Service instance.
type ServiceOption func(*Service)

// WithLogger sets the logger used when a request context carries none.
func WithLogger(log zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.log = log
	}
}

// NewService initializes a new Service with required dependencies.
func NewService(deps Deps, policy ClientPolicy, options ...ServiceOption) (*Service, error) {
	if deps.Engine == nil {
		return nil, errors.New("[NewService] Engine is required")
	}
	if deps.Sessions == nil {
		return nil, errors.New("[NewService] Sessions repo is required")
	}
	if deps.Devices == nil {
		return nil, errors.New("[NewService] Devices registry is required")
	}
	if deps.AttachedServices == nil {
		return nil, errors.New("[NewService] AttachedServices notifier is required")
	}
	if deps.TokenNotifier == nil {
		return nil, errors.New("[NewService] TokenNotifier is required")
	}
	if deps.Metrics == nil {
		return nil, errors.New("[NewService] Metrics emitter is required")
	}
	if deps.IDTokens == nil {
		return nil, errors.New("[NewService] IDTokens verifier is required")
	}

	s := &Service{
		deps:   deps,
		policy: policy,
		log:    zerolog.Nop(),
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// logger prefers the request-scoped logger.
func (s *Service) logger(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &s.log
}

// resolveUID returns the account behind a grant. Flows without a session
// (code and refresh exchanges) ask the backend who the access token is for.
func (s *Service) resolveUID(ctx context.Context, session *sessions.SessionToken, accessToken string) (string, error) {
	if session != nil && session.UID != "" {
		return session.UID, nil
	}
	info, err := s.deps.Engine.VerifyAccessToken(ctx, accessToken)
	if err != nil {
		return "", errors.Wrap(err, "[Service.resolveUID]")
	}
	if info.User == "" {
		return "", errors.New("[Service.resolveUID] token has no user")
	}
	return info.User, nil
}
