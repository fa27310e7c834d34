package auth

import (
	"context"

	"github.com/jrsteele09/go-oauth-grants/metrics"
	"github.com/jrsteele09/go-oauth-grants/notify"
	"github.com/jrsteele09/go-oauth-grants/oauth2"
	"github.com/jrsteele09/go-oauth-grants/oauthmodel"
	"github.com/jrsteele09/go-oauth-grants/sessions"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// serviceSync is what legacy sync clients report as their service.
const serviceSync = "sync"

// BestEffort runs fn and discards its failure. Errors and panics are logged,
// never returned.
func BestEffort(ctx context.Context, log *zerolog.Logger, op string, fn func(context.Context) error) {
	defer func() {
		if r := recover(); r != nil {
			log.Warn().Str("op", op).Interface("panic", r).Msg("best-effort step panicked")
		}
	}()
	if err := fn(ctx); err != nil {
		log.Debug().Str("op", op).Err(err).Msg("best-effort step failed")
	}
}

// notifyNewToken tells the account about a new refresh token. Its failure
// fails the request.
func (s *Service) notifyNewToken(ctx context.Context, uid string, req *oauthmodel.TokenRequest, grant oauth2.Grant, rc RequestContext) error {
	return s.deps.TokenNotifier.NotifyNewToken(ctx, notify.NewToken{
		UID:             uid,
		ClientID:        req.ClientID,
		Grant:           grant,
		UserAgent:       rc.UserAgent,
		UserAgentString: rc.UserAgentString,
		Location:        rc.Location,
	})
}

// recordTokenMetrics emits the flow events of a completed grant.
func (s *Service) recordTokenMetrics(ctx context.Context, uid string, session *sessions.SessionToken, req *oauthmodel.TokenRequest, resp oauth2.TokenResponse) error {
	account, err := s.deps.Sessions.Account(ctx, uid)
	if err != nil {
		return errors.Wrap(err, "[Service.recordTokenMetrics] load account")
	}

	if err := s.deps.Metrics.Emit(ctx, metrics.EventTokenCreated, map[string]any{
		"grantType":       string(req.GrantType),
		"uid":             uid,
		"ecosystemAnonId": account.EcosystemAnonID,
		"clientId":        req.ClientID,
		"service":         req.ClientID,
	}); err != nil {
		return err
	}

	// Desktop asks for a profile token before it adds the device, so only a
	// pure sync token marks the end of a sync sign-in.
	scopes := oauth2.ParseScopes(resp.Scope)
	if !scopes.Contains(oauth2.ScopeOldSync) || scopes.Contains(oauth2.ScopeProfile) {
		return nil
	}
	if session == nil {
		return errors.New("[Service.recordTokenMetrics] account.signed needs a session device")
	}
	service := req.ClientID
	if s.policy.IsOldSyncClient(req.ClientID) {
		service = serviceSync
	}
	return s.deps.Metrics.Emit(ctx, metrics.EventAccountSigned, map[string]any{
		"uid":       uid,
		"device_id": session.DeviceID,
		"service":   service,
	})
}
