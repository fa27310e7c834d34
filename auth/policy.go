package auth

import (
	apperrors "github.com/jrsteele09/go-oauth-grants/internal/errors"
)

// ClientPolicy is the per-client configuration consulted on grant paths.
// It is built once at startup and never changes afterwards.
type ClientPolicy struct {
	disabled map[string]struct{}
	oldSync  map[string]struct{}
}

// NewClientPolicy builds a policy. disabledClientIDs may not open new
// connections; oldSyncClientIDs report their sign-ins as the "sync" service.
func NewClientPolicy(disabledClientIDs, oldSyncClientIDs []string) ClientPolicy {
	return ClientPolicy{
		disabled: toSet(disabledClientIDs),
		oldSync:  toSet(oldSyncClientIDs),
	}
}

// Check fails with DisabledClientID when clientID may not open new connections.
func (p ClientPolicy) Check(clientID string) error {
	if _, ok := p.disabled[clientID]; ok {
		return apperrors.DisabledClientID(clientID)
	}
	return nil
}

// IsOldSyncClient reports whether clientID is a legacy sync client.
func (p ClientPolicy) IsOldSyncClient(clientID string) bool {
	_, ok := p.oldSync[clientID]
	return ok
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		if v != "" {
			set[v] = struct{}{}
		}
	}
	return set
}
