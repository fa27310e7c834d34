package oauth2

import (
	"sort"
	"strings"
)

// Distinguished scopes that change how a grant is handled.
const (
	// ScopeSessionToken lets the bearer mint a new session token alongside the grant.
	ScopeSessionToken = "https://identity.mozilla.com/tokens/session"
	// ScopeOldSync marks a grant for the legacy full-account sync service.
	ScopeOldSync = "https://identity.mozilla.com/apps/oldsync"
	// ScopeProfile is the basic profile scope.
	ScopeProfile = "profile"
)

// ScopeSet is an unordered set of scope values parsed from a space-delimited
// scope string. Duplicates collapse and order is irrelevant.
type ScopeSet map[string]struct{}

// ParseScopes builds a ScopeSet from a space-delimited string.
func ParseScopes(scope string) ScopeSet {
	set := make(ScopeSet)
	for _, s := range strings.Fields(scope) {
		set[s] = struct{}{}
	}
	return set
}

// Contains reports whether scope is a member of the set.
func (s ScopeSet) Contains(scope string) bool {
	_, ok := s[scope]
	return ok
}

// String renders the set in a stable, sorted, space-delimited form.
func (s ScopeSet) String() string {
	values := make([]string, 0, len(s))
	for v := range s {
		values = append(values, v)
	}
	sort.Strings(values)
	return strings.Join(values, " ")
}
