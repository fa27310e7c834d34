package config

type OAuthConfig interface {
	GetDisabledClients() []string
	GetOldSyncClientIDs() []string
	GetIDTokenIssuer() string
	GetJWKS() string
	GetJWKSURL() string
}

type OAuth struct{}

var _ OAuthConfig = OAuth{}

// GetDisabledClients lists the clients that may not open new connections.
func (OAuth) GetDisabledClients() []string {
	return GetEnvList("OAUTH_DISABLED_CLIENTS")
}

// GetOldSyncClientIDs lists the legacy sync clients.
func (OAuth) GetOldSyncClientIDs() []string {
	return GetEnvList("OAUTH_OLD_SYNC_CLIENT_IDS")
}

func (OAuth) GetIDTokenIssuer() string {
	return GetEnv("OAUTH_ISSUER", "http://localhost:9000")
}

// GetJWKS returns an inline key set, preferred over GetJWKSURL when set.
func (OAuth) GetJWKS() string {
	return GetEnv("OAUTH_JWKS", "")
}

func (OAuth) GetJWKSURL() string {
	return GetEnv("OAUTH_JWKS_URL", "http://localhost:9000/v1/jwks")
}
