package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Account routes
	RouteScopedKeyData = "/v1/account/scoped-key-data"

	// OAuth routes
	RouteIDTokenVerify = "/v1/oauth/id-token-verify"
	RouteAuthorization = "/v1/oauth/authorization"
	RouteToken         = "/v1/oauth/token"
	RouteDestroy       = "/v1/oauth/destroy"

	// Operational routes
	RouteHeartbeat = "/__heartbeat__"
	RouteMetrics   = "/metrics"
)
