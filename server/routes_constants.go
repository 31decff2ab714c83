package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// OAuth relay API
	RouteOAuthStart    = "/api/oauth/start"
	RouteOAuthCallback = "/api/oauth/callback"

	// Operational
	RouteHealth  = "/healthz"
	RouteMetrics = "/metrics"
)
