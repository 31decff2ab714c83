package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) initRoutes(gatherer prometheus.Gatherer) {
	// OAuth relay
	s.RegisterRouteHandler("POST "+RouteOAuthStart, ChainMiddleware(s.StartHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteOAuthCallback, ChainMiddleware(s.CallbackHandler(), s.APIMiddleware()...))

	// Operational
	s.RegisterRouteFunc("GET "+RouteHealth, s.HealthHandler())
	s.RegisterRouteHandler("GET "+RouteMetrics, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
}
