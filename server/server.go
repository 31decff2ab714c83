package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-oauth-relay/internal/config"
	"github.com/jrsteele09/go-oauth-relay/provider"
	"github.com/jrsteele09/go-oauth-relay/relay"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
)

type Server struct {
	env     string // Environment (e.g., "DEV", "PROD")
	mux     *http.ServeMux
	handler http.Handler
	routes  []string
	config  config.Config
	relay   *relay.Service
	metrics *Metrics
}

type options struct {
	tokens       provider.TokenExchanger
	registry     *prometheus.Registry
	relayOptions []relay.Option
}

type Option func(*options)

// WithTokenExchanger replaces the HTTP client for the provider token endpoint.
func WithTokenExchanger(tokens provider.TokenExchanger) Option {
	return func(o *options) { o.tokens = tokens }
}

// WithRegistry registers the metrics on reg instead of a fresh registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(o *options) { o.registry = reg }
}

func WithRelayOptions(opts ...relay.Option) Option {
	return func(o *options) { o.relayOptions = append(o.relayOptions, opts...) }
}

func New(cfg config.Config, opts ...Option) (*Server, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.tokens == nil {
		o.tokens = provider.NewClient(cfg.GetTokenURL(), nil, cfg.GetProviderTimeout())
	}
	if o.registry == nil {
		o.registry = prometheus.NewRegistry()
		o.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}

	metrics := NewMetrics(o.registry)
	relayService, err := relay.New(cfg, instrumentedExchanger{next: o.tokens, metrics: metrics}, o.relayOptions...)
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to create relay: %w", err)
	}

	s := &Server{
		env:     cfg.GetEnv(),
		mux:     http.NewServeMux(),
		config:  cfg,
		relay:   relayService,
		metrics: metrics,
	}
	s.initRoutes(o.registry)
	s.handler = s.withCors(s.mux)
	s.logRoutes()
	log.Info().Str("redirect_uri", relayService.RedirectURI()).Msg("OAuth relay ready")

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

// withCors lets the configured origins call the API with credentials, which
// the session cookies need. Without configured origins only same-origin
// callers are served.
func (s *Server) withCors(next http.Handler) http.Handler {
	origins := s.config.GetAllowedOrigins()
	if len(origins) == 0 {
		return next
	}
	log.Info().Str("origins", origins.String()).Msg("CORS enabled")
	return cors.New(cors.Options{
		AllowedOrigins:   origins.List(),
		AllowedMethods:   s.config.GetAllowedMethods(),
		AllowedHeaders:   s.config.GetAllowedHeaders(),
		AllowCredentials: true,
		MaxAge:           86400,
	}).Handler(next)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	log.Info().Msgf("[%-19s] %s", displayMethod, path)
}
