package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jrsteele09/go-oauth-grants/auth"
	"github.com/jrsteele09/go-oauth-grants/geo"
	"github.com/jrsteele09/go-oauth-grants/internal/config"
	"github.com/jrsteele09/go-oauth-grants/metrics"
	"github.com/jrsteele09/go-oauth-grants/sessions"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

type Server struct {
	env      string // Environment (e.g., "DEV", "PROD")
	router   chi.Router
	routes   []string
	config   config.Config
	auth     *auth.Service
	sessions sessions.Repo
	geo      geo.Resolver
	log      zerolog.Logger

	httpMetrics    *metrics.HTTPMetrics
	metricsHandler http.Handler
}

// Option configures optional collaborators of the Server.
type Option func(*Server)

// WithGeoResolver replaces the CDN header resolver.
func WithGeoResolver(resolver geo.Resolver) Option {
	return func(s *Server) {
		s.geo = resolver
	}
}

// WithMetrics records request metrics and serves the scrape endpoint.
func WithMetrics(httpMetrics *metrics.HTTPMetrics, handler http.Handler) Option {
	return func(s *Server) {
		s.httpMetrics = httpMetrics
		s.metricsHandler = handler
	}
}

// WithLogger sets the base logger that request loggers derive from.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Server) {
		s.log = log
	}
}

func New(cfg config.Config, authService *auth.Service, sessionRepo sessions.Repo, options ...Option) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("[Server New] config is required")
	}
	if authService == nil {
		return nil, errors.New("[Server New] auth service is required")
	}
	if sessionRepo == nil {
		return nil, errors.New("[Server New] session repo is required")
	}

	s := &Server{
		env:      cfg.GetEnv(),
		config:   cfg,
		auth:     authService,
		sessions: sessionRepo,
		geo:      geo.NewHeaderResolver(nil),
		log:      zerolog.Nop(),
	}
	for _, opt := range options {
		opt(s)
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// RegisterRoute adds a handler for method and pattern behind the given
// route-specific middleware.
func (s *Server) RegisterRoute(method, pattern string, handler http.HandlerFunc, mw ...func(http.Handler) http.Handler) {
	s.routes = append(s.routes, method+" "+pattern)
	s.router.With(mw...).Method(method, pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)
		s.log.Info().Msgf("[%-19s] %s", colouredMethod(parts[0]), parts[1])
	}
}

func colouredMethod(method string) string {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		return color + paddedMethod + ResetColor
	}
	return Gray + paddedMethod + ResetColor
}
