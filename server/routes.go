package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) initRoutes() {
	r := chi.NewRouter()
	r.Use(s.RequestLoggerMiddleware, s.RecoverMiddleware)
	if s.httpMetrics != nil {
		r.Use(s.httpMetrics.Middleware)
	}
	r.Use(s.CorsMiddleware)
	r.NotFound(s.NotFound())
	r.MethodNotAllowed(s.NotFound())
	s.router = r

	s.RegisterRoute(http.MethodGet, RouteHeartbeat, s.Heartbeat())
	if s.metricsHandler != nil {
		s.RegisterRoute(http.MethodGet, RouteMetrics, s.metricsHandler.ServeHTTP)
	}

	// Session authenticated
	s.RegisterRoute(http.MethodPost, RouteScopedKeyData, s.ScopedKeyData(), s.RequireSession)
	s.RegisterRoute(http.MethodPost, RouteAuthorization, s.Authorization(), s.RequireSession)

	// Session optional: only the credentials grant needs one
	s.RegisterRoute(http.MethodPost, RouteToken, s.Token(), s.OptionalSession)

	// Unauthenticated
	s.RegisterRoute(http.MethodPost, RouteIDTokenVerify, s.IDTokenVerify())
	s.RegisterRoute(http.MethodPost, RouteDestroy, s.Destroy())
}
