package handler

import (
	"net/http"

	"github.com/msomdec/code-journal/internal/domain"
	"github.com/msomdec/code-journal/internal/service"
)

// Services bundles everything the routes need.
type Services struct {
	Users    domain.UserRepository
	Auth     *service.AuthService
	Sessions *service.SessionService
	Projects *service.ProjectService
	Stats    *service.StatsService
	Limiter  *service.LoginLimiter

	// CookieSecure marks the auth cookie Secure; enable behind TLS.
	CookieSecure bool
}

// RegisterRoutes sets up all HTTP routes on the given mux.
func RegisterRoutes(mux *http.ServeMux, svc Services) {
	authHandler := NewAuthHandler(svc.Auth, svc.Limiter, svc.CookieSecure)
	sessionHandler := NewSessionHandler(svc.Sessions)
	projectHandler := NewProjectHandler(svc.Projects)
	statsHandler := NewStatsHandler(svc.Stats)
	healthHandler := NewHealthHandler(svc.Users)

	mux.HandleFunc("GET /healthz", healthHandler.HandleHealth)

	mux.HandleFunc("POST /api/register", authHandler.HandleRegister)
	mux.HandleFunc("POST /api/login", authHandler.HandleLogin)
	mux.HandleFunc("POST /api/logout", authHandler.HandleLogout)

	protected := func(h http.HandlerFunc) http.Handler {
		return RequireAuth(svc.Auth, h)
	}

	mux.Handle("GET /api/me", protected(authHandler.HandleMe))

	mux.Handle("POST /api/sessions", protected(sessionHandler.HandleStart))
	mux.Handle("GET /api/sessions/{id}", protected(statsHandler.HandleSession))
	mux.Handle("POST /api/sessions/{id}/runs", protected(sessionHandler.HandleRun))
	mux.Handle("POST /api/sessions/{id}/errors", protected(sessionHandler.HandleError))
	mux.Handle("POST /api/sessions/{id}/end", protected(sessionHandler.HandleEnd))

	mux.Handle("POST /api/projects", protected(projectHandler.HandleSave))
	mux.Handle("GET /api/projects", protected(projectHandler.HandleList))

	mux.Handle("GET /api/stats", protected(statsHandler.HandleStats))
	mux.Handle("GET /api/leaderboard", protected(statsHandler.HandleLeaderboard))
	mux.Handle("GET /api/history", protected(statsHandler.HandleHistory))
	mux.Handle("GET /api/analytics", protected(statsHandler.HandleAnalytics))
	mux.Handle("GET /api/export", protected(statsHandler.HandleExport))
}
