// Package web serves the landing pages, the contact form and the staff
// dashboard.
package web

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ajei/internal/config"
	"ajei/internal/i18n"
	"ajei/internal/metrics"
	"ajei/internal/services"
	"ajei/internal/session"
)

// Deps are the collaborators the HTTP layer needs.
type Deps struct {
	Config    *config.Config
	Bundle    *i18n.Bundle
	Sessions  *session.Manager
	Intake    *services.IntakeService
	Contacts  *services.ContactService
	Dashboard *services.DashboardService
	Settings  *services.SettingsService
	Auth      *services.AuthService
	Health    *services.HealthService
	Tracker   *services.PageViewTracker
	Location  *time.Location
}

// Server holds the HTTP handlers.
type Server struct {
	cfg       *config.Config
	bundle    *i18n.Bundle
	sessions  *session.Manager
	intake    *services.IntakeService
	contacts  *services.ContactService
	dashboard *services.DashboardService
	settings  *services.SettingsService
	auth      *services.AuthService
	health    *services.HealthService
	tracker   *services.PageViewTracker
	loc       *time.Location
	log       *slog.Logger
}

// NewServer wires the handlers.
func NewServer(d Deps) *Server {
	loc := d.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Server{
		cfg:       d.Config,
		bundle:    d.Bundle,
		sessions:  d.Sessions,
		intake:    d.Intake,
		contacts:  d.Contacts,
		dashboard: d.Dashboard,
		settings:  d.Settings,
		auth:      d.Auth,
		health:    d.Health,
		tracker:   d.Tracker,
		loc:       loc,
		log:       slog.Default().With("component", "web"),
	}
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(securityHeaders(s.cfg))
	r.Use(corsHeaders(s.cfg))
	r.Use(requestLogger)
	r.Use(metrics.PrometheusMiddleware)

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(s.cfg.Site.StaticDir))))

	r.Group(func(r chi.Router) {
		r.Use(s.sessions.Middleware)
		r.Use(s.bundle.Middleware)
		r.Use(csrfProtection(s.cfg))
		r.Use(s.tracker.Middleware)

		r.Get("/", s.handleLanding("landing.html"))
		r.Get("/ajei/", s.handleLanding("ajei.html"))
		r.Post("/contact/submit/", s.handleContactSubmit)

		r.Get("/accounts/login/", s.handleLoginForm)
		r.Post("/accounts/login/", s.handleLogin)
		r.Post("/accounts/logout/", s.handleLogout)

		r.Route("/dashboard", func(r chi.Router) {
			r.Use(s.requireStaff)
			r.Get("/", s.handleDashboard)
			r.Get("/contacts/", s.handleContactList)
			r.Post("/contacts/bulk/", s.handleBulkStatus)
			r.Get("/contact/{id:[0-9]+}/", s.handleContactDetail)
			r.Post("/contact/{id:[0-9]+}/update/", s.handleUpdateStatus)
			r.Post("/settings/contact-form/", s.handleContactFormToggle)
			r.Get("/translations/", s.handleTranslations)
		})
		r.With(s.requireStaff).Get("/rosetta/", s.handleTranslationPick)
		r.With(s.requireStaff).Get("/rosetta/pick/{lang}/", s.handleTranslationPick)
	})

	return r
}
