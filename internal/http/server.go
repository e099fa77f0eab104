// Package http serves the browser interface and the JSON endpoints that
// feed the analytics chart.
package http

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"expensetracker/internal/lib/sl"
	"expensetracker/internal/log"
	"expensetracker/internal/middleware/ratelimit"
	"expensetracker/internal/middleware/security"
	"expensetracker/internal/middleware/trace"
	"expensetracker/internal/services"
	"expensetracker/internal/session"
	appweb "expensetracker/web"
)

// Deps are the collaborators the server needs. Ready may be nil.
type Deps struct {
	Accounts *services.AccountService
	Expenses *services.ExpenseService
	Sessions *session.Manager
	Ready    func(ctx context.Context) error
	Logger   *log.Logger

	LoginRatePerMinute int
}

// Server wraps http.Server with the handlers' dependencies.
type Server struct {
	http.Server

	templates *template.Template
	accounts  *services.AccountService
	expenses  *services.ExpenseService
	sessions  *session.Manager
	ready     func(ctx context.Context) error
	logger    *log.Logger
	limiter   *ratelimit.Limiter
	started   time.Time
}

// NewServer parses the embedded templates and builds the router.
func NewServer(addr string, deps Deps) (*Server, error) {
	if deps.Accounts == nil || deps.Expenses == nil || deps.Sessions == nil {
		return nil, errors.New("http: accounts, expenses and sessions are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = log.Discard()
	}

	t, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadTimeout:       10 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      10 * time.Second,
			IdleTimeout:       60 * time.Second,
			MaxHeaderBytes:    1 << 16,
		},
		templates: t,
		accounts:  deps.Accounts,
		expenses:  deps.Expenses,
		sessions:  deps.Sessions,
		ready:     deps.Ready,
		logger:    logger.WithComponent(log.ComponentHTTP),
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: deps.LoginRatePerMinute,
			CleanupInterval:   5 * time.Minute,
		}),
		started: time.Now(),
	}
	s.Handler = s.routes()
	return s, nil
}

func parseTemplates() (*template.Template, error) {
	t, err := template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return t, nil
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(log.RequestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(trace.Middleware(nil))
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)
	r.Use(s.sessions.Middleware)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Handle("/metrics", promhttp.Handler())

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		r.Get("/static/*", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600")
			static.ServeHTTP(w, r)
		})
	} else {
		s.logger.Warn("Failed to mount embedded static FS", sl.Err(err))
	}

	r.Get("/", s.handleIndex)

	throttle := s.limiter.Middleware(clientKey, s.renderThrottled)
	r.Get("/signup", s.handleSignupPage)
	r.With(throttle).Post("/signup", s.handleSignup)
	r.Get("/login", s.handleLoginPage)
	r.With(throttle).Post("/login", s.handleLogin)

	r.Route("/app", func(r chi.Router) {
		r.Use(session.RequireUser(redirectToLogin))
		r.Use(security.NoStore)
		r.Get("/", s.handleApp)
		r.Post("/expenses", s.handleAddExpense)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(session.RequireUser(s.renderUnauthorized))
		r.Use(security.NoStore)
		r.Get("/summary", s.handleAPISummary)
		r.Get("/analytics", s.handleAPIAnalytics)
	})

	return r
}

// Shutdown stops the login limiter and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Stop()
	return s.Server.Shutdown(ctx)
}

// clientKey relies on middleware.RealIP having rewritten RemoteAddr for
// proxied requests.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
