// Package httpapi exposes the accounts service over HTTP under
// /api/accounts/ using a chi router.
package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/dmitrijs2005/ocrdesk/internal/logging"
	"github.com/dmitrijs2005/ocrdesk/internal/server/auth"
	"github.com/dmitrijs2005/ocrdesk/internal/server/models"
	"github.com/dmitrijs2005/ocrdesk/internal/server/services"
)

const (
	RegisterPath = "/api/accounts/register/"
	LoginPath    = "/api/accounts/login/"
	ProfilePath  = "/api/accounts/profile/"
	LogoutPath   = "/api/accounts/logout/"
	HealthPath   = "/healthz"
)

// Accounts is the part of services.AccountService the handlers use.
type Accounts interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.User, error)
	Login(ctx context.Context, username, password string) (*services.LoginResult, error)
	Authenticate(ctx context.Context, token string) (*auth.Claims, error)
	Profile(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, upd services.ProfileUpdate) (*models.User, error)
	Logout(ctx context.Context, claims *auth.Claims) error
}

type Server struct {
	router   chi.Router
	accounts Accounts
	logger   logging.Logger
}

// NewServer builds the router. allowedOrigin is the browser origin allowed
// by CORS; empty disables cross-origin requests.
func NewServer(accounts Accounts, logger logging.Logger, allowedOrigin string) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		accounts: accounts,
		logger:   logger,
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)

	if origin := strings.TrimSuffix(allowedOrigin, "/"); origin != "" {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{origin},
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
			AllowedHeaders:   []string{"Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Get(HealthPath, s.handleHealth)

	s.router.Post(RegisterPath, s.handleRegister)
	s.router.Post(LoginPath, s.handleLogin)

	s.router.Group(func(r chi.Router) {
		r.Use(s.bearerAuth)
		r.Get(ProfilePath, s.handleProfile)
		r.Put(ProfilePath, s.handleUpdateProfile)
		r.Post(LogoutPath, s.handleLogout)
	})

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusNotFound, "Not found.")
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusMethodNotAllowed, "Method not allowed.")
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
