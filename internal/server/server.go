package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/arunandn09-cpu/loaisko-scholarship-backend/internal/auth"
	"github.com/arunandn09-cpu/loaisko-scholarship-backend/internal/config"
	"github.com/arunandn09-cpu/loaisko-scholarship-backend/internal/handler"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth          *handler.AuthHandler
	Verification  *handler.VerificationHandler
	PasswordReset *handler.PasswordResetHandler
	Account       *handler.AccountHandler
	Application   *handler.ApplicationHandler
	Health        *handler.HealthHandler
}

// NewRouter assembles the HTTP surface. The auth endpoints are public; the
// profile, application and admin groups sit behind bearer authentication.
func NewRouter(
	cfg *config.Config,
	jwtAuth auth.JWTAuthenticator,
	handlers Handlers,
	logger *zerolog.Logger,
) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", handlers.Health.Healthz)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", handlers.Auth.Register)
		r.Post("/login", handlers.Auth.Login)
		r.Post("/verify-code", handlers.Verification.SubmitCode)
		r.Get("/verify", handlers.Verification.VerifyByLink)
		r.Post("/resend-code", handlers.Verification.ResendCode)
		r.Post("/forgot-password", handlers.PasswordReset.RequestReset)
		r.Get("/reset-password/validate", handlers.PasswordReset.ValidateToken)
		r.Post("/reset-password", handlers.PasswordReset.ResetPassword)
	})

	authenticate := handler.Authenticate(jwtAuth, cfg.Identity.TokenSecret)

	r.Group(func(r chi.Router) {
		r.Use(authenticate)

		r.Get("/profile", handlers.Account.GetProfile)
		r.Post("/applications", handlers.Application.Submit)
		r.Get("/applications", handlers.Application.GetMine)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(authenticate)

		r.Get("/users", handlers.Account.ListUsers)
		r.Post("/users/delete", handlers.Account.DeleteUser)
		r.Get("/applications", handlers.Application.List)
		r.Post("/applications/status-email", handlers.Account.SendStatusEmail)
	})

	return r
}

func requestLogger(logger *zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("duration", time.Since(start)).
				Str("request_id", middleware.GetReqID(r.Context())).
				Msg("request completed")
		})
	}
}

// Server wraps the HTTP server lifecycle.
type Server struct {
	httpServer *http.Server
	logger     *zerolog.Logger
}

func New(cfg *config.Config, router http.Handler, logger *zerolog.Logger) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       time.Minute,
			WriteTimeout:      time.Minute,
			IdleTimeout:       time.Minute,
		},
		logger: logger,
	}
}

// Start blocks until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.httpServer.Addr).Msg("http server listening")

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
