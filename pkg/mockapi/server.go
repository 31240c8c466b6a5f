// Package mockapi is an in-memory fake of the finance API used by tests and
// by the mock-server command. Faults can be injected per route to exercise
// client retries, timeouts and error normalization.
package mockapi

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/deividlukks/Fayol-sub007/pkg/httputil"
	"github.com/deividlukks/Fayol-sub007/pkg/logging"
)

const componentMock = logging.ComponentMockAPI

// DefaultPrefix is the path the API is mounted under.
const DefaultPrefix = "/api"

// Server is the fake API.
type Server struct {
	prefix  string
	router  chi.Router
	store   *store
	faults  *faultSet
	limiter *RateLimiter
	logger  *logging.ColoredLogger
	server  *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) { s.logger = logging.Wrap(logger, false) }
}

// WithRateLimit enables per-caller rate limiting.
func WithRateLimit(ratePerMinute, burst int) Option {
	return func(s *Server) { s.limiter = NewRateLimiter(ratePerMinute, burst) }
}

// WithPrefix mounts the API under prefix instead of DefaultPrefix.
func WithPrefix(prefix string) Option {
	return func(s *Server) { s.prefix = prefix }
}

// New creates a fake API seeded with the system categories.
func New(opts ...Option) *Server {
	s := &Server{
		prefix: DefaultPrefix,
		store:  newStore(),
		faults: newFaultSet(),
		logger: logging.Wrap(nil, false),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.store.seedCategories()

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.faultMiddleware)
	if s.limiter != nil {
		r.Use(s.limiter.Middleware)
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if s.prefix == "" || s.prefix == "/" {
		s.prefix = ""
		s.routes(r)
	} else {
		r.Route(s.prefix, s.routes)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteError(w, http.StatusNotFound, "Recurso não encontrado")
	})

	s.router = r
	return s
}

func (s *Server) routes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", s.handleRegister)
		r.Post("/login", s.handleLogin)
		r.Post("/check", s.handleCheckUser)
		r.Post("/refresh", s.handleRefresh)
		r.Post("/forgot-password", s.handleForgotPassword)
		r.Post("/reset-password", s.handleResetPassword)
		r.Post("/verify-reset-token", s.handleVerifyResetToken)
		r.With(s.requireAuth).Post("/logout", s.handleLogout)
		r.With(s.requireAuth).Get("/me", s.handleMe)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)

		r.Get("/accounts", s.handleListAccounts)
		r.Post("/accounts", s.handleCreateAccount)
		r.Get("/accounts/{id}", s.handleGetAccount)
		r.Patch("/accounts/{id}", s.handleUpdateAccount)
		r.Delete("/accounts/{id}", s.handleDeleteAccount)

		r.Get("/categories", s.handleListCategories)
		r.Post("/categories", s.handleCreateCategory)
		r.Get("/categories/{id}/subcategories", s.handleSubcategories)
		r.Delete("/categories/{id}", s.handleDeleteCategory)

		r.Get("/transactions", s.handleListTransactions)
		r.Post("/transactions", s.handleCreateTransaction)
		r.Get("/transactions/summary", s.handleSummary)
		r.Get("/transactions/{id}", s.handleGetTransaction)
		r.Patch("/transactions/{id}", s.handleUpdateTransaction)
		r.Delete("/transactions/{id}", s.handleDeleteTransaction)
	})
}

// Handler returns the HTTP handler, for use with httptest.NewServer.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Inject registers a fault.
func (s *Server) Inject(f Fault) {
	s.faults.add(f)
	s.logger.ComponentDebug(componentMock, "Fault injected",
		zap.String("method", f.Method),
		zap.String("path", f.Path),
		zap.Int("status", f.Status),
		zap.Int("times", f.Times),
		zap.Bool("drop", f.Drop),
	)
}

// ResetFaults removes every fault and clears the hit counters.
func (s *Server) ResetFaults() {
	s.faults.reset()
}

// Hits returns how many requests reached method and path (API prefix
// removed), faulted or not.
func (s *Server) Hits(method, path string) int {
	return s.faults.count(method, path)
}

// RegisterUser creates a user directly, bypassing the API.
func (s *Server) RegisterUser(name, email, password string) (User, error) {
	u, ok := s.store.createUser(name, email, "", password)
	if !ok {
		return User{}, fmt.Errorf("user %s already exists", email)
	}
	return *u, nil
}

// ResetToken returns the pending password reset token for email.
func (s *Server) ResetToken(email string) (string, bool) {
	return s.store.resetTokenFor(email)
}

// RevokeToken invalidates an access token so the next call is rejected.
func (s *Server) RevokeToken(token string) {
	s.store.revokeAccess(token)
}

// Start serves on addr until ctx is cancelled.
func (s *Server) Start(ctx context.Context, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.server = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.ComponentInfo(componentMock, "Mock API listening",
		zap.String("addr", listener.Addr().String()),
		zap.String("prefix", s.prefix),
	)

	go func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.logger.ComponentError(componentMock, "Mock API server error", zap.Error(err))
		}
	}()

	if s.limiter != nil {
		s.limiter.StartCleanup(ctx, limiterSweepInterval, limiterIdleTTL)
	}

	<-ctx.Done()
	return s.Stop()
}

// Stop gracefully stops the server.
func (s *Server) Stop() error {
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		s.logger.ComponentError(componentMock, "Mock API shutdown error", zap.Error(err))
		return err
	}
	s.logger.ComponentInfo(componentMock, "Mock API stopped")
	return nil
}

type userKey struct{}

type tokenKey struct{}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := httputil.BearerToken(r.Header)
		if !ok {
			httputil.WriteError(w, http.StatusUnauthorized, "Token não fornecido")
			return
		}
		u, ok := s.store.userForToken(token)
		if !ok {
			httputil.WriteError(w, http.StatusUnauthorized, "Token inválido ou expirado")
			return
		}
		ctx := context.WithValue(r.Context(), userKey{}, u)
		ctx = context.WithValue(ctx, tokenKey{}, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func currentUser(r *http.Request) *User {
	u, _ := r.Context().Value(userKey{}).(*User)
	return u
}

func currentToken(r *http.Request) string {
	t, _ := r.Context().Value(tokenKey{}).(string)
	return t
}
