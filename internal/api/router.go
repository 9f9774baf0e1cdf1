// internal/api/router.go
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"nairapay/internal/api/handler"
	"nairapay/internal/api/middleware"
	"nairapay/internal/service"
)

// NewRouter sets up and returns a new HTTP router.
func NewRouter(authHandler *handler.AuthHandler, walletHandler *handler.WalletHandler, authService service.AuthService, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middlewares
	r.Use(chimw.RequestID)                       // Add a request ID to the context
	r.Use(chimw.RealIP)                          // Use the real IP address
	r.Use(chimw.Logger)                          // Log HTTP requests
	r.Use(chimw.Recoverer)                       // Recover from panics and return 500
	r.Use(chimw.Timeout(handler.DefaultTimeout)) // Request-scoped timeout; expiry rolls back, never half-commits

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// Public auth endpoints
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
	})

	// Authenticated endpoints: the Authenticator puts the actor identity
	// into the request context, which every core operation consumes.
	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticator(authService))

		r.Get("/wallet", walletHandler.GetWallet)
		r.Post("/transfers", walletHandler.Transfer)
		r.Get("/transactions", walletHandler.GetTransactionHistory)
		r.Put("/profile", authHandler.UpdateProfile)
	})

	return r
}
