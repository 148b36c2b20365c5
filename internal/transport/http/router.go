package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-mobile-verification/internal/config"
	"github.com/go-mobile-verification/internal/domain"
	"github.com/go-mobile-verification/internal/transport/http/handler"
	appmiddleware "github.com/go-mobile-verification/internal/transport/http/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router. ctx bounds the
// rate limiter's background sweep.
func NewRouter(ctx context.Context, cfg *config.Config, deps *Deps) http.Handler {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(appmiddleware.AccessLog(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	trusted, err := appmiddleware.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		log.Warn("ignoring invalid trusted proxies", zap.Error(err))
	}
	// 5 requests/second, burst of 10. Every issued code is a paid SMS.
	codesRL := appmiddleware.NewRateLimiter(ctx, rate.Limit(5), 10, trusted...)

	healthH := handler.NewHealthHandler(deps.NotifierBreaker)
	verificationH := handler.NewVerificationHandler(deps.Verification, log)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health-check/{action}", healthH.Ping)

		r.Route("/verification-codes", func(r chi.Router) {
			r.With(codesRL.Limit).Post("/", verificationH.Issue)
			r.With(codesRL.Limit).Post("/validate", verificationH.Validate)

			if deps.TokenVerifier == nil {
				log.Warn("no token verifier configured, template routes disabled")
				return
			}
			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.Auth(deps.TokenVerifier))
				r.Use(appmiddleware.RequireRole(domain.RoleAdmin))

				r.Get("/template", verificationH.GetTemplate)
				r.Put("/template", verificationH.PutTemplate)
			})
		})
	})

	return r
}
