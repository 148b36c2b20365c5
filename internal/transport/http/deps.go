package http

import (
	"github.com/go-mobile-verification/internal/transport/http/handler"
	appmiddleware "github.com/go-mobile-verification/internal/transport/http/middleware"
	"go.uber.org/zap"
)

// Deps holds what the router needs from the composition root.
type Deps struct {
	Verification handler.VerificationService
	Logger       *zap.Logger

	// TokenVerifier guards the template routes; they are not mounted when nil.
	TokenVerifier appmiddleware.TokenVerifier

	// NotifierBreaker is nil when the notifier is not wrapped in a breaker.
	NotifierBreaker handler.BreakerState
}
