package breaker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-mobile-verification/internal/application/verification"
	"github.com/go-mobile-verification/internal/domain"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// Settings tune when the breaker opens and how long it stays open.
type Settings struct {
	Name        string
	MaxFailures uint32
	Timeout     time.Duration
}

// Notifier wraps another notifier in a circuit breaker. After MaxFailures
// consecutive send failures it fails fast with domain.ErrUnavailable until
// Timeout elapses, then lets a single probe through. It never retries.
type Notifier struct {
	next verification.Notifier
	cb   *gobreaker.CircuitBreaker
}

func NewNotifier(next verification.Notifier, s Settings, log *zap.Logger) *Notifier {
	if log == nil {
		log = zap.NewNop()
	}
	if s.MaxFailures == 0 {
		s.MaxFailures = 5
	}
	st := gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: 1,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= s.MaxFailures
		},
		// A cancelled caller says nothing about the gateway's health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warn("notifier circuit breaker state", zap.String("name", name), zap.String("from", from.String()), zap.String("to", to.String()))
		},
	}
	return &Notifier{next: next, cb: gobreaker.NewCircuitBreaker(st)}
}

func (n *Notifier) Send(ctx context.Context, phone domain.PhoneNumber, message string) error {
	_, err := n.cb.Execute(func() (interface{}, error) {
		return nil, n.next.Send(ctx, phone, message)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%s: %v: %w", n.cb.Name(), err, domain.ErrUnavailable)
	}
	return err
}

// State is the breaker state, served by the notifier health check.
func (n *Notifier) State() string {
	return n.cb.State().String()
}
