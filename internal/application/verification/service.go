package verification

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"strings"
	"sync"

	"github.com/go-mobile-verification/internal/domain"
	"go.uber.org/zap"
)

const (
	// Placeholder marks where the code is substituted into a message template.
	Placeholder = "%d"
	// DefaultMessagePrefix is the literal text of the built-in template.
	DefaultMessagePrefix = "کد تایید برای ورود:"
	// DefaultMessageTemplate is used until SetMessageTemplate is called.
	DefaultMessageTemplate = DefaultMessagePrefix + "\n" + Placeholder
)

// Store persists and checks (phone, code) pairs.
type Store interface {
	IsValid(ctx context.Context, phone domain.PhoneNumber, code domain.VerificationCode) (bool, error)
	Save(ctx context.Context, phone domain.PhoneNumber, code domain.VerificationCode) error
}

// Notifier delivers a rendered message to a phone number.
type Notifier interface {
	Send(ctx context.Context, phone domain.PhoneNumber, message string) error
}

// Config holds the collaborators and optional settings for a Service.
type Config struct {
	Store    Store
	Notifier Notifier
	Logger   *zap.Logger
	// MessageTemplate overrides DefaultMessageTemplate when non-empty.
	MessageTemplate string
	// Random defaults to crypto/rand.Reader.
	Random io.Reader
}

// Service issues and validates five-digit verification codes.
// It is safe for concurrent use, including concurrent template changes.
type Service struct {
	store    Store
	notifier Notifier
	log      *zap.Logger
	random   io.Reader

	mu       sync.RWMutex
	template string
}

func NewService(cfg Config) (*Service, error) {
	if cfg.Store == nil || cfg.Notifier == nil {
		return nil, fmt.Errorf("verification service: store and notifier are required")
	}
	s := &Service{
		store:    cfg.Store,
		notifier: cfg.Notifier,
		log:      cfg.Logger,
		random:   cfg.Random,
		template: DefaultMessageTemplate,
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.random == nil {
		s.random = rand.Reader
	}
	if cfg.MessageTemplate != "" {
		if err := s.SetMessageTemplate(cfg.MessageTemplate); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// IssueCode generates a code, stores it and sends it to phone. The code is
// only ever visible in the stored record and the outbound message.
func (s *Service) IssueCode(ctx context.Context, phone domain.PhoneNumber) error {
	if phone.IsZero() {
		return fmt.Errorf("issue code: empty phone number: %w", domain.ErrBadRequest)
	}
	code, err := s.generateCode()
	if err != nil {
		return err
	}
	if err := s.store.Save(ctx, phone, code); err != nil {
		return fmt.Errorf("issue code: %w", err)
	}
	if err := s.notifier.Send(ctx, phone, s.render(code)); err != nil {
		s.log.Warn("verification code stored but not delivered",
			zap.String("phone", phone.Masked()), zap.Error(err))
		return fmt.Errorf("deliver code: %w", err)
	}
	s.log.Info("verification code issued", zap.String("phone", phone.Masked()))
	return nil
}

// IsCodeValid reports whether code was issued to phone and has not expired.
// Codes without exactly five digits, and the zero PhoneNumber, are rejected
// without a store lookup.
func (s *Service) IsCodeValid(ctx context.Context, phone domain.PhoneNumber, code domain.VerificationCode) (bool, error) {
	if phone.IsZero() || !code.IsWellFormed() {
		return false, nil
	}
	return s.store.IsValid(ctx, phone, code)
}

// SetMessageTemplate replaces the outbound message template. The previous
// template is kept when tmpl has no placeholder.
func (s *Service) SetMessageTemplate(tmpl string) error {
	if !strings.Contains(tmpl, Placeholder) {
		return fmt.Errorf("template %q: %w", tmpl, domain.ErrMissingPlaceholder)
	}
	s.mu.Lock()
	s.template = tmpl
	s.mu.Unlock()
	return nil
}

// MessageTemplate returns the current template.
func (s *Service) MessageTemplate() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.template
}

// render substitutes the first placeholder only.
func (s *Service) render(code domain.VerificationCode) string {
	return strings.Replace(s.MessageTemplate(), Placeholder, code.String(), 1)
}

var codeSpan = big.NewInt(int64(domain.MaxVerificationCode - domain.MinVerificationCode + 1))

func (s *Service) generateCode() (domain.VerificationCode, error) {
	n, err := rand.Int(s.random, codeSpan)
	if err != nil {
		return 0, fmt.Errorf("generate code: %w", err)
	}
	return domain.MinVerificationCode + domain.VerificationCode(n.Int64()), nil
}
