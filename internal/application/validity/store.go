package validity

import (
	"context"
	"fmt"
	"time"

	"github.com/go-mobile-verification/internal/domain"
	"github.com/go-mobile-verification/internal/pkg/digest"
)

const (
	// DefaultTTL is how long a saved (phone, code) pair stays valid.
	DefaultTTL = 120 * time.Second
	// DefaultKeyPrefix namespaces validity records in a shared key/value store.
	DefaultKeyPrefix = "mobile_verification_"

	sentinel = "1"
)

// KeyValueStore is the minimal expiring key/value contract the store needs.
// Get reports found=false for a missing or already-expired key.
type KeyValueStore interface {
	Set(ctx context.Context, key, value string) error
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
}

// ExpiringSetter is implemented by backends that can write a value and its
// expiration in a single call. Save prefers it over Set followed by Expire.
type ExpiringSetter interface {
	SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error
}

// Store tracks which (phone, code) pairs are currently valid.
type Store struct {
	kv     KeyValueStore
	ttl    time.Duration
	prefix string
	digest digest.Func
}

// Option configures a Store.
type Option func(*Store)

func WithTTL(ttl time.Duration) Option { return func(s *Store) { s.ttl = ttl } }

func WithKeyPrefix(prefix string) Option { return func(s *Store) { s.prefix = prefix } }

func WithDigest(d digest.Func) Option { return func(s *Store) { s.digest = d } }

// NewStore returns a Store with a 120 second TTL, the default key prefix and
// SHA-1 keys unless overridden. The TTL must be a positive whole number of
// seconds because backends expire keys at second granularity.
func NewStore(kv KeyValueStore, opts ...Option) (*Store, error) {
	if kv == nil {
		return nil, fmt.Errorf("validity store: nil key/value backend")
	}
	s := &Store{
		kv:     kv,
		ttl:    DefaultTTL,
		prefix: DefaultKeyPrefix,
		digest: digest.SHA1Hex,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.ttl < time.Second || s.ttl%time.Second != 0 {
		return nil, fmt.Errorf("validity store: ttl must be a positive whole number of seconds, got %s", s.ttl)
	}
	if s.digest == nil {
		return nil, fmt.Errorf("validity store: nil digest")
	}
	return s, nil
}

// TTL returns the configured record lifetime.
func (s *Store) TTL() time.Duration { return s.ttl }

// Key derives the record key for a pair.
func (s *Store) Key(phone domain.PhoneNumber, code domain.VerificationCode) string {
	return s.prefix + s.digest([]byte(phone.String()+code.String()))
}

// IsValid reports whether the pair was saved and has not yet expired.
// A missing record is not an error.
func (s *Store) IsValid(ctx context.Context, phone domain.PhoneNumber, code domain.VerificationCode) (bool, error) {
	v, found, err := s.kv.Get(ctx, s.Key(phone, code))
	if err != nil {
		return false, fmt.Errorf("lookup validity record: %w", err)
	}
	return found && truthy(v), nil
}

// Save marks the pair as valid for the configured TTL.
func (s *Store) Save(ctx context.Context, phone domain.PhoneNumber, code domain.VerificationCode) error {
	key := s.Key(phone, code)
	if setter, ok := s.kv.(ExpiringSetter); ok {
		if err := setter.SetWithTTL(ctx, key, sentinel, s.ttl); err != nil {
			return fmt.Errorf("save validity record: %w", err)
		}
		return nil
	}

	// Not atomic: a failure between the two calls leaves a key without expiry.
	if err := s.kv.Set(ctx, key, sentinel); err != nil {
		return fmt.Errorf("save validity record: %w", err)
	}
	if err := s.kv.Expire(ctx, key, s.ttl); err != nil {
		return fmt.Errorf("expire validity record: %w", err)
	}
	return nil
}

func truthy(v string) bool {
	return v != "" && v != "0"
}
