package auth

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	dErrors "conocida/pkg/domain-errors"
)

// StepUpHeader carries the short-lived session token issued after PIN entry.
const StepUpHeader = "X-Stepup-Token"

type contextKeyStepUp struct{}

// WithStepUpVerified marks the context as having passed the PIN gate.
func WithStepUpVerified(ctx context.Context) context.Context {
	return context.WithValue(ctx, contextKeyStepUp{}, true)
}

// StepUpVerified reports whether the PIN gate was passed for this request.
func StepUpVerified(ctx context.Context) bool {
	verified, _ := ctx.Value(contextKeyStepUp{}).(bool)
	return verified
}

// SessionStore keeps live step-up sessions with expiry.
type SessionStore interface {
	Put(ctx context.Context, token string, ttl time.Duration) error
	Exists(ctx context.Context, token string) (bool, error)
}

// MemorySessionStore is the fallback when Redis is not configured.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]time.Time
	clock    func() time.Time
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]time.Time),
		clock:    time.Now,
	}
}

// WithClock overrides the clock for expiry tests.
func (s *MemorySessionStore) WithClock(clock func() time.Time) *MemorySessionStore {
	if clock != nil {
		s.clock = clock
	}
	return s
}

func (s *MemorySessionStore) Put(_ context.Context, token string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = s.clock().Add(ttl)
	return nil
}

func (s *MemorySessionStore) Exists(_ context.Context, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	expiry, ok := s.sessions[token]
	if !ok {
		return false, nil
	}
	if s.clock().After(expiry) {
		delete(s.sessions, token)
		return false, nil
	}
	return true, nil
}

const stepUpKeyPrefix = "stepup:session:"

// RedisSessionStore shares step-up sessions across instances. SET with TTL
// makes expiry the store's problem.
type RedisSessionStore struct {
	client *redis.Client
}

func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

func (s *RedisSessionStore) Put(ctx context.Context, token string, ttl time.Duration) error {
	return s.client.Set(ctx, stepUpKeyPrefix+token, "1", ttl).Err()
}

func (s *RedisSessionStore) Exists(ctx context.Context, token string) (bool, error) {
	err := s.client.Get(ctx, stepUpKeyPrefix+token).Err()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// StepUpService verifies the admin PIN and issues session tokens.
type StepUpService struct {
	pinHash []byte
	store   SessionStore
	ttl     time.Duration
}

// NewStepUpService takes a bcrypt hash of the PIN. Use HashPIN at startup
// when only a plaintext dev PIN is configured.
func NewStepUpService(pinHash []byte, store SessionStore, ttl time.Duration) *StepUpService {
	return &StepUpService{pinHash: pinHash, store: store, ttl: ttl}
}

// HashPIN bcrypt-hashes a plaintext PIN for dev configurations.
func HashPIN(pin string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
}

// Verify checks the PIN and, on success, issues a session token that expires
// after the configured TTL. A wrong PIN is Unauthorized with no session.
func (s *StepUpService) Verify(ctx context.Context, pin string) (string, error) {
	if err := bcrypt.CompareHashAndPassword(s.pinHash, []byte(pin)); err != nil {
		return "", dErrors.New(dErrors.CodeUnauthorized, "incorrect PIN")
	}
	token := uuid.NewString()
	if err := s.store.Put(ctx, token, s.ttl); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeUnavailable, "step-up session store error")
	}
	return token, nil
}

// Check reports whether the token names a live session.
func (s *StepUpService) Check(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}
	return s.store.Exists(ctx, token)
}

// RequireStepUp gates a route subtree on a live step-up session and marks the
// context for the service-level authorizer.
func RequireStepUp(svc *StepUpService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, err := svc.Check(r.Context(), r.Header.Get(StepUpHeader))
			if err != nil || !ok {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"step-up session required"}`))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithStepUpVerified(r.Context())))
		})
	}
}
