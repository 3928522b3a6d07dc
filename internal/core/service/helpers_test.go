package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/99minutos/identity-service/internal/core/domain"
	"github.com/99minutos/identity-service/internal/core/ports"
	"github.com/99minutos/identity-service/internal/infrastructure/db/memory"
	"github.com/99minutos/identity-service/internal/infrastructure/security"
)

const testSecret = "test-secret"

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type recordingAudit struct {
	mu     sync.Mutex
	events []domain.UserEvent
}

func (a *recordingAudit) Publish(e domain.UserEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, e)
}

func (a *recordingAudit) types() []domain.UserEventType {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]domain.UserEventType, 0, len(a.events))
	for _, e := range a.events {
		out = append(out, e.Type)
	}
	return out
}

type stubLimiter struct {
	allow    bool
	allowErr error
	resets   []string
}

func (l *stubLimiter) Allow(_ context.Context, _ string) (bool, error) {
	return l.allow, l.allowErr
}

func (l *stubLimiter) Reset(_ context.Context, userID string) error {
	l.resets = append(l.resets, userID)
	return nil
}

// countingHasher wraps a real hasher and counts Verify calls.
type countingHasher struct {
	ports.PasswordHasher
	mu       sync.Mutex
	verifies int
}

func (h *countingHasher) Verify(password, hash string) bool {
	h.mu.Lock()
	h.verifies++
	h.mu.Unlock()
	return h.PasswordHasher.Verify(password, hash)
}

// failingRepo returns err from every call.
type failingRepo struct {
	err error
}

func (r *failingRepo) Create(context.Context, *domain.User) (*domain.User, error) { return nil, r.err }
func (r *failingRepo) FindByUserID(context.Context, string) (*domain.User, error) {
	return nil, r.err
}
func (r *failingRepo) FindOne(context.Context, ports.UserFilter) (*domain.User, error) {
	return nil, r.err
}
func (r *failingRepo) List(context.Context) ([]*domain.User, error) { return nil, r.err }
func (r *failingRepo) UpdateFields(context.Context, string, domain.UserPatch) (*domain.User, error) {
	return nil, r.err
}
func (r *failingRepo) UpdateRole(context.Context, string, domain.Role) (*domain.User, error) {
	return nil, r.err
}
func (r *failingRepo) Delete(context.Context, string) error { return r.err }

var errStoreDown = errors.New("connection refused")

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

func newTokenService(t *testing.T, opts ...security.Option) *security.TokenService {
	t.Helper()
	ts, err := security.NewTokenService(testSecret, "", opts...)
	if err != nil {
		t.Fatalf("token service: %v", err)
	}
	return ts
}

func newHasher() *countingHasher {
	return &countingHasher{PasswordHasher: security.NewBcryptHasher(bcrypt.MinCost)}
}

func registerInput(userID, email string) ports.RegisterInput {
	return ports.RegisterInput{
		UserID:   userID,
		Name:     "Test " + userID,
		Email:    email,
		Phone:    "555-0100",
		Password: "s3cret-pass",
	}
}

func newMemoryRepo() *memory.UserRepository {
	return memory.NewUserRepository()
}
