package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/identity-service/internal/core/domain"
	"github.com/99minutos/identity-service/internal/core/ports"
	"github.com/99minutos/identity-service/internal/infrastructure/security"
)

func newAuth(t *testing.T) (*AuthService, *countingHasher, *recordingAudit) {
	t.Helper()
	hasher := newHasher()
	audit := &recordingAudit{}
	svc := NewAuthService(newMemoryRepo(), hasher, newTokenService(t), nil, audit, zerolog.Nop())
	return svc, hasher, audit
}

func TestAuthService_Register_Success(t *testing.T) {
	svc, hasher, audit := newAuth(t)

	user, err := svc.Register(context.Background(), registerInput("alice", "Alice@Example.com"))
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.PasswordHash == "" || user.PasswordHash == "s3cret-pass" {
		t.Fatalf("expected password to be hashed, got %q", user.PasswordHash)
	}
	if !hasher.Verify("s3cret-pass", user.PasswordHash) {
		t.Fatalf("stored hash does not match password")
	}
	if user.Role != domain.RoleUser {
		t.Fatalf("expected default role user, got %s", user.Role)
	}
	if user.Email != "alice@example.com" {
		t.Fatalf("expected normalized email, got %s", user.Email)
	}
	if user.EntryDate.IsZero() {
		t.Fatalf("expected entry date to be set")
	}
	if got := audit.types(); len(got) != 1 || got[0] != domain.EventUserRegistered {
		t.Fatalf("expected one user_registered event, got %v", got)
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	svc, _, _ := newAuth(t)

	cases := map[string]func(*ports.RegisterInput){
		"missing userId":   func(in *ports.RegisterInput) { in.UserID = "" },
		"missing name":     func(in *ports.RegisterInput) { in.Name = "  " },
		"missing email":    func(in *ports.RegisterInput) { in.Email = "" },
		"missing password": func(in *ports.RegisterInput) { in.Password = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := registerInput("bob", "bob@example.com")
			mutate(&in)

			if _, err := svc.Register(context.Background(), in); !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	svc, _, _ := newAuth(t)

	if _, err := svc.Register(context.Background(), registerInput("bob", "bob@example.com")); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := svc.Register(context.Background(), registerInput("bob", "other@example.com")); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists for duplicate userId, got %v", err)
	}
	if _, err := svc.Register(context.Background(), registerInput("bobby", "BOB@example.com")); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists for duplicate email, got %v", err)
	}
}

func TestAuthService_Register_ConcurrentDuplicate(t *testing.T) {
	svc, _, _ := newAuth(t)

	var (
		wg    sync.WaitGroup
		start = make(chan struct{})
		errs  = make([]error, 2)
	)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = svc.Register(context.Background(), registerInput("race", "race@example.com"))
		}(i)
	}
	close(start)
	wg.Wait()

	var ok, conflict int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrUserExists):
			conflict++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || conflict != 1 {
		t.Fatalf("expected one success and one conflict, got %d and %d", ok, conflict)
	}
}

func TestAuthService_Register_StoreFailure(t *testing.T) {
	svc := NewAuthService(&failingRepo{err: errStoreDown}, newHasher(), newTokenService(t), nil, nil, zerolog.Nop())

	_, err := svc.Register(context.Background(), registerInput("carl", "carl@example.com"))
	if !errors.Is(err, errStoreDown) {
		t.Fatalf("expected store error to be wrapped, got %v", err)
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	tokens := newTokenService(t)
	limiter := &stubLimiter{allow: true}
	svc := NewAuthService(newMemoryRepo(), newHasher(), tokens, limiter, nil, zerolog.Nop())

	if _, err := svc.Register(context.Background(), registerInput("carol", "carol@example.com")); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	res, err := svc.Login(context.Background(), "carol", "s3cret-pass")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if res.Token == "" || res.Role != domain.RoleUser {
		t.Fatalf("unexpected result: %+v", res)
	}

	claims, err := tokens.Verify(res.Token)
	if err != nil {
		t.Fatalf("token invalid: %v", err)
	}
	if claims.UserID != "carol" || claims.Role != domain.RoleUser {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if len(limiter.resets) != 1 || limiter.resets[0] != "carol" {
		t.Fatalf("expected attempts to be reset on success, got %v", limiter.resets)
	}
}

func TestAuthService_Login_FailuresAreIndistinguishable(t *testing.T) {
	svc, hasher, _ := newAuth(t)
	if _, err := svc.Register(context.Background(), registerInput("dave", "dave@example.com")); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	_, wrongPass := svc.Login(context.Background(), "dave", "badpass")
	before := hasher.verifies
	_, unknown := svc.Login(context.Background(), "ghost", "badpass")

	if !errors.Is(wrongPass, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", wrongPass)
	}
	if !errors.Is(unknown, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", unknown)
	}
	if wrongPass.Error() != unknown.Error() {
		t.Fatalf("error messages differ: %q vs %q", wrongPass, unknown)
	}
	if hasher.verifies != before+1 {
		t.Fatalf("expected a password comparison for unknown user")
	}
}

func TestAuthService_Login_Throttled(t *testing.T) {
	repo := newMemoryRepo()
	limiter := &stubLimiter{allow: false}
	svc := NewAuthService(repo, newHasher(), newTokenService(t), limiter, nil, zerolog.Nop())

	if _, err := svc.Login(context.Background(), "erin", "whatever"); !errors.Is(err, domain.ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}
}

func TestAuthService_Login_LimiterUnavailableFailsOpen(t *testing.T) {
	limiter := &stubLimiter{allowErr: errors.New("redis: connection refused")}
	svc := NewAuthService(newMemoryRepo(), newHasher(), newTokenService(t), limiter, nil, zerolog.Nop())

	if _, err := svc.Register(context.Background(), registerInput("fay", "fay@example.com")); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if _, err := svc.Login(context.Background(), "fay", "s3cret-pass"); err != nil {
		t.Fatalf("expected login to proceed without limiter, got %v", err)
	}
}

func TestAuthService_Login_StoreFailure(t *testing.T) {
	svc := NewAuthService(&failingRepo{err: errStoreDown}, newHasher(), newTokenService(t), nil, nil, zerolog.Nop())

	_, err := svc.Login(context.Background(), "gus", "pw")
	if !errors.Is(err, errStoreDown) || errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}

func TestAuthService_ChangeRole(t *testing.T) {
	tokens := newTokenService(t)
	audit := &recordingAudit{}
	svc := NewAuthService(newMemoryRepo(), newHasher(), tokens, nil, audit, zerolog.Nop())

	if _, err := svc.Register(context.Background(), registerInput("hank", "hank@example.com")); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	before, err := svc.Login(context.Background(), "hank", "s3cret-pass")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	res, err := svc.ChangeRole(context.Background(), "hank", "Admin")
	if err != nil {
		t.Fatalf("change role failed: %v", err)
	}
	if res.Role != domain.RoleAdmin {
		t.Fatalf("expected admin, got %s", res.Role)
	}

	newRole, err := svc.CheckRole(res.Token)
	if err != nil || newRole != domain.RoleAdmin {
		t.Fatalf("new token: role=%s err=%v", newRole, err)
	}
	oldRole, err := svc.CheckRole(before.Token)
	if err != nil || oldRole != domain.RoleUser {
		t.Fatalf("old token should still carry user role: role=%s err=%v", oldRole, err)
	}

	got := audit.types()
	if len(got) != 2 || got[1] != domain.EventRoleChanged {
		t.Fatalf("expected role_changed event, got %v", got)
	}
}

func TestAuthService_ChangeRole_Errors(t *testing.T) {
	svc, _, _ := newAuth(t)

	if _, err := svc.ChangeRole(context.Background(), "nobody", "admin"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := svc.ChangeRole(context.Background(), "nobody", "superuser"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for unknown role, got %v", err)
	}
	if _, err := svc.ChangeRole(context.Background(), "", "admin"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for missing userId, got %v", err)
	}
}

func TestAuthService_CheckRole_Expired(t *testing.T) {
	past := time.Now().Add(-2 * time.Hour)
	issuer := newTokenService(t, security.WithClock(func() time.Time { return past }))
	token, err := issuer.Issue("ivy", domain.RoleDriver)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	svc, _, _ := newAuth(t)
	if _, err := svc.CheckRole(token); !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
	if _, err := svc.CheckRole("not-a-token"); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}
