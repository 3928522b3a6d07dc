package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/identity-service/internal/api/metrics"
	"github.com/99minutos/identity-service/internal/core/domain"
	"github.com/99minutos/identity-service/internal/core/ports"
)

// LoginLimiter throttles login attempts per userId (Redis).
type LoginLimiter interface {
	Allow(ctx context.Context, userID string) (bool, error)
	Reset(ctx context.Context, userID string) error
}

// AuditPublisher hands directory events to the audit pipeline without blocking.
type AuditPublisher interface {
	Publish(event domain.UserEvent)
}

// dummyPassword is hashed once so that logins for unknown users pay the same
// bcrypt cost as logins with a wrong password.
const dummyPassword = "identity-service/timing-equalizer"

// AuthService implements registration, login and role management.
type AuthService struct {
	users   ports.UserRepository
	hasher  ports.PasswordHasher
	tokens  ports.TokenService
	limiter LoginLimiter
	audit   AuditPublisher
	log     zerolog.Logger
	now     func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService wires the auth flow. limiter and audit may be nil.
func NewAuthService(
	users ports.UserRepository,
	hasher ports.PasswordHasher,
	tokens ports.TokenService,
	limiter LoginLimiter,
	audit AuditPublisher,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:   users,
		hasher:  hasher,
		tokens:  tokens,
		limiter: limiter,
		audit:   audit,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Register validates the profile, hashes the password and persists a new user
// with role "user". A duplicate userId or email yields domain.ErrUserExists.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	in.UserID = strings.TrimSpace(in.UserID)
	in.Name = strings.TrimSpace(in.Name)
	in.Email = domain.NormalizeEmail(in.Email)

	var missing []string
	if in.UserID == "" {
		missing = append(missing, "userId")
	}
	if in.Name == "" {
		missing = append(missing, "name")
	}
	if in.Email == "" {
		missing = append(missing, "email")
	}
	if in.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
		return nil, fmt.Errorf("%w: missing %s", domain.ErrValidation, strings.Join(missing, ", "))
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
		} else {
			metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		}
		return nil, fmt.Errorf("register: %w", err)
	}

	user := &domain.User{
		UserID:       in.UserID,
		Name:         in.Name,
		Email:        in.Email,
		Phone:        strings.TrimSpace(in.Phone),
		Address:      strings.TrimSpace(in.Address),
		PasswordHash: hash,
		Role:         domain.RoleUser,
		EntryDate:    s.now(),
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			metrics.RegistrationsTotal.WithLabelValues("conflict").Inc()
			s.log.Info().Str("user_id", in.UserID).Msg("registration rejected: user already exists")
			return nil, err
		}
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("register: %w", err)
	}

	metrics.RegistrationsTotal.WithLabelValues("created").Inc()
	s.log.Info().Str("user_id", created.UserID).Msg("user registered")
	s.publish(domain.UserEvent{UserID: created.UserID, Type: domain.EventUserRegistered, Role: created.Role})

	return created, nil
}

// Login checks the credentials and returns a fresh token. Unknown users and
// wrong passwords both yield domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, userID, password string) (*ports.AuthResult, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" || password == "" {
		metrics.LoginsTotal.WithLabelValues("bad_password").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	if s.limiter != nil {
		allowed, err := s.limiter.Allow(ctx, userID)
		switch {
		case err != nil:
			s.log.Warn().Err(err).Str("user_id", userID).Msg("login limiter unavailable, allowing attempt")
		case !allowed:
			metrics.LoginsTotal.WithLabelValues("throttled").Inc()
			s.log.Warn().Str("user_id", userID).Msg("login throttled")
			return nil, domain.ErrTooManyAttempts
		}
	}

	user, err := s.users.FindOne(ctx, ports.UserFilter{UserID: userID})
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.hasher.Verify(password, s.timingHash())
			metrics.LoginsTotal.WithLabelValues("unknown_user").Inc()
			s.log.Warn().Str("user_id", userID).Msg("login failed: user not found")
			return nil, domain.ErrInvalidCredentials
		}
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("login: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		metrics.LoginsTotal.WithLabelValues("bad_password").Inc()
		s.log.Warn().Str("user_id", userID).Msg("login failed: password mismatch")
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.UserID, user.Role)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("login: issue token: %w", err)
	}

	if s.limiter != nil {
		if err := s.limiter.Reset(ctx, userID); err != nil {
			s.log.Warn().Err(err).Str("user_id", userID).Msg("failed to reset login attempts")
		}
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	metrics.TokensIssuedTotal.WithLabelValues("login").Inc()
	s.log.Info().Str("user_id", user.UserID).Str("role", string(user.Role)).Msg("login succeeded")

	return &ports.AuthResult{Token: token, Role: user.Role}, nil
}

// ChangeRole sets a new role on the user and returns a token carrying it.
// Tokens issued earlier keep their original role until they expire.
func (s *AuthService) ChangeRole(ctx context.Context, userID, newRole string) (*ports.AuthResult, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: missing userId", domain.ErrValidation)
	}
	role, err := domain.ParseRole(newRole)
	if err != nil {
		return nil, err
	}

	user, err := s.users.UpdateRole(ctx, userID, role)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("change role: %w", err)
	}

	token, err := s.tokens.Issue(user.UserID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("change role: issue token: %w", err)
	}

	metrics.RoleChangesTotal.WithLabelValues(string(user.Role)).Inc()
	metrics.TokensIssuedTotal.WithLabelValues("role_change").Inc()
	s.log.Info().Str("user_id", user.UserID).Str("role", string(user.Role)).Msg("role changed")
	s.publish(domain.UserEvent{UserID: user.UserID, Type: domain.EventRoleChanged, Role: user.Role})

	return &ports.AuthResult{Token: token, Role: user.Role}, nil
}

// CheckRole verifies the token and returns the role it carries.
func (s *AuthService) CheckRole(token string) (domain.Role, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		if errors.Is(err, domain.ErrTokenExpired) {
			metrics.TokenVerificationsTotal.WithLabelValues("expired").Inc()
		} else {
			metrics.TokenVerificationsTotal.WithLabelValues("invalid").Inc()
		}
		return "", err
	}
	metrics.TokenVerificationsTotal.WithLabelValues("valid").Inc()
	return claims.Role, nil
}

func (s *AuthService) timingHash() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash(dummyPassword)
		if err != nil {
			s.log.Error().Err(err).Msg("failed to compute timing hash")
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}

func (s *AuthService) publish(event domain.UserEvent) {
	if s.audit == nil {
		return
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = s.now()
	}
	s.audit.Publish(event)
}
