package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/identity-service/internal/core/domain"
	"github.com/99minutos/identity-service/internal/core/ports"
)

// UserService handles directory maintenance: listing, profile updates and deletion.
type UserService struct {
	users ports.UserRepository
	audit AuditPublisher
	log   zerolog.Logger
}

func NewUserService(users ports.UserRepository, audit AuditPublisher, log zerolog.Logger) *UserService {
	return &UserService{users: users, audit: audit, log: log}
}

// ListUsers returns every user. An empty directory is reported as
// domain.ErrUserNotFound.
func (s *UserService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	if len(users) == 0 {
		return nil, domain.ErrUserNotFound
	}
	return users, nil
}

// UpdateUser applies the allow-listed profile fields. An empty patch returns
// the current record unchanged.
func (s *UserService) UpdateUser(ctx context.Context, userID string, patch domain.UserPatch) (*domain.User, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: missing userId", domain.ErrValidation)
	}
	if patch.Email != nil {
		email := domain.NormalizeEmail(*patch.Email)
		if email == "" {
			return nil, fmt.Errorf("%w: email cannot be empty", domain.ErrValidation)
		}
		patch.Email = &email
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", domain.ErrValidation)
	}

	if patch.IsEmpty() {
		return s.users.FindByUserID(ctx, userID)
	}

	user, err := s.users.UpdateFields(ctx, userID, patch)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) || errors.Is(err, domain.ErrUserExists) {
			return nil, err
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	fields := patchFields(patch)
	s.log.Info().Str("user_id", userID).Strs("fields", fields).Msg("user updated")
	s.publish(domain.UserEvent{UserID: userID, Type: domain.EventUserUpdated, Fields: fields})

	return user, nil
}

// DeleteUser removes the user permanently.
func (s *UserService) DeleteUser(ctx context.Context, userID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return fmt.Errorf("%w: missing userId", domain.ErrValidation)
	}
	if err := s.users.Delete(ctx, userID); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return err
		}
		return fmt.Errorf("delete user: %w", err)
	}

	s.log.Info().Str("user_id", userID).Msg("user deleted")
	s.publish(domain.UserEvent{UserID: userID, Type: domain.EventUserDeleted})
	return nil
}

func (s *UserService) publish(event domain.UserEvent) {
	if s.audit == nil {
		return
	}
	event.OccurredAt = time.Now().UTC()
	s.audit.Publish(event)
}

func patchFields(p domain.UserPatch) []string {
	var fields []string
	if p.Name != nil {
		fields = append(fields, "name")
	}
	if p.Email != nil {
		fields = append(fields, "email")
	}
	if p.Phone != nil {
		fields = append(fields, "phone")
	}
	if p.Address != nil {
		fields = append(fields, "address")
	}
	return fields
}
