package ports

import (
	"context"

	"github.com/99minutos/identity-service/internal/core/domain"
)

// UserService covers directory maintenance outside the authentication flow.
type UserService interface {
	ListUsers(ctx context.Context) ([]*domain.User, error)
	UpdateUser(ctx context.Context, userID string, patch domain.UserPatch) (*domain.User, error)
	DeleteUser(ctx context.Context, userID string) error
}
