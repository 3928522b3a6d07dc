package ports

import (
	"context"

	"github.com/99minutos/identity-service/internal/core/domain"
)

// UserFilter selects a user by any of its unique keys. Non-empty fields are
// OR-ed together; an all-empty filter matches nothing.
type UserFilter struct {
	UserID string
	Email  string
}

// IsEmpty reports whether the filter has no criteria.
func (f UserFilter) IsEmpty() bool {
	return f.UserID == "" && f.Email == ""
}

// UserRepository is the persistent user directory.
//
// Create must enforce userId and email uniqueness atomically in the backing
// store and report a collision as domain.ErrUserExists. Lookups that match
// nothing return domain.ErrUserNotFound.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByUserID(ctx context.Context, userID string) (*domain.User, error)
	FindOne(ctx context.Context, filter UserFilter) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	// UpdateFields applies only the allow-listed profile fields in patch.
	UpdateFields(ctx context.Context, userID string, patch domain.UserPatch) (*domain.User, error)
	UpdateRole(ctx context.Context, userID string, role domain.Role) (*domain.User, error)
	Delete(ctx context.Context, userID string) error
}
