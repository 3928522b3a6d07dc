package ports

import (
	"context"

	"github.com/99minutos/identity-service/internal/core/domain"
)

// RegisterInput is the profile submitted at registration.
type RegisterInput struct {
	UserID   string
	Name     string
	Email    string
	Phone    string
	Address  string
	Password string
}

// AuthResult is returned whenever a token is minted.
type AuthResult struct {
	Token string
	Role  domain.Role
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Login(ctx context.Context, userID, password string) (*AuthResult, error)
	ChangeRole(ctx context.Context, userID, newRole string) (*AuthResult, error)
	CheckRole(token string) (domain.Role, error)
}
