package ports

import "github.com/99minutos/identity-service/internal/core/domain"

// PasswordHasher hashes credentials with a salted, deliberately slow function.
type PasswordHasher interface {
	Hash(password string) (string, error)
	// Verify reports whether password matches hash. A mismatch or a malformed
	// hash yields false, never an error.
	Verify(password, hash string) bool
}

// TokenService mints and checks signed identity tokens.
type TokenService interface {
	Issue(userID string, role domain.Role) (string, error)
	// Verify returns domain.ErrTokenExpired for a well-signed token past its
	// expiry and domain.ErrTokenInvalid for anything else it rejects.
	Verify(token string) (*domain.Claims, error)
}
