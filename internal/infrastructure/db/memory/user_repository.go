// Package memory holds an in-process user directory with the same contract as
// the MongoDB one. Both uniqueness checks and the insert happen under a single
// write lock.
//
// It is a test double: only service and router tests import it.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/99minutos/identity-service/internal/core/domain"
	"github.com/99minutos/identity-service/internal/core/ports"
)

type UserRepository struct {
	mu      sync.RWMutex
	byID    map[string]domain.User
	byEmail map[string]string // email -> userId
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:    make(map[string]domain.User),
		byEmail: make(map[string]string),
	}
}

func (r *UserRepository) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := domain.NormalizeEmail(user.Email)
	if _, exists := r.byID[user.UserID]; exists {
		return nil, domain.ErrUserExists
	}
	if _, exists := r.byEmail[email]; exists {
		return nil, domain.ErrUserExists
	}

	u := *user
	u.Email = email
	r.byID[u.UserID] = u
	r.byEmail[email] = u.UserID
	return &u, nil
}

func (r *UserRepository) FindByUserID(_ context.Context, userID string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (r *UserRepository) FindOne(ctx context.Context, filter ports.UserFilter) (*domain.User, error) {
	if filter.UserID != "" {
		if u, err := r.FindByUserID(ctx, filter.UserID); err == nil {
			return u, nil
		}
	}
	if filter.Email != "" {
		r.mu.RLock()
		id, ok := r.byEmail[domain.NormalizeEmail(filter.Email)]
		r.mu.RUnlock()
		if ok {
			return r.FindByUserID(ctx, id)
		}
	}
	return nil, domain.ErrUserNotFound
}

// List returns a snapshot ordered by entry date, then userId.
func (r *UserRepository) List(_ context.Context) ([]*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]*domain.User, 0, len(r.byID))
	for _, u := range r.byID {
		u := u
		users = append(users, &u)
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].EntryDate.Equal(users[j].EntryDate) {
			return users[i].UserID < users[j].UserID
		}
		return users[i].EntryDate.Before(users[j].EntryDate)
	})
	return users, nil
}

func (r *UserRepository) UpdateFields(_ context.Context, userID string, patch domain.UserPatch) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}

	oldEmail := u.Email
	if patch.Email != nil {
		email := domain.NormalizeEmail(*patch.Email)
		if owner, taken := r.byEmail[email]; taken && owner != userID {
			return nil, domain.ErrUserExists
		}
		patch.Email = &email
	}
	patch.Apply(&u)

	if u.Email != oldEmail {
		delete(r.byEmail, oldEmail)
		r.byEmail[u.Email] = userID
	}
	r.byID[userID] = u
	return &u, nil
}

func (r *UserRepository) UpdateRole(_ context.Context, userID string, role domain.Role) (*domain.User, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrValidation, role)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u.Role = role
	r.byID[userID] = u
	return &u, nil
}

func (r *UserRepository) Delete(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	delete(r.byID, userID)
	delete(r.byEmail, u.Email)
	return nil
}
