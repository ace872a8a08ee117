package memory

import (
	"context"
	"fmt"
	"sync"

	domain "github.com/storefronthq/storefront/internal/domain/user"
)

// UserRepository is a mutex-guarded document store for users. Usernames and
// emails are unique; Mutate serializes basket and order-history updates per
// record.
type UserRepository struct {
	mu        sync.RWMutex
	users     map[string]*domain.User
	usernames map[string]string
	emails    map[string]string
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		users:     make(map[string]*domain.User),
		usernames: make(map[string]string),
		emails:    make(map[string]string),
	}
}

func (r *UserRepository) Insert(ctx context.Context, user *domain.User) error {
	_ = ctx
	if user == nil || user.ID == "" {
		return fmt.Errorf("user repository: id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.usernames[user.Username]; exists {
		return domain.ErrConflict
	}
	if _, exists := r.emails[user.Email]; exists {
		return domain.ErrConflict
	}

	r.users[user.ID] = user.Clone()
	r.usernames[user.Username] = user.ID
	r.emails[user.Email] = user.ID
	return nil
}

func (r *UserRepository) Get(ctx context.Context, id string) (*domain.User, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return user.Clone(), nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.usernames[username]
	if !ok {
		return nil, domain.ErrNotFound
	}
	user, ok := r.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return user.Clone(), nil
}

func (r *UserRepository) Mutate(ctx context.Context, id string, fn func(*domain.User) error) (*domain.User, error) {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}

	working := stored.Clone()
	if err := fn(working); err != nil {
		return nil, err
	}
	r.users[id] = working
	return working.Clone(), nil
}

func (r *UserRepository) MutateOrderBySession(ctx context.Context, sessionID string, fn func(*domain.Order) error) error {
	_ = ctx
	if sessionID == "" {
		return domain.ErrOrderNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for id, stored := range r.users {
		if stored.OrderBySession(sessionID) == nil {
			continue
		}
		working := stored.Clone()
		if err := fn(working.OrderBySession(sessionID)); err != nil {
			return err
		}
		r.users[id] = working
		return nil
	}
	return domain.ErrOrderNotFound
}
