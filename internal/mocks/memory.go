package mocks

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/avatarctic/auth-workflow/internal/core/domain/token"
	"github.com/avatarctic/auth-workflow/internal/core/domain/user"
	"github.com/google/uuid"
)

// MemoryUserRepository is an in-memory UserRepository for tests.
type MemoryUserRepository struct {
	mu    sync.Mutex
	users map[uuid.UUID]user.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[uuid.UUID]user.User)}
}

func (r *MemoryUserRepository) Create(_ context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return user.ErrEmailTaken
		}
	}
	r.users[u.ID] = *u
	return nil
}

func (r *MemoryUserRepository) GetByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return &u, nil
}

func (r *MemoryUserRepository) GetByEmail(_ context.Context, email string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, user.ErrNotFound
}

func (r *MemoryUserRepository) Update(_ context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return user.ErrNotFound
	}
	r.users[u.ID] = *u
	return nil
}

func (r *MemoryUserRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return user.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

// MemoryTokenRepository is an in-memory TokenRepository for tests.
type MemoryTokenRepository struct {
	mu     sync.Mutex
	tokens map[uuid.UUID]token.Token
}

func NewMemoryTokenRepository() *MemoryTokenRepository {
	return &MemoryTokenRepository{tokens: make(map[uuid.UUID]token.Token)}
}

func (r *MemoryTokenRepository) Create(_ context.Context, t *token.Token) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *t
	if stored.Hash == "" {
		stored.Hash = token.HashValue(stored.Value)
	}
	stored.Value = ""
	r.tokens[stored.ID] = stored
	return nil
}

func (r *MemoryTokenRepository) FindOne(_ context.Context, filter token.Filter) (*token.Token, error) {
	if !filter.IsLookup() {
		return nil, token.ErrNotFound
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tokens {
		if filter.Matches(&t) {
			return &t, nil
		}
	}
	return nil, token.ErrNotFound
}

func (r *MemoryTokenRepository) DeleteOne(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tokens[id]; !ok {
		return token.ErrNotFound
	}
	delete(r.tokens, id)
	return nil
}

func (r *MemoryTokenRepository) DeleteMany(_ context.Context, filter token.Filter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, t := range r.tokens {
		if filter.Matches(&t) {
			delete(r.tokens, id)
			n++
		}
	}
	return n, nil
}

func (r *MemoryTokenRepository) DeleteExpired(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	var n int64
	for id, t := range r.tokens {
		if t.ExpiresAt.Before(now) {
			delete(r.tokens, id)
			n++
		}
	}
	return n, nil
}

// Count returns how many stored tokens match filter.
func (r *MemoryTokenRepository) Count(filter token.Filter) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, t := range r.tokens {
		if filter.Matches(&t) {
			n++
		}
	}
	return n
}
