package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/avatarctic/auth-workflow/internal/core/domain/user"
	"github.com/avatarctic/auth-workflow/internal/core/ports"
	"github.com/avatarctic/auth-workflow/internal/infrastructure/db"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// Utility helpers
func cacheSetSilently(c ports.Cache, ctx context.Context, key string, v any, ttl time.Duration) {
	if c == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = c.Set(ctx, key, b, ttl)
}

func cacheGet[T any](c ports.Cache, ctx context.Context, key string) (*T, bool) {
	if c == nil {
		return nil, false
	}
	b, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		return nil, false
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, false
	}
	return &v, true
}

// cachedUser keeps the password hash, which user.User hides from JSON.
type cachedUser struct {
	user.User
	PasswordHash string `json:"password_hash"`
}

func toCached(u *user.User) cachedUser {
	return cachedUser{User: *u, PasswordHash: u.PasswordHash}
}

func (c cachedUser) toUser() *user.User {
	u := c.User
	u.PasswordHash = c.PasswordHash
	return &u
}

func userIDKey(id uuid.UUID) string { return "user:id:" + id.String() }

// CachingUserRepository decorates a UserRepository with cache-aside on GetByID.
// Lookups by email always go to the inner repository so login sees fresh data.
// Reads inside a transaction bypass the cache, and invalidation is repeated
// once the transaction commits.
type CachingUserRepository struct {
	inner ports.UserRepository
	cache ports.Cache
	ttl   time.Duration
	sf    singleflight.Group
}

func NewCachingUserRepository(inner ports.UserRepository, cache ports.Cache, ttl time.Duration) ports.UserRepository {
	return &CachingUserRepository{inner: inner, cache: cache, ttl: ttl}
}

func (c *CachingUserRepository) Create(ctx context.Context, u *user.User) error {
	return c.inner.Create(ctx, u)
}

func (c *CachingUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	if db.InTx(ctx) {
		return c.inner.GetByID(ctx, id)
	}

	key := userIDKey(id)
	if v, ok := cacheGet[cachedUser](c.cache, ctx, key); ok {
		return v.toUser(), nil
	}

	// The shared load must not inherit one caller's cancellation.
	loadCtx := context.WithoutCancel(ctx)
	res, err, _ := c.sf.Do(key, func() (any, error) {
		u, err := c.inner.GetByID(loadCtx, id)
		if err != nil {
			return nil, err
		}
		cacheSetSilently(c.cache, loadCtx, key, toCached(u), c.ttl)
		return u, nil
	})
	if err != nil {
		return nil, err
	}
	u, ok := res.(*user.User)
	if !ok {
		return nil, fmt.Errorf("unexpected type from singleflight result")
	}
	// Callers may mutate the result; never hand out the shared pointer.
	cp := *u
	return &cp, nil
}

func (c *CachingUserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return c.inner.GetByEmail(ctx, email)
}

func (c *CachingUserRepository) Update(ctx context.Context, u *user.User) error {
	if err := c.inner.Update(ctx, u); err != nil {
		return err
	}
	c.invalidate(ctx, u.ID)
	return nil
}

func (c *CachingUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := c.inner.Delete(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx, id)
	return nil
}

func (c *CachingUserRepository) invalidate(ctx context.Context, id uuid.UUID) {
	if c.cache == nil {
		return
	}
	key := userIDKey(id)
	_ = c.cache.Delete(ctx, key)
	// a concurrent reader may re-cache the pre-commit row before the tx commits
	db.AfterCommit(ctx, func(ctx context.Context) {
		_ = c.cache.Delete(context.WithoutCancel(ctx), key)
	})
}
