package policy

import (
	"context"
	"sync"
	"time"
)

// CachedActorResolver wraps an ActorResolver with TTL-based caching.
// Errors, ErrUnknownActor included, are never cached.
type CachedActorResolver struct {
	inner ActorResolver
	ttl   time.Duration
	now   func() time.Time

	mu    sync.RWMutex
	cache map[uint]cachedActor
}

type cachedActor struct {
	actor     Actor
	expiresAt time.Time
}

func NewCachedActorResolver(inner ActorResolver, ttl time.Duration) *CachedActorResolver {
	return &CachedActorResolver{
		inner: inner,
		ttl:   ttl,
		now:   time.Now,
		cache: make(map[uint]cachedActor),
	}
}

func (r *CachedActorResolver) Resolve(ctx context.Context, userID uint) (Actor, error) {
	r.mu.RLock()
	entry, ok := r.cache[userID]
	r.mu.RUnlock()
	if ok && r.now().Before(entry.expiresAt) {
		return entry.actor, nil
	}

	actor, err := r.inner.Resolve(ctx, userID)
	if err != nil {
		r.Invalidate(userID)
		return Actor{}, err
	}

	r.mu.Lock()
	r.cache[userID] = cachedActor{actor: actor, expiresAt: r.now().Add(r.ttl)}
	r.mu.Unlock()
	return actor, nil
}

// Invalidate drops the cached actor of userID.
func (r *CachedActorResolver) Invalidate(userID uint) {
	r.mu.Lock()
	delete(r.cache, userID)
	r.mu.Unlock()
}

// InvalidateAll clears the cache. Call it when profile permissions change.
func (r *CachedActorResolver) InvalidateAll() {
	r.mu.Lock()
	r.cache = make(map[uint]cachedActor)
	r.mu.Unlock()
}
