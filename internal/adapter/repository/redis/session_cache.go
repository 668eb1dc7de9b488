package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sanad-org/sanad/internal/domain"
)

// SessionCache implements usecase.SessionCache. It keeps recently
// validated sessions keyed by token so the hot validation path can skip
// the database. Entries are short-lived and dropped eagerly on logout;
// expiry and revocation authority stays with the session store.
type SessionCache struct {
	client *redis.Client
	prefix string
}

// NewSessionCache creates a new SessionCache.
func NewSessionCache(client *redis.Client) *SessionCache {
	return &SessionCache{
		client: client,
		prefix: "session:",
	}
}

// Get retrieves the cached identity for a token. A miss returns
// (nil, nil).
func (c *SessionCache) Get(ctx context.Context, token string) (*domain.Identity, error) {
	raw, err := c.client.Get(ctx, c.prefix+token).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var identity domain.Identity
	if err := json.Unmarshal(raw, &identity); err != nil {
		// A corrupt entry behaves like a miss.
		return nil, nil
	}

	return &identity, nil
}

// Set stores the identity under the token with the given TTL.
func (c *SessionCache) Set(ctx context.Context, token string, identity *domain.Identity, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	raw, err := json.Marshal(identity)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, c.prefix+token, raw, ttl).Err()
}

// Delete drops the cached entry for a token.
func (c *SessionCache) Delete(ctx context.Context, token string) error {
	return c.client.Del(ctx, c.prefix+token).Err()
}
