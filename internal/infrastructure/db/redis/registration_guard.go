package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultGuardTTL = 15 * time.Second

// RegistrationGuard holds a short-lived lock per email while an account is
// being created, so two registrations of one email cannot interleave across
// the client and vendor collections. The TTL bounds a lock whose holder died.
// Key format: register:lock:<email>
type RegistrationGuard struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRegistrationGuard(client *redis.Client, ttl time.Duration) *RegistrationGuard {
	if ttl <= 0 {
		ttl = defaultGuardTTL
	}
	return &RegistrationGuard{client: client, ttl: ttl}
}

// Acquire reports false when another registration holds the email.
func (g *RegistrationGuard) Acquire(ctx context.Context, email string) (bool, error) {
	ok, err := g.client.SetNX(ctx, g.key(email), "1", g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire registration guard: %w", err)
	}
	return ok, nil
}

func (g *RegistrationGuard) Release(ctx context.Context, email string) error {
	if err := g.client.Del(ctx, g.key(email)).Err(); err != nil {
		return fmt.Errorf("release registration guard: %w", err)
	}
	return nil
}

func (g *RegistrationGuard) key(email string) string {
	return "register:lock:" + email
}
