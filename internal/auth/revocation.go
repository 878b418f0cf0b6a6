package auth

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const revocationKeyPrefix = "auth:revoked:"

// RevocationList tracks logged-out tokens by jti until their natural expiry.
// A nil client disables revocation checks (logout degrades to client-side
// token discard).
type RevocationList struct {
	client *redis.Client
}

// NewRevocationList wraps a redis client.
func NewRevocationList(client *redis.Client) *RevocationList {
	return &RevocationList{client: client}
}

// Revoke marks the token id revoked for ttl. Non-positive ttl means the
// token already expired and there is nothing to track.
func (r *RevocationList) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if r == nil || r.client == nil || ttl <= 0 {
		return nil
	}
	return r.client.Set(ctx, revocationKeyPrefix+jti, "1", ttl).Err()
}

// IsRevoked reports whether the token id was revoked.
func (r *RevocationList) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if r == nil || r.client == nil {
		return false, nil
	}
	n, err := r.client.Exists(ctx, revocationKeyPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
