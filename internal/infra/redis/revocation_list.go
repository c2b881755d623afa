package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationList stores revoked token ids as keys that expire together with the token:
//
//	SET quizbank:revoked:{tokenID} 1 EX <remaining lifetime>
type RevocationList struct {
	client *redis.Client
	clock  func() time.Time
}

func NewRevocationList(client *redis.Client) *RevocationList {
	return &RevocationList{client: client, clock: time.Now}
}

func (l *RevocationList) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	var ttl time.Duration
	if !until.IsZero() {
		ttl = until.Sub(l.clock())
		if ttl <= 0 {
			return nil
		}
	}
	return l.client.Set(ctx, l.key(tokenID), "1", ttl).Err()
}

func (l *RevocationList) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := l.client.Exists(ctx, l.key(tokenID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (l *RevocationList) key(tokenID string) string {
	return "quizbank:revoked:" + tokenID
}
