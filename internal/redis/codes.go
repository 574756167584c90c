package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// CodeStore keeps pending email verification codes. Codes expire on their
// own via TTL; a consumed code is deleted eagerly so it cannot be replayed.
type CodeStore struct {
	client *Client
}

func NewCodeStore(client *Client) *CodeStore {
	return &CodeStore{client: client}
}

func (s *CodeStore) Save(ctx context.Context, email, code string, ttl time.Duration) error {
	if err := s.client.Set(ctx, VerificationCodeKey(email), code, ttl).Err(); err != nil {
		return fmt.Errorf("save verification code: %w", err)
	}
	return nil
}

// Get returns the pending code for the email, or "" when none exists.
func (s *CodeStore) Get(ctx context.Context, email string) (string, error) {
	code, err := s.client.Get(ctx, VerificationCodeKey(email)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load verification code: %w", err)
	}
	return code, nil
}

func (s *CodeStore) Delete(ctx context.Context, email string) error {
	if err := s.client.Del(ctx, VerificationCodeKey(email)).Err(); err != nil {
		return fmt.Errorf("delete verification code: %w", err)
	}
	return nil
}
