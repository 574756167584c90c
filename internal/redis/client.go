package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

type Client struct {
	*redis.Client
}

func NewClient(redisURL string) (*Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &Client{client}, nil
}

func (c *Client) Close() error {
	return c.Client.Close()
}

// VerificationCodeKey is the key holding the pending email verification code.
func VerificationCodeKey(email string) string {
	return fmt.Sprintf("verify_code:%s", email)
}

// LoginAttemptKey is the key counting login attempts per client IP.
func LoginAttemptKey(ip string) string {
	return fmt.Sprintf("login_attempts:%s", ip)
}
