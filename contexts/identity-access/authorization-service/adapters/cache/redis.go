package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"commonwealth/contexts/identity-access/authorization-service/ports"

	"github.com/redis/go-redis/v9"
)

const permissionKeyPrefix = "authz:permissions:"

// Connect initializes a Redis client from a redis:// URL or host:port.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	var client *redis.Client
	if strings.HasPrefix(redisURL, "redis://") || strings.HasPrefix(redisURL, "rediss://") {
		opt, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		client = redis.NewClient(opt)
	} else {
		client = redis.NewClient(&redis.Options{Addr: redisURL})
	}
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// RedisPermissionCache keeps effective permission sets shared between the
// API and worker processes, so an invalidation after a role change is seen
// by both.
type RedisPermissionCache struct {
	client *redis.Client
}

func NewRedisPermissionCache(client *redis.Client) *RedisPermissionCache {
	return &RedisPermissionCache{client: client}
}

type cachedPermissions struct {
	Permissions []string  `json:"permissions"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func (c *RedisPermissionCache) Get(ctx context.Context, userID string, now time.Time) ([]string, bool, error) {
	raw, err := c.client.Get(ctx, permissionKeyPrefix+userID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var entry cachedPermissions
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, false, err
	}
	if !entry.ExpiresAt.After(now) {
		return nil, false, nil
	}
	return entry.Permissions, true, nil
}

func (c *RedisPermissionCache) Set(ctx context.Context, userID string, permissions []string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	payload, err := json.Marshal(cachedPermissions{
		Permissions: append([]string{}, permissions...),
		ExpiresAt:   expiresAt.UTC(),
	})
	if err != nil {
		return err
	}
	return c.client.Set(ctx, permissionKeyPrefix+userID, payload, ttl).Err()
}

func (c *RedisPermissionCache) Invalidate(ctx context.Context, userID string) error {
	return c.client.Del(ctx, permissionKeyPrefix+userID).Err()
}

var _ ports.PermissionCache = (*RedisPermissionCache)(nil)
