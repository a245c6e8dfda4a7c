package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	dom "github.com/pearcepallen/virtual-card/internal/domain"

	"github.com/redis/go-redis/v9"
)

const (
	keyByEmail  = "user:email:"
	keyListPage = "user:list:"
)

// UserCache caches by-email lookups and list pages in Redis.
type UserCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewUserCache returns a new UserCache.
func NewUserCache(rdb *redis.Client, ttl time.Duration) *UserCache {
	return &UserCache{rdb: rdb, ttl: ttl}
}

// GetByEmail returns the cached user or nil on miss.
func (c *UserCache) GetByEmail(ctx context.Context, email string) (*dom.User, error) {
	b, err := c.rdb.Get(ctx, keyByEmail+normalizeEmail(email)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var u dom.User
	if err := json.Unmarshal(b, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// SetByEmail stores the user under its email key.
func (c *UserCache) SetByEmail(ctx context.Context, u dom.User) error {
	b, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, keyByEmail+normalizeEmail(u.Email), b, c.ttl).Err()
}

// GetListPage returns the cached page or nil on miss.
func (c *UserCache) GetListPage(ctx context.Context, offset, limit int) ([]dom.User, error) {
	b, err := c.rdb.Get(ctx, listKey(offset, limit)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var list []dom.User
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// SetListPage stores a list page.
func (c *UserCache) SetListPage(ctx context.Context, offset, limit int, list []dom.User) error {
	b, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, listKey(offset, limit), b, c.ttl).Err()
}

// InvalidateAll removes all cached users and list pages (invalidation on write).
func (c *UserCache) InvalidateAll(ctx context.Context) error {
	for _, pattern := range []string{keyByEmail + "*", keyListPage + "*"} {
		iter := c.rdb.Scan(ctx, 0, pattern, 100).Iterator()
		for iter.Next(ctx) {
			if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
				return err
			}
		}
		if err := iter.Err(); err != nil {
			return err
		}
	}
	return nil
}

func listKey(offset, limit int) string {
	return fmt.Sprintf("%s%d:%d", keyListPage, offset, limit)
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}
