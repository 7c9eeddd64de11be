package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"devlink/internal/middleware"

	"github.com/redis/go-redis/v9"
)

const (
	UserKeyPrefix          = "user:%d"
	PostKeyPrefix          = "post:%d"
	ProfileKeyPrefix       = "profile:user:%d"
	ProfileHandleKeyPrefix = "profile:handle:%s"
	ProfileListKey         = "profiles:all"
	PostListKey            = "posts:all"
)

const (
	UserTTL        = 5 * time.Minute
	PostTTL        = 30 * time.Minute
	ProfileTTL     = 10 * time.Minute
	ProfileListTTL = 2 * time.Minute
	PostListTTL    = 1 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func PostKey(postID uint) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

func ProfileKey(userID uint) string {
	return fmt.Sprintf(ProfileKeyPrefix, userID)
}

func ProfileHandleKey(handle string) string {
	return fmt.Sprintf(ProfileHandleKeyPrefix, handle)
}

// GetJSON attempts to get the key from Redis and unmarshal into dest.
// Returns (true, nil) if found and unmarshaled, (false, nil) if not found.
func GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if client == nil {
		return false, nil
	}
	s, err := client.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(s), dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON marshals v and sets the key with TTL.
func SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	if client == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return client.Set(ctx, key, b, ttl).Err()
}

// Aside tries Redis first, on miss it calls fetch (which should populate dest),
// then stores the result in Redis with ttl. fetch must write into dest.
func Aside(ctx context.Context, key string, dest any, ttl time.Duration, fetch func() error) error {
	found, err := GetJSON(ctx, key, dest)
	if err != nil {
		// A broken cache never fails the read path.
		found = false
	}
	prefix := key
	if i := strings.IndexByte(key, ':'); i > 0 {
		prefix = key[:i]
	}
	if found {
		middleware.CacheResults.WithLabelValues(prefix, "hit").Inc()
		return nil
	}
	middleware.CacheResults.WithLabelValues(prefix, "miss").Inc()

	if err := fetch(); err != nil {
		return err
	}

	// Store into cache (best-effort)
	_ = SetJSON(ctx, key, dest, ttl)
	return nil
}

func Invalidate(ctx context.Context, keys ...string) {
	if client != nil && len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidatePost(ctx context.Context, postID uint) {
	Invalidate(ctx, PostKey(postID), PostListKey)
}

// InvalidateProfile drops both lookup keys for a profile plus the list.
func InvalidateProfile(ctx context.Context, userID uint, handle string) {
	keys := []string{ProfileKey(userID), ProfileListKey}
	if handle != "" {
		keys = append(keys, ProfileHandleKey(handle))
	}
	Invalidate(ctx, keys...)
}
