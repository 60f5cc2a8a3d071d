package cache

import (
	"context"
	"log/slog"
)

// SafeInvalidatePattern invalidates a cache pattern, logging instead of failing
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// SafeDelete deletes cache keys, logging instead of failing
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// SafeSet stores a value, logging instead of failing
func SafeSet(ctx context.Context, helper *CacheHelper, key string, value interface{}, cfg CacheConfig) {
	if err := helper.Set(ctx, key, value, cfg.TTL); err != nil {
		slog.ErrorContext(ctx, "Failed to set cache key",
			"error", err,
			"key", key)
	}
}
