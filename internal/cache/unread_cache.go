package cache

import (
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// UnreadTotalTTL keeps stale unread badges short-lived even when an
// invalidation is missed.
const UnreadTotalTTL = 1 * time.Minute

// UnreadCache holds per-user unread totals. All methods degrade to cache
// misses when Redis is not configured.
type UnreadCache struct {
	redis *RedisCache
}

func NewUnreadCache(redis *RedisCache) *UnreadCache {
	return &UnreadCache{redis: redis}
}

func unreadKey(userID uint) string {
	return fmt.Sprintf("unread:total:%d", userID)
}

// GetTotal retrieves a cached unread total.
func (uc *UnreadCache) GetTotal(userID uint) (int64, bool) {
	if uc == nil || uc.redis == nil {
		return 0, false
	}
	data, err := uc.redis.Get(unreadKey(userID))
	if err != nil || data == nil {
		return 0, false
	}
	var total int64
	if err := msgpack.Unmarshal(data, &total); err != nil {
		return 0, false
	}
	return total, true
}

// SetTotal caches an unread total.
func (uc *UnreadCache) SetTotal(userID uint, total int64) error {
	if uc == nil || uc.redis == nil {
		return nil
	}
	data, err := msgpack.Marshal(total)
	if err != nil {
		return err
	}
	return uc.redis.Set(unreadKey(userID), data, UnreadTotalTTL)
}

// Invalidate drops the cached total for a user.
func (uc *UnreadCache) Invalidate(userID uint) {
	if uc == nil || uc.redis == nil {
		return
	}
	_ = uc.redis.Delete(unreadKey(userID))
}
