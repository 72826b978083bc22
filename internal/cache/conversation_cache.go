package cache

import (
	"fmt"
	"time"

	"github.com/judemcastillo/social-media-clone/internal/service"
	"github.com/vmihailenco/msgpack/v5"
)

// TTL constants for conversation-level caches
const (
	ConversationListTTL = 5 * time.Minute
	FeaturedRoomsTTL    = 2 * time.Minute
)

// ConversationCache holds per-user conversation lists and featured-room
// listings. Nil-safe like the rest of the cache layer.
type ConversationCache struct {
	redis *RedisCache
}

func NewConversationCache(redis *RedisCache) *ConversationCache {
	return &ConversationCache{redis: redis}
}

func listKey(userID uint) string {
	return fmt.Sprintf("conv:list:%d", userID)
}

func featuredKey(userID uint) string {
	return fmt.Sprintf("conv:featured:%d", userID)
}

// GetList retrieves a cached conversation list.
func (cc *ConversationCache) GetList(userID uint) ([]service.ConversationSummary, bool) {
	if cc == nil || cc.redis == nil {
		return nil, false
	}
	data, err := cc.redis.Get(listKey(userID))
	if err != nil || data == nil {
		return nil, false
	}
	var summaries []service.ConversationSummary
	if err := msgpack.Unmarshal(data, &summaries); err != nil {
		return nil, false
	}
	return summaries, true
}

// SetList caches a conversation list.
func (cc *ConversationCache) SetList(userID uint, summaries []service.ConversationSummary) error {
	if cc == nil || cc.redis == nil {
		return nil
	}
	data, err := msgpack.Marshal(summaries)
	if err != nil {
		return err
	}
	return cc.redis.Set(listKey(userID), data, ConversationListTTL)
}

// InvalidateList drops the cached conversation list for a user.
func (cc *ConversationCache) InvalidateList(userID uint) {
	if cc == nil || cc.redis == nil {
		return
	}
	_ = cc.redis.Delete(listKey(userID))
}

// GetFeatured retrieves cached featured rooms for a viewer.
func (cc *ConversationCache) GetFeatured(userID uint) ([]service.FeaturedRoom, bool) {
	if cc == nil || cc.redis == nil {
		return nil, false
	}
	data, err := cc.redis.Get(featuredKey(userID))
	if err != nil || data == nil {
		return nil, false
	}
	var rooms []service.FeaturedRoom
	if err := msgpack.Unmarshal(data, &rooms); err != nil {
		return nil, false
	}
	return rooms, true
}

// SetFeatured caches featured rooms for a viewer.
func (cc *ConversationCache) SetFeatured(userID uint, rooms []service.FeaturedRoom) error {
	if cc == nil || cc.redis == nil {
		return nil
	}
	data, err := msgpack.Marshal(rooms)
	if err != nil {
		return err
	}
	return cc.redis.Set(featuredKey(userID), data, FeaturedRoomsTTL)
}
