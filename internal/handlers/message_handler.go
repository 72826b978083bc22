package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/judemcastillo/social-media-clone/internal/cache"
	"github.com/judemcastillo/social-media-clone/internal/httpx"
	"github.com/judemcastillo/social-media-clone/internal/service"
)

type MessageHandler struct {
	history     *service.HistoryService
	unread      *service.UnreadService
	unreadCache *cache.UnreadCache
	convCache   *cache.ConversationCache
}

func NewMessageHandler(history *service.HistoryService, unread *service.UnreadService, unreadCache *cache.UnreadCache, convCache *cache.ConversationCache) *MessageHandler {
	return &MessageHandler{history: history, unread: unread, unreadCache: unreadCache, convCache: convCache}
}

// GetMessages pages a conversation's history backwards from the cursor.
func (h *MessageHandler) GetMessages(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "auth_failed", "Missing user")
	}
	conversationID, err := c.ParamsInt("id")
	if err != nil || conversationID <= 0 {
		return httpx.BadRequest(c, "invalid_id", "Invalid conversation id")
	}

	cursor := uint(c.QueryInt("cursor", 0))
	limit := c.QueryInt("limit", 0)

	page, err := h.history.Page(userID, uint(conversationID), cursor, limit)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(page)
}

// GetDirectMessages pages the DM with a peer, creating the conversation
// if it does not exist yet.
func (h *MessageHandler) GetDirectMessages(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "auth_failed", "Missing user")
	}
	peerID, err := c.ParamsInt("peer_id")
	if err != nil || peerID <= 0 {
		return httpx.BadRequest(c, "invalid_id", "Invalid peer id")
	}

	cursor := uint(c.QueryInt("cursor", 0))
	limit := c.QueryInt("limit", 0)

	page, err := h.history.PageDirect(userID, uint(peerID), cursor, limit)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(page)
}

// MarkConversationRead records receipts for the viewer's unread messages
// in the conversation and reports how many were found.
func (h *MessageHandler) MarkConversationRead(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "auth_failed", "Missing user")
	}
	conversationID, err := c.ParamsInt("id")
	if err != nil || conversationID <= 0 {
		return httpx.BadRequest(c, "invalid_id", "Invalid conversation id")
	}

	count, err := h.unread.MarkRead(userID, uint(conversationID))
	if err != nil {
		return respondServiceError(c, err)
	}
	if count > 0 {
		h.unreadCache.Invalidate(userID)
		h.convCache.InvalidateList(userID)
	}
	return c.JSON(fiber.Map{"count": count})
}

// GetUnreadTotal reports the viewer's unread count across all eligible
// conversations.
func (h *MessageHandler) GetUnreadTotal(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "auth_failed", "Missing user")
	}

	if total, ok := h.unreadCache.GetTotal(userID); ok {
		return c.JSON(fiber.Map{"total": total})
	}

	total, err := h.unread.UnreadTotal(userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	_ = h.unreadCache.SetTotal(userID, total)
	return c.JSON(fiber.Map{"total": total})
}
