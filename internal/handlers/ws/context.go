package ws

import (
	"github.com/judemcastillo/social-media-clone/internal/cache"
	"github.com/judemcastillo/social-media-clone/internal/models"
	"github.com/judemcastillo/social-media-clone/internal/service"
)

// Context carries everything an inbound event needs to be processed.
type Context struct {
	UserID uint
	Role   string
	Client *Client
	Hub    *Hub

	Membership *service.MembershipService
	Messages   *service.MessageService

	UnreadCache *cache.UnreadCache
	ConvCache   *cache.ConversationCache
}

// Handle subscribes the connection to the conversation room after the
// membership gate. Re-joining an already-subscribed room is a no-op.
func (e *RoomJoin) Handle(ctx *Context) error {
	if _, err := ctx.Membership.AuthorizeRead(ctx.UserID, e.ConversationID); err != nil {
		return err
	}
	ctx.Hub.JoinRoom(e.ConversationID, ctx.Client)
	return ctx.Client.Send(RoomJoinedEvent(e.ConversationID))
}

// Handle persists and fans out the message. Delivery happens inside the
// message service; here we only invalidate the recipients' unread caches.
func (e *MessageSend) Handle(ctx *Context) error {
	if ctx.Role == models.RoleGuest {
		return service.ErrGuestsForbidden
	}
	_, memberIDs, err := ctx.Messages.Send(ctx.UserID, e.ConversationID, e.Content, e.Attachments)
	if err != nil {
		return err
	}
	invalidateAfterSend(ctx.UnreadCache, ctx.ConvCache, ctx.UserID, memberIDs)
	return nil
}

// Handle broadcasts a typing-on indicator to the room, excluding the typist.
// No persistence, no delivery guarantee.
func (e *TypingStart) Handle(ctx *Context) error {
	ctx.Hub.BroadcastRoom(e.ConversationID, TypingEvent(ctx.UserID, true), ctx.Client.ID)
	return nil
}

// Handle broadcasts a typing-off indicator to the room, excluding the typist.
func (e *TypingStop) Handle(ctx *Context) error {
	ctx.Hub.BroadcastRoom(e.ConversationID, TypingEvent(ctx.UserID, false), ctx.Client.ID)
	return nil
}

// invalidateAfterSend drops cached unread totals and conversation lists for
// everyone who just received a message, except the author's unread total
// (their own messages are never unread).
func invalidateAfterSend(unreadCache *cache.UnreadCache, convCache *cache.ConversationCache, authorID uint, memberIDs []uint) {
	for _, uid := range memberIDs {
		if uid != authorID {
			unreadCache.Invalidate(uid)
		}
		convCache.InvalidateList(uid)
	}
}
