package handlers

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/judemcastillo/social-media-clone/internal/cache"
	"github.com/judemcastillo/social-media-clone/internal/handlers/ws"
	"github.com/judemcastillo/social-media-clone/internal/service"
)

const pongTimeout = 90 * time.Second

type WebSocketHandler struct {
	hub         *ws.Hub
	membership  *service.MembershipService
	messages    *service.MessageService
	unreadCache *cache.UnreadCache
	convCache   *cache.ConversationCache
}

func NewWebSocketHandler(
	hub *ws.Hub,
	membership *service.MembershipService,
	messages *service.MessageService,
	unreadCache *cache.UnreadCache,
	convCache *cache.ConversationCache,
) *WebSocketHandler {
	return &WebSocketHandler{
		hub:         hub,
		membership:  membership,
		messages:    messages,
		unreadCache: unreadCache,
		convCache:   convCache,
	}
}

// GetHub returns the hub instance (useful for delivery from REST handlers).
func (h *WebSocketHandler) GetHub() *ws.Hub {
	return h.hub
}

// HandleWebSocket runs one connection. Authentication and the guest gate
// already happened in middleware before the upgrade.
func (h *WebSocketHandler) HandleWebSocket(c *websocket.Conn) {
	userID := c.Locals("userID").(uint)
	role, _ := c.Locals("role").(string)
	supportsGzip := c.Query("gzip") == "1" || c.Headers("X-Supports-Gzip") == "1"

	client := ws.NewClient(userID, role, c, supportsGzip)
	h.hub.Register(client)
	defer h.hub.Unregister(client)

	_ = c.SetReadDeadline(time.Now().Add(pongTimeout))
	c.SetPongHandler(func(string) error {
		return c.SetReadDeadline(time.Now().Add(pongTimeout))
	})

	ctx := &ws.Context{
		UserID:      userID,
		Role:        role,
		Client:      client,
		Hub:         h.hub,
		Membership:  h.membership,
		Messages:    h.messages,
		UnreadCache: h.unreadCache,
		ConvCache:   h.convCache,
	}

	for {
		messageType, data, err := c.ReadMessage()
		if err != nil {
			break
		}

		if messageType == websocket.BinaryMessage {
			data, err = ws.Decompress(data)
			if err != nil {
				log.Printf("Failed to decompress frame from user %d: %v", userID, err)
				_ = client.Send(ws.ErrorEvent("Invalid compressed frame"))
				continue
			}
		}

		event, err := ws.Deserialize(data)
		if err != nil {
			_ = client.Send(ws.ErrorEvent("Invalid event"))
			continue
		}

		if err := event.Handle(ctx); err != nil {
			log.Printf("Event %s from user %d failed: %v", event.Type(), userID, err)
			_ = client.Send(ws.ErrorEvent(clientErrorMessage(err)))
		}
	}
}

// clientErrorMessage keeps internal failures out of the error event while
// letting validation and authorization denials through as-is.
func clientErrorMessage(err error) string {
	for _, sentinel := range []error{
		service.ErrForbidden,
		service.ErrNotFound,
		service.ErrEmptyMessage,
		service.ErrMessageTooLong,
		service.ErrInvalidAttachment,
		service.ErrGuestsForbidden,
		service.ErrInvalidTarget,
		service.ErrNotAPublicRoom,
		service.ErrNotAMember,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return "Failed to process event"
}
