package ws

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/judemcastillo/social-media-clone/internal/models"
	"github.com/judemcastillo/social-media-clone/internal/service"
)

// Client->server event names. The set is closed: Deserialize dispatches over
// it with a fixed switch, so an unhandled event is a compile-away
// impossibility rather than a stringly-typed surprise at runtime.
const (
	EventRoomJoin    = "room:join"
	EventMessageSend = "message:send"
	EventTypingStart = "typing:start"
	EventTypingStop  = "typing:stop"
)

// Server->client event names.
const (
	EventRoomJoined      = "room:joined"
	EventMessageNew      = "message:new"
	EventTyping          = "typing"
	EventPresenceOnline  = "presence:online"
	EventPresenceOffline = "presence:offline"
	EventError           = "error"
)

// Envelope is the wire format in both directions.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// InboundEvent is a parsed client->server event.
type InboundEvent interface {
	Type() string
	Handle(ctx *Context) error
}

type RoomJoin struct {
	ConversationID uint `json:"conversation_id"`
}

func (e *RoomJoin) Type() string { return EventRoomJoin }

type MessageSend struct {
	ConversationID uint                      `json:"conversation_id"`
	Content        string                    `json:"content"`
	Attachments    []service.AttachmentInput `json:"attachments"`
}

func (e *MessageSend) Type() string { return EventMessageSend }

type TypingStart struct {
	ConversationID uint `json:"conversation_id"`
}

func (e *TypingStart) Type() string { return EventTypingStart }

type TypingStop struct {
	ConversationID uint `json:"conversation_id"`
}

func (e *TypingStop) Type() string { return EventTypingStop }

// Deserialize parses one inbound frame into its typed event.
func Deserialize(data []byte) (InboundEvent, error) {
	var envelope Envelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, err
	}

	var event InboundEvent
	switch envelope.Type {
	case EventRoomJoin:
		event = &RoomJoin{}
	case EventMessageSend:
		event = &MessageSend{}
	case EventTypingStart:
		event = &TypingStart{}
	case EventTypingStop:
		event = &TypingStop{}
	default:
		return nil, fmt.Errorf("unknown event type: %q", envelope.Type)
	}

	if len(envelope.Payload) > 0 {
		if err := json.Unmarshal(envelope.Payload, event); err != nil {
			return nil, err
		}
	}
	return event, nil
}

// Outbound event constructors. Marshaling these cannot fail for the types
// involved; a failure is a programming error worth a log line, not a reason
// to kill a connection.

func marshalEvent(eventType string, payload any) []byte {
	raw, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Failed to marshal %s payload: %v", eventType, err)
		raw = []byte("{}")
	}
	data, err := json.Marshal(Envelope{Type: eventType, Payload: raw})
	if err != nil {
		log.Printf("Failed to marshal %s envelope: %v", eventType, err)
		return []byte(`{"type":"` + eventType + `","payload":{}}`)
	}
	return data
}

func RoomJoinedEvent(conversationID uint) []byte {
	return marshalEvent(EventRoomJoined, map[string]uint{"conversation_id": conversationID})
}

func NewMessageEvent(msg models.MessageResponse) []byte {
	return marshalEvent(EventMessageNew, map[string]any{"message": msg})
}

func TypingEvent(userID uint, typing bool) []byte {
	return marshalEvent(EventTyping, map[string]any{"user_id": userID, "typing": typing})
}

func PresenceEvent(userID uint, online bool) []byte {
	eventType := EventPresenceOnline
	if !online {
		eventType = EventPresenceOffline
	}
	return marshalEvent(eventType, map[string]uint{"user_id": userID})
}

func ErrorEvent(message string) []byte {
	return marshalEvent(EventError, map[string]string{"message": message})
}
