package service

import (
	"log"
	"strings"

	"github.com/judemcastillo/social-media-clone/internal/models"
	"github.com/judemcastillo/social-media-clone/internal/repository"
	"github.com/judemcastillo/social-media-clone/internal/validation"
)

// Broadcaster delivers a persisted message to live connections: once per
// connection subscribed to the conversation room, once per remaining live
// connection of each member. Implemented by the websocket hub.
type Broadcaster interface {
	BroadcastNewMessage(conversationID uint, memberIDs []uint, msg models.MessageResponse) int
}

// AttachmentInput is the client-supplied attachment metadata; bytes already
// live in object storage by the time a send arrives.
type AttachmentInput struct {
	URL    string `json:"url"`
	Type   string `json:"type"`
	Width  *int   `json:"width"`
	Height *int   `json:"height"`
	Size   *int64 `json:"size"`
}

// MessageService is the fan-out engine: authorize, persist as one unit, then
// best-effort deliver. Delivery problems never fail a send; the persisted row
// is the durability guarantee.
type MessageService struct {
	messageRepo     repository.MessageRepositoryInterface
	convRepo        repository.ConversationRepositoryInterface
	participantRepo repository.ParticipantRepositoryInterface
	membership      *MembershipService
	broadcaster     Broadcaster
}

func NewMessageService(
	messageRepo repository.MessageRepositoryInterface,
	convRepo repository.ConversationRepositoryInterface,
	participantRepo repository.ParticipantRepositoryInterface,
	membership *MembershipService,
	broadcaster Broadcaster,
) *MessageService {
	return &MessageService{
		messageRepo:     messageRepo,
		convRepo:        convRepo,
		participantRepo: participantRepo,
		membership:      membership,
		broadcaster:     broadcaster,
	}
}

// Send persists and fans out one message. Returns the hydrated message and
// the active member ids (the handler invalidates their unread caches).
func (s *MessageService) Send(authorID, conversationID uint, content string, attachments []AttachmentInput) (*models.Message, []uint, error) {
	if _, err := s.membership.AuthorizeWrite(authorID, conversationID); err != nil {
		return nil, nil, err
	}

	content = strings.TrimSpace(content)
	if !validation.ValidateMessageContent(content) {
		return nil, nil, ErrMessageTooLong
	}

	message := &models.Message{
		ConversationID: conversationID,
		AuthorID:       authorID,
		Content:        content,
	}
	for _, a := range attachments {
		if a.URL == "" {
			continue
		}
		if !validation.ValidateAttachmentType(a.Type) {
			return nil, nil, ErrInvalidAttachment
		}
		attachmentType := a.Type
		if attachmentType == "" {
			attachmentType = "image"
		}
		message.Attachments = append(message.Attachments, models.Attachment{
			URL:    a.URL,
			Type:   attachmentType,
			Width:  a.Width,
			Height: a.Height,
			Size:   a.Size,
		})
	}

	// Emptiness is judged after the attachment pass so that dropped
	// attachments (blank URLs) cannot smuggle through a blank message.
	if content == "" && len(message.Attachments) == 0 {
		return nil, nil, ErrEmptyMessage
	}

	if err := s.messageRepo.Create(message); err != nil {
		return nil, nil, err
	}
	if err := s.convRepo.TouchUpdatedAt(conversationID); err != nil {
		log.Printf("Failed to bump conversation %d updated_at: %v", conversationID, err)
	}

	loaded, err := s.messageRepo.FindByID(message.ID)
	if err != nil {
		// The row exists; fall back to what we have rather than failing the send.
		loaded = message
	}

	memberIDs, err := s.participantRepo.ActiveMemberIDs(conversationID)
	if err != nil {
		log.Printf("Failed to list members of conversation %d: %v", conversationID, err)
		memberIDs = nil
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastNewMessage(conversationID, memberIDs, loaded.ToResponse())
	}
	return loaded, memberIDs, nil
}
