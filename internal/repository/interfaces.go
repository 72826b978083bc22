package repository

import (
	"github.com/judemcastillo/social-media-clone/internal/models"
)

// UserRepositoryInterface defines the contract for user lookups. Users are
// written by the identity service; this subsystem only reads them.
type UserRepositoryInterface interface {
	FindByID(id uint) (*models.User, error)
	// FilterEligible returns the subset of ids that exist and are not
	// transient (GUEST) accounts, preserving no particular order.
	FilterEligible(ids []uint) ([]uint, error)
}

// ConversationRepositoryInterface defines the contract for conversation rows.
type ConversationRepositoryInterface interface {
	Create(conv *models.Conversation) error
	FindByID(id uint) (*models.Conversation, error)
	FindByDirectKey(key string) (*models.Conversation, error)
	TouchUpdatedAt(id uint) error
	// ListForUser returns conversations the user has a participant row in,
	// plus all public rooms, newest activity first.
	ListForUser(userID uint) ([]models.Conversation, error)
	ListPublicByTitles(titles []string) ([]models.Conversation, error)
}

// ParticipantRepositoryInterface defines the contract for membership rows.
type ParticipantRepositoryInterface interface {
	Find(conversationID, userID uint) (*models.Participant, error)
	// ListActive returns non-LEFT participants with users preloaded,
	// earliest joiner first.
	ListActive(conversationID uint) ([]models.Participant, error)
	ListAll(conversationID uint) ([]models.Participant, error)
	// ActiveMemberIDs returns user ids of non-LEFT participants.
	ActiveMemberIDs(conversationID uint) ([]uint, error)
	// Upsert inserts the row or, on conflict of (conversation_id, user_id),
	// updates status, role and invited_by.
	Upsert(p *models.Participant) error
	SetStatus(conversationID, userID uint, status models.ParticipantStatus) error
	// PromoteThenLeave atomically promotes promoteUserID to ADMIN (when
	// non-nil) and flips leaverID to LEFT, in one transaction.
	PromoteThenLeave(conversationID uint, promoteUserID *uint, leaverID uint) error
	CountJoinedByConversations(conversationIDs []uint) (map[uint]int64, error)
}

// MessageRepositoryInterface defines the contract for message rows.
type MessageRepositoryInterface interface {
	// Create persists the message and its attachments as one unit.
	Create(message *models.Message) error
	FindByID(id uint) (*models.Message, error)
	// PageBefore returns up to limit messages of the conversation strictly
	// older than the cursor message (compound (created_at, id) seek; nil
	// cursor means newest first), ordered newest to oldest.
	PageBefore(conversationID uint, cursor *models.Message, limit int) ([]models.Message, error)
	// LatestPerConversation returns the newest message of each conversation.
	LatestPerConversation(conversationIDs []uint) (map[uint]models.Message, error)
	CountByConversations(conversationIDs []uint) (map[uint]int64, error)
}

// ReadReceiptRepositoryInterface defines the contract for read receipts and
// the unread aggregates computed from them.
type ReadReceiptRepositoryInterface interface {
	// UnreadTotal counts messages authored by others, without a receipt for
	// the user, in conversations the user participates in or that are public.
	UnreadTotal(userID uint) (int64, error)
	UnreadByConversations(userID uint, conversationIDs []uint) (map[uint]int64, error)
	// ListUnreadMessageIDs returns ids of unread messages in the
	// conversation authored by others, capped at limit.
	ListUnreadMessageIDs(userID, conversationID uint, limit int) ([]uint, error)
	// InsertBatch inserts receipts, silently skipping ones that exist.
	InsertBatch(userID uint, messageIDs []uint) error
}
