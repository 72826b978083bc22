package models

import (
	"time"
)

// Message is immutable once created. Ordering key for pagination is
// (created_at, id) descending; id breaks ties between same-timestamp rows.
type Message struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `gorm:"index:idx_messages_conv_created,priority:2" json:"created_at"`

	ConversationID uint `gorm:"not null;index:idx_messages_conv_created,priority:1" json:"conversation_id"`
	AuthorID       uint `gorm:"not null;index" json:"author_id"`

	Content string `gorm:"type:text" json:"content"`

	Author      User         `gorm:"foreignKey:AuthorID" json:"author"`
	Attachments []Attachment `gorm:"foreignKey:MessageID" json:"attachments"`
}

// Attachment metadata points at an object-store URL; the bytes never live here.
type Attachment struct {
	ID        uint `gorm:"primarykey" json:"id"`
	MessageID uint `gorm:"not null;index" json:"message_id"`

	URL    string `gorm:"not null" json:"url"`
	Type   string `gorm:"type:varchar(20);not null;default:image" json:"type"`
	Width  *int   `json:"width"`
	Height *int   `json:"height"`
	Size   *int64 `json:"size"`
}

// MessageRead existence means "this user has seen this message". Rows are
// inserted idempotently in batches and never deleted.
type MessageRead struct {
	MessageID uint      `gorm:"primaryKey" json:"message_id"`
	UserID    uint      `gorm:"primaryKey" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

type AttachmentResponse struct {
	ID     uint   `json:"id"`
	URL    string `json:"url"`
	Type   string `json:"type"`
	Width  *int   `json:"width"`
	Height *int   `json:"height"`
	Size   *int64 `json:"size"`
}

type MessageResponse struct {
	ID             uint                 `json:"id"`
	ConversationID uint                 `json:"conversation_id"`
	Content        string               `json:"content"`
	CreatedAt      time.Time            `json:"created_at"`
	Author         UserResponse         `json:"author"`
	Attachments    []AttachmentResponse `json:"attachments"`
}

func (m *Message) ToResponse() MessageResponse {
	attachments := make([]AttachmentResponse, 0, len(m.Attachments))
	for _, a := range m.Attachments {
		attachments = append(attachments, AttachmentResponse{
			ID:     a.ID,
			URL:    a.URL,
			Type:   a.Type,
			Width:  a.Width,
			Height: a.Height,
			Size:   a.Size,
		})
	}
	return MessageResponse{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		Content:        m.Content,
		CreatedAt:      m.CreatedAt,
		Author:         m.Author.ToResponse(),
		Attachments:    attachments,
	}
}
