package repository

import (
	"github.com/judemcastillo/social-media-clone/internal/models"
	"gorm.io/gorm"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(message *models.Message) error {
	// Associations make this one INSERT transaction for the message and its
	// attachments.
	return r.db.Create(message).Error
}

func (r *MessageRepository) FindByID(id uint) (*models.Message, error) {
	var message models.Message
	err := r.db.Preload("Author").Preload("Attachments").First(&message, id).Error
	if err != nil {
		return nil, err
	}
	return &message, nil
}

func (r *MessageRepository) PageBefore(conversationID uint, cursor *models.Message, limit int) ([]models.Message, error) {
	q := r.db.Where("conversation_id = ?", conversationID)
	if cursor != nil {
		// Compound seek keeps pages stable under concurrent inserts; a plain
		// offset would skip or repeat rows.
		q = q.Where("(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var messages []models.Message
	err := q.Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Preload("Author").
		Preload("Attachments").
		Find(&messages).Error
	return messages, err
}

func (r *MessageRepository) LatestPerConversation(conversationIDs []uint) (map[uint]models.Message, error) {
	latest := make(map[uint]models.Message, len(conversationIDs))
	if len(conversationIDs) == 0 {
		return latest, nil
	}

	var messages []models.Message
	err := r.db.Raw(`
		SELECT DISTINCT ON (conversation_id) *
		FROM messages
		WHERE conversation_id IN ?
		ORDER BY conversation_id, created_at DESC, id DESC
	`, conversationIDs).Scan(&messages).Error
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(messages))
	for _, m := range messages {
		ids = append(ids, m.ID)
	}
	var authors []models.User
	if len(messages) > 0 {
		authorIDs := make([]uint, 0, len(messages))
		for _, m := range messages {
			authorIDs = append(authorIDs, m.AuthorID)
		}
		if err := r.db.Where("id IN ?", authorIDs).Find(&authors).Error; err != nil {
			return nil, err
		}
	}
	authorByID := make(map[uint]models.User, len(authors))
	for _, u := range authors {
		authorByID[u.ID] = u
	}
	var attachments []models.Attachment
	if len(ids) > 0 {
		if err := r.db.Where("message_id IN ?", ids).Find(&attachments).Error; err != nil {
			return nil, err
		}
	}
	attachmentsByMsg := make(map[uint][]models.Attachment)
	for _, a := range attachments {
		attachmentsByMsg[a.MessageID] = append(attachmentsByMsg[a.MessageID], a)
	}

	for _, m := range messages {
		m.Author = authorByID[m.AuthorID]
		m.Attachments = attachmentsByMsg[m.ID]
		latest[m.ConversationID] = m
	}
	return latest, nil
}

func (r *MessageRepository) CountByConversations(conversationIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(conversationIDs))
	if len(conversationIDs) == 0 {
		return counts, nil
	}
	rows := []struct {
		ConversationID uint
		Count          int64
	}{}
	err := r.db.Model(&models.Message{}).
		Select("conversation_id, COUNT(*) AS count").
		Where("conversation_id IN ?", conversationIDs).
		Group("conversation_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.ConversationID] = row.Count
	}
	return counts, nil
}
