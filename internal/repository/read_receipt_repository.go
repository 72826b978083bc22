package repository

import (
	"github.com/judemcastillo/social-media-clone/internal/models"
	"gorm.io/gorm"
)

type ReadReceiptRepository struct {
	db *gorm.DB
}

func NewReadReceiptRepository(db *gorm.DB) *ReadReceiptRepository {
	return &ReadReceiptRepository{db: db}
}

// eligibleClause restricts messages to conversations the user can read:
// any conversation with a participant row for them, or a public one.
const eligibleClause = `
	(c.is_public = TRUE OR EXISTS (
		SELECT 1 FROM participants p
		WHERE p.conversation_id = c.id AND p.user_id = ?
	))`

func (r *ReadReceiptRepository) UnreadTotal(userID uint) (int64, error) {
	var total int64
	err := r.db.Raw(`
		SELECT COUNT(*)
		FROM messages m
		JOIN conversations c ON c.id = m.conversation_id
		WHERE m.author_id <> ?
		  AND NOT EXISTS (
			SELECT 1 FROM message_reads mr
			WHERE mr.message_id = m.id AND mr.user_id = ?
		  )
		  AND `+eligibleClause,
		userID, userID, userID).Scan(&total).Error
	return total, err
}

func (r *ReadReceiptRepository) UnreadByConversations(userID uint, conversationIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(conversationIDs))
	if len(conversationIDs) == 0 {
		return counts, nil
	}
	rows := []struct {
		ConversationID uint
		Count          int64
	}{}
	err := r.db.Raw(`
		SELECT m.conversation_id, COUNT(*) AS count
		FROM messages m
		WHERE m.conversation_id IN ?
		  AND m.author_id <> ?
		  AND NOT EXISTS (
			SELECT 1 FROM message_reads mr
			WHERE mr.message_id = m.id AND mr.user_id = ?
		  )
		GROUP BY m.conversation_id
	`, conversationIDs, userID, userID).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.ConversationID] = row.Count
	}
	return counts, nil
}

func (r *ReadReceiptRepository) ListUnreadMessageIDs(userID, conversationID uint, limit int) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.Message{}).
		Where("conversation_id = ? AND author_id <> ?", conversationID, userID).
		Where("NOT EXISTS (SELECT 1 FROM message_reads mr WHERE mr.message_id = messages.id AND mr.user_id = ?)", userID).
		Limit(limit).
		Pluck("id", &ids).Error
	return ids, err
}

func (r *ReadReceiptRepository) InsertBatch(userID uint, messageIDs []uint) error {
	if len(messageIDs) == 0 {
		return nil
	}
	// Re-marking already-read messages is a no-op.
	return r.db.Exec(`
		INSERT INTO message_reads (message_id, user_id, created_at)
		SELECT m.id, ?, NOW() FROM messages m WHERE m.id IN ?
		ON CONFLICT (message_id, user_id) DO NOTHING
	`, userID, messageIDs).Error
}
