package repository

import (
	"github.com/judemcastillo/social-media-clone/internal/models"
	"gorm.io/gorm"
)

type ParticipantRepository struct {
	db *gorm.DB
}

func NewParticipantRepository(db *gorm.DB) *ParticipantRepository {
	return &ParticipantRepository{db: db}
}

func (r *ParticipantRepository) Find(conversationID, userID uint) (*models.Participant, error) {
	var p models.Participant
	err := r.db.Where("conversation_id = ? AND user_id = ?", conversationID, userID).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ParticipantRepository) ListActive(conversationID uint) ([]models.Participant, error) {
	var participants []models.Participant
	err := r.db.
		Where("conversation_id = ? AND status <> ?", conversationID, models.StatusLeft).
		Order("joined_at ASC").
		Preload("User").
		Find(&participants).Error
	return participants, err
}

func (r *ParticipantRepository) ListAll(conversationID uint) ([]models.Participant, error) {
	var participants []models.Participant
	err := r.db.
		Where("conversation_id = ?", conversationID).
		Order("joined_at ASC").
		Find(&participants).Error
	return participants, err
}

func (r *ParticipantRepository) ActiveMemberIDs(conversationID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.Participant{}).
		Where("conversation_id = ? AND status <> ?", conversationID, models.StatusLeft).
		Pluck("user_id", &ids).Error
	return ids, err
}

func (r *ParticipantRepository) Upsert(p *models.Participant) error {
	return r.db.Exec(`
		INSERT INTO participants (conversation_id, user_id, role, status, joined_at, invited_by_id)
		VALUES (?, ?, ?, ?, NOW(), ?)
		ON CONFLICT (conversation_id, user_id) DO UPDATE
		SET status = EXCLUDED.status,
			invited_by_id = COALESCE(EXCLUDED.invited_by_id, participants.invited_by_id)
	`, p.ConversationID, p.UserID, p.Role, p.Status, p.InvitedByID).Error
}

func (r *ParticipantRepository) SetStatus(conversationID, userID uint, status models.ParticipantStatus) error {
	return r.db.Model(&models.Participant{}).
		Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		Update("status", status).Error
}

func (r *ParticipantRepository) PromoteThenLeave(conversationID uint, promoteUserID *uint, leaverID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if promoteUserID != nil {
			if err := tx.Model(&models.Participant{}).
				Where("conversation_id = ? AND user_id = ?", conversationID, *promoteUserID).
				Update("role", models.ParticipantAdmin).Error; err != nil {
				return err
			}
		}
		return tx.Model(&models.Participant{}).
			Where("conversation_id = ? AND user_id = ?", conversationID, leaverID).
			Update("status", models.StatusLeft).Error
	})
}

func (r *ParticipantRepository) CountJoinedByConversations(conversationIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(conversationIDs))
	if len(conversationIDs) == 0 {
		return counts, nil
	}
	rows := []struct {
		ConversationID uint
		Count          int64
	}{}
	err := r.db.Model(&models.Participant{}).
		Select("conversation_id, COUNT(*) AS count").
		Where("conversation_id IN ? AND status = ?", conversationIDs, models.StatusJoined).
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
