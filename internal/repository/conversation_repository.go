package repository

import (
	"github.com/judemcastillo/social-media-clone/internal/models"
	"gorm.io/gorm"
)

type ConversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

func (r *ConversationRepository) Create(conv *models.Conversation) error {
	return r.db.Create(conv).Error
}

func (r *ConversationRepository) FindByID(id uint) (*models.Conversation, error) {
	var conv models.Conversation
	err := r.db.First(&conv, id).Error
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

func (r *ConversationRepository) FindByDirectKey(key string) (*models.Conversation, error) {
	var conv models.Conversation
	err := r.db.Where("direct_key = ?", key).First(&conv).Error
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

func (r *ConversationRepository) TouchUpdatedAt(id uint) error {
	return r.db.Model(&models.Conversation{}).Where("id = ?", id).
		Update("updated_at", gorm.Expr("NOW()")).Error
}

func (r *ConversationRepository) ListForUser(userID uint) ([]models.Conversation, error) {
	var convs []models.Conversation
	err := r.db.
		Where("is_public = TRUE OR EXISTS (SELECT 1 FROM participants p WHERE p.conversation_id = conversations.id AND p.user_id = ?)", userID).
		Order("updated_at DESC").
		Preload("Participants", func(db *gorm.DB) *gorm.DB {
			return db.Where("status <> ?", models.StatusLeft).Order("joined_at ASC")
		}).
		Preload("Participants.User").
		Find(&convs).Error
	return convs, err
}

func (r *ConversationRepository) ListPublicByTitles(titles []string) ([]models.Conversation, error) {
	var convs []models.Conversation
	err := r.db.
		Where("is_public = TRUE AND title IN ?", titles).
		Preload("Participants").
		Find(&convs).Error
	return convs, err
}
