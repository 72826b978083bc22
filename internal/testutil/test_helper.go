package testutil

import (
	"testing"
	"time"

	"github.com/judemcastillo/social-media-clone/internal/models"
)

// TestHelper provides utility functions for tests
type TestHelper struct {
	t *testing.T
}

func NewTestHelper(t *testing.T) *TestHelper {
	return &TestHelper{t: t}
}

// CreateTestUser creates a test user with default values
func (h *TestHelper) CreateTestUser(id uint, username string) *models.User {
	if id == 0 {
		id = 1
	}
	if username == "" {
		username = "testuser"
	}

	return &models.User{
		ID:        id,
		Username:  username,
		Name:      "Test User",
		Avatar:    "https://example.com/avatar.jpg",
		Role:      models.RoleUser,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

// CreateTestConversation creates a direct conversation between two users
func (h *TestHelper) CreateTestConversation(id uint, userA, userB uint) *models.Conversation {
	if id == 0 {
		id = 1
	}
	key := models.DirectKeyFor(userA, userB)
	return &models.Conversation{
		ID:          id,
		DirectKey:   &key,
		CreatedByID: userA,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
}

// CreateTestMessage creates a test message with default values
func (h *TestHelper) CreateTestMessage(id uint, conversationID, authorID uint, content string) *models.Message {
	if id == 0 {
		id = 1
	}
	if authorID == 0 {
		authorID = 1
	}
	if content == "" {
		content = "Test message"
	}

	return &models.Message{
		ID:             id,
		ConversationID: conversationID,
		AuthorID:       authorID,
		Content:        content,
		CreatedAt:      time.Now(),
		Author: models.User{
			ID:       authorID,
			Username: "author",
		},
	}
}
