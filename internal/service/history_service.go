package service

import (
	"errors"
	"strings"

	"github.com/judemcastillo/social-media-clone/internal/models"
	"github.com/judemcastillo/social-media-clone/internal/repository"
	"gorm.io/gorm"
)

const (
	defaultPageSize = 30
	maxPageSize     = 100
)

// HistoryService serves cursor-stable, reverse-chronological message pages.
type HistoryService struct {
	convRepo        repository.ConversationRepositoryInterface
	participantRepo repository.ParticipantRepositoryInterface
	messageRepo     repository.MessageRepositoryInterface
	membership      *MembershipService
}

func NewHistoryService(
	convRepo repository.ConversationRepositoryInterface,
	participantRepo repository.ParticipantRepositoryInterface,
	messageRepo repository.MessageRepositoryInterface,
	membership *MembershipService,
) *HistoryService {
	return &HistoryService{
		convRepo:        convRepo,
		participantRepo: participantRepo,
		messageRepo:     messageRepo,
		membership:      membership,
	}
}

// MessagesPage is one page of history plus the conversation metadata the
// client renders around it.
type MessagesPage struct {
	ConversationID uint                         `json:"conversation_id"`
	Title          string                       `json:"title"`
	IsGroup        bool                         `json:"is_group"`
	IsPublic       bool                         `json:"is_public"`
	Participants   []models.ParticipantResponse `json:"participants"`
	ViewerRole     *models.ParticipantRole      `json:"viewer_role"`
	ViewerStatus   *models.ParticipantStatus    `json:"viewer_status"`
	Messages       []models.MessageResponse     `json:"messages"`
	NextCursor     *uint                        `json:"next_cursor"`
}

// Page returns up to limit messages strictly older than the cursor message,
// oldest first for display. Fetching a private group while INVITED accepts
// the invite before the authorization check.
func (s *HistoryService) Page(userID, conversationID uint, cursorID uint, limit int) (*MessagesPage, error) {
	conv, err := s.convRepo.FindByID(conversationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if conv.IsPrivateGroup() {
		if err := s.membership.AcceptIfInvited(userID, conversationID); err != nil {
			return nil, err
		}
	}
	if _, err := s.membership.AuthorizeRead(userID, conversationID); err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	var cursor *models.Message
	if cursorID != 0 {
		if m, err := s.messageRepo.FindByID(cursorID); err == nil && m.ConversationID == conversationID {
			cursor = m
		}
		// An unknown cursor falls back to the newest page rather than erroring.
	}

	rows, err := s.messageRepo.PageBefore(conversationID, cursor, limit+1)
	if err != nil {
		return nil, err
	}
	hasMore := len(rows) > limit
	if hasMore {
		rows = rows[:limit]
	}

	// Newest-to-oldest from the store, reversed for display.
	messages := make([]models.MessageResponse, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		messages = append(messages, rows[i].ToResponse())
	}
	var nextCursor *uint
	if hasMore && len(rows) > 0 {
		oldest := rows[len(rows)-1].ID
		nextCursor = &oldest
	}

	participants, err := s.participantRepo.ListActive(conversationID)
	if err != nil {
		return nil, err
	}
	page := &MessagesPage{
		ConversationID: conversationID,
		Title:          resolveTitle(conv, participants, userID),
		IsGroup:        conv.IsGroup,
		IsPublic:       conv.IsPublic,
		Messages:       messages,
		NextCursor:     nextCursor,
	}
	for _, p := range participants {
		page.Participants = append(page.Participants, p.ToResponse())
		if p.UserID == userID {
			role, status := p.Role, p.Status
			page.ViewerRole = &role
			page.ViewerStatus = &status
		}
	}
	return page, nil
}

// PageDirect pages a DM addressed by peer id, creating the conversation
// lazily on first contact.
func (s *HistoryService) PageDirect(userID, peerID uint, cursorID uint, limit int) (*MessagesPage, error) {
	conv, err := s.membership.CreateDirect(userID, peerID)
	if err != nil {
		return nil, err
	}
	return s.Page(userID, conv.ID, cursorID, limit)
}

// resolveTitle falls back from the explicit title to peer names, capped at
// three before an "and N more" suffix is pointless to compute server-side.
func resolveTitle(conv *models.Conversation, participants []models.Participant, viewerID uint) string {
	if conv.Title != nil && *conv.Title != "" {
		return *conv.Title
	}
	if conv.IsPublicRoom() {
		return "Room"
	}
	names := make([]string, 0, 3)
	for _, p := range participants {
		if p.UserID == viewerID {
			continue
		}
		name := p.User.Name
		if name == "" {
			name = p.User.Username
		}
		if name == "" {
			continue
		}
		names = append(names, name)
		if len(names) == 3 {
			break
		}
	}
	if len(names) == 0 {
		return "Conversation"
	}
	return strings.Join(names, ", ")
}
