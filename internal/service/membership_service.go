package service

import (
	"errors"
	"strings"

	"github.com/judemcastillo/social-media-clone/internal/models"
	"github.com/judemcastillo/social-media-clone/internal/repository"
	"gorm.io/gorm"
)

// MembershipService enforces the conversation/participant state machine and
// the authorization rules every other component gates on.
type MembershipService struct {
	convRepo        repository.ConversationRepositoryInterface
	participantRepo repository.ParticipantRepositoryInterface
	userRepo        repository.UserRepositoryInterface
	messageRepo     repository.MessageRepositoryInterface
	readRepo        repository.ReadReceiptRepositoryInterface
}

func NewMembershipService(
	convRepo repository.ConversationRepositoryInterface,
	participantRepo repository.ParticipantRepositoryInterface,
	userRepo repository.UserRepositoryInterface,
	messageRepo repository.MessageRepositoryInterface,
	readRepo repository.ReadReceiptRepositoryInterface,
) *MembershipService {
	return &MembershipService{
		convRepo:        convRepo,
		participantRepo: participantRepo,
		userRepo:        userRepo,
		messageRepo:     messageRepo,
		readRepo:        readRepo,
	}
}

// CreateDirect finds or creates the unique direct conversation between the
// two users. Concurrent first-time callers race on the direct_key unique
// constraint; the loser re-queries for the winning row.
func (s *MembershipService) CreateDirect(userID, peerID uint) (*models.Conversation, error) {
	if peerID == 0 || peerID == userID {
		return nil, ErrInvalidTarget
	}
	peer, err := s.userRepo.FindByID(peerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if peer.Role == models.RoleGuest {
		return nil, ErrInvalidTarget
	}

	key := models.DirectKeyFor(userID, peerID)
	if existing, err := s.convRepo.FindByDirectKey(key); err == nil {
		return existing, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	conv := &models.Conversation{
		IsGroup:     false,
		IsPublic:    false,
		DirectKey:   &key,
		CreatedByID: userID,
		Participants: []models.Participant{
			{UserID: userID, Role: models.ParticipantMember, Status: models.StatusJoined},
			{UserID: peerID, Role: models.ParticipantMember, Status: models.StatusJoined},
		},
	}
	if err := s.convRepo.Create(conv); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return s.convRepo.FindByDirectKey(key)
		}
		return nil, err
	}
	return conv, nil
}

// CreateGroup creates a private group: creator ADMIN/JOINED, every other
// eligible member MEMBER/INVITED.
func (s *MembershipService) CreateGroup(creatorID uint, memberIDs []uint, title string) (*models.Conversation, error) {
	eligible, err := s.userRepo.FilterEligible(dedupeExcluding(memberIDs, creatorID))
	if err != nil {
		return nil, err
	}

	conv := &models.Conversation{
		IsGroup:     true,
		IsPublic:    false,
		Title:       normalizeTitle(title),
		CreatedByID: creatorID,
	}
	conv.Participants = append(conv.Participants, models.Participant{
		UserID: creatorID,
		Role:   models.ParticipantAdmin,
		Status: models.StatusJoined,
	})
	for _, uid := range eligible {
		conv.Participants = append(conv.Participants, models.Participant{
			UserID:      uid,
			Role:        models.ParticipantMember,
			Status:      models.StatusInvited,
			InvitedByID: &creatorID,
		})
	}
	if err := s.convRepo.Create(conv); err != nil {
		return nil, err
	}
	return conv, nil
}

// CreatePublicRoom creates an open-join room with no implicit members beyond
// the creator.
func (s *MembershipService) CreatePublicRoom(creatorID uint, title string) (*models.Conversation, error) {
	conv := &models.Conversation{
		IsGroup:     true,
		IsPublic:    true,
		Title:       normalizeTitle(title),
		CreatedByID: creatorID,
		Participants: []models.Participant{
			{UserID: creatorID, Role: models.ParticipantAdmin, Status: models.StatusJoined},
		},
	}
	if err := s.convRepo.Create(conv); err != nil {
		return nil, err
	}
	return conv, nil
}

// JoinPublicRoom upserts the caller to JOINED. Re-joining after LEFT is the
// one self-service way back into a room.
func (s *MembershipService) JoinPublicRoom(userID, conversationID uint) error {
	conv, err := s.findConversation(conversationID)
	if err != nil {
		return err
	}
	if !conv.IsPublic {
		return ErrNotAPublicRoom
	}
	return s.participantRepo.Upsert(&models.Participant{
		ConversationID: conversationID,
		UserID:         userID,
		Role:           models.ParticipantMember,
		Status:         models.StatusJoined,
	})
}

// Leave flips the caller to LEFT. For private groups, when the leaver is the
// sole admin and joined members remain, the earliest joiner among them is
// promoted in the same transaction so the group is never admin-less.
func (s *MembershipService) Leave(userID, conversationID uint) error {
	conv, err := s.findConversation(conversationID)
	if err != nil {
		return err
	}
	if conv.IsDirect() {
		return ErrNotAGroup
	}

	p, err := s.participantRepo.Find(conversationID, userID)
	if err != nil || !p.Active() {
		return ErrNotAMember
	}

	if conv.IsPublicRoom() {
		return s.participantRepo.SetStatus(conversationID, userID, models.StatusLeft)
	}

	all, err := s.participantRepo.ListAll(conversationID)
	if err != nil {
		return err
	}
	var promote *uint
	if p.Role == models.ParticipantAdmin {
		adminRemains := false
		// ListAll is ordered by joined_at, so the first joined other is the
		// promotion candidate.
		var earliest *uint
		for i := range all {
			other := all[i]
			if other.UserID == userID || other.Status != models.StatusJoined {
				continue
			}
			if other.Role == models.ParticipantAdmin {
				adminRemains = true
				break
			}
			if earliest == nil {
				uid := other.UserID
				earliest = &uid
			}
		}
		if !adminRemains {
			promote = earliest
		}
	}
	return s.participantRepo.PromoteThenLeave(conversationID, promote, userID)
}

// AddMembers invites eligible targets into a private group. Unknown ids and
// guest accounts are skipped rather than failing the batch; a target already
// in the group (LEFT or otherwise) is reset to INVITED.
func (s *MembershipService) AddMembers(adminID, conversationID uint, memberIDs []uint) ([]models.Participant, error) {
	if _, err := s.assertGroupAdmin(conversationID, adminID); err != nil {
		return nil, err
	}
	eligible, err := s.userRepo.FilterEligible(dedupeExcluding(memberIDs, adminID))
	if err != nil {
		return nil, err
	}
	for _, uid := range eligible {
		err := s.participantRepo.Upsert(&models.Participant{
			ConversationID: conversationID,
			UserID:         uid,
			Role:           models.ParticipantMember,
			Status:         models.StatusInvited,
			InvitedByID:    &adminID,
		})
		if err != nil {
			return nil, err
		}
	}
	return s.participantRepo.ListActive(conversationID)
}

// RemoveMember sets a non-admin target to LEFT. Admins must use Leave for
// themselves and cannot remove each other.
func (s *MembershipService) RemoveMember(adminID, conversationID, targetID uint) error {
	if targetID == adminID {
		return ErrCannotRemoveSelf
	}
	if _, err := s.assertGroupAdmin(conversationID, adminID); err != nil {
		return err
	}
	target, err := s.participantRepo.Find(conversationID, targetID)
	if err != nil || !target.Active() {
		return ErrNotFound
	}
	if target.Role == models.ParticipantAdmin {
		return ErrCannotRemoveAdmin
	}
	return s.participantRepo.SetStatus(conversationID, targetID, models.StatusLeft)
}

// AuthorizeRead gates history fetches, room joins and mark-read. Public
// conversations are readable by anyone; private ones require JOINED.
func (s *MembershipService) AuthorizeRead(userID, conversationID uint) (*models.Conversation, error) {
	conv, err := s.findConversation(conversationID)
	if err != nil {
		return nil, err
	}
	if conv.IsPublic {
		return conv, nil
	}
	p, err := s.participantRepo.Find(conversationID, userID)
	if err != nil || p.Status != models.StatusJoined {
		return nil, ErrForbidden
	}
	return conv, nil
}

// AuthorizeWrite gates sends. Writing always requires JOINED, public or not.
func (s *MembershipService) AuthorizeWrite(userID, conversationID uint) (*models.Conversation, error) {
	conv, err := s.findConversation(conversationID)
	if err != nil {
		return nil, err
	}
	p, err := s.participantRepo.Find(conversationID, userID)
	if err != nil || p.Status != models.StatusJoined {
		return nil, ErrForbidden
	}
	return conv, nil
}

// AcceptIfInvited flips an INVITED participant to JOINED. Interacting with a
// conversation accepts the pending invite.
func (s *MembershipService) AcceptIfInvited(userID, conversationID uint) error {
	p, err := s.participantRepo.Find(conversationID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if p.Status != models.StatusInvited {
		return nil
	}
	return s.participantRepo.SetStatus(conversationID, userID, models.StatusJoined)
}

// Participants returns the active membership of a conversation, readable by
// anyone who can read the conversation.
func (s *MembershipService) Participants(userID, conversationID uint) ([]models.Participant, error) {
	if _, err := s.AuthorizeRead(userID, conversationID); err != nil {
		return nil, err
	}
	return s.participantRepo.ListActive(conversationID)
}

// ConversationSummary is one row of the conversation list.
type ConversationSummary struct {
	ID           uint                         `json:"id"`
	Title        *string                      `json:"title"`
	IsGroup      bool                         `json:"is_group"`
	IsPublic     bool                         `json:"is_public"`
	Participants []models.ParticipantResponse `json:"participants"`
	LastMessage  *models.MessageResponse      `json:"last_message"`
	UnreadCount  int64                        `json:"unread_count"`
}

// ListConversations returns the viewer's conversations plus public rooms,
// newest activity first, each with its last message and unread count.
func (s *MembershipService) ListConversations(userID uint) ([]ConversationSummary, error) {
	convs, err := s.convRepo.ListForUser(userID)
	if err != nil {
		return nil, err
	}
	if len(convs) == 0 {
		return []ConversationSummary{}, nil
	}

	ids := make([]uint, 0, len(convs))
	for _, c := range convs {
		ids = append(ids, c.ID)
	}
	latest, err := s.messageRepo.LatestPerConversation(ids)
	if err != nil {
		return nil, err
	}
	unread, err := s.readRepo.UnreadByConversations(userID, ids)
	if err != nil {
		return nil, err
	}

	summaries := make([]ConversationSummary, 0, len(convs))
	for _, c := range convs {
		summary := ConversationSummary{
			ID:          c.ID,
			Title:       c.Title,
			IsGroup:     c.IsGroup,
			IsPublic:    c.IsPublic,
			UnreadCount: unread[c.ID],
		}
		for _, p := range c.Participants {
			summary.Participants = append(summary.Participants, p.ToResponse())
		}
		if m, ok := latest[c.ID]; ok {
			resp := m.ToResponse()
			summary.LastMessage = &resp
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// FeaturedRoom is a public room surfaced on the discover page.
type FeaturedRoom struct {
	ID           uint                      `json:"id"`
	Title        *string                   `json:"title"`
	MemberCount  int64                     `json:"member_count"`
	MessageCount int64                     `json:"message_count"`
	ViewerStatus *models.ParticipantStatus `json:"viewer_status"`
}

// FeaturedRooms returns the configured featured public rooms in their
// configured order, with member/message counts and the viewer's status.
func (s *MembershipService) FeaturedRooms(userID uint, titles []string) ([]FeaturedRoom, error) {
	rooms, err := s.convRepo.ListPublicByTitles(titles)
	if err != nil {
		return nil, err
	}
	if len(rooms) == 0 {
		return []FeaturedRoom{}, nil
	}

	ids := make([]uint, 0, len(rooms))
	for _, r := range rooms {
		ids = append(ids, r.ID)
	}
	memberCounts, err := s.participantRepo.CountJoinedByConversations(ids)
	if err != nil {
		return nil, err
	}
	messageCounts, err := s.messageRepo.CountByConversations(ids)
	if err != nil {
		return nil, err
	}

	order := make(map[string]int, len(titles))
	for i, t := range titles {
		order[t] = i
	}
	out := make([]FeaturedRoom, 0, len(rooms))
	for _, r := range rooms {
		fr := FeaturedRoom{
			ID:           r.ID,
			Title:        r.Title,
			MemberCount:  memberCounts[r.ID],
			MessageCount: messageCounts[r.ID],
		}
		for _, p := range r.Participants {
			if p.UserID == userID {
				status := p.Status
				fr.ViewerStatus = &status
				break
			}
		}
		out = append(out, fr)
	}
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if titleOrder(order, out[j].Title) < titleOrder(order, out[i].Title) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

func (s *MembershipService) findConversation(id uint) (*models.Conversation, error) {
	conv, err := s.convRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return conv, nil
}

func (s *MembershipService) assertGroupAdmin(conversationID, userID uint) (*models.Conversation, error) {
	conv, err := s.findConversation(conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.IsPrivateGroup() {
		return nil, ErrForbidden
	}
	p, err := s.participantRepo.Find(conversationID, userID)
	if err != nil || p.Status != models.StatusJoined || p.Role != models.ParticipantAdmin {
		return nil, ErrForbidden
	}
	return conv, nil
}

func dedupeExcluding(ids []uint, exclude uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 || id == exclude {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func normalizeTitle(title string) *string {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil
	}
	return &title
}

func titleOrder(order map[string]int, title *string) int {
	if title == nil {
		return len(order)
	}
	if i, ok := order[*title]; ok {
		return i
	}
	return len(order)
}
