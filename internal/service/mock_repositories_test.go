package service

import (
	"sort"
	"time"

	"github.com/judemcastillo/social-media-clone/internal/models"
	"gorm.io/gorm"
)

// In-memory repository implementations for tests. They return
// gorm.ErrRecordNotFound / gorm.ErrDuplicatedKey the way the real
// repositories do so the services' error mapping is exercised.

// MockUserRepository implements repository.UserRepositoryInterface.
type MockUserRepository struct {
	users map[uint]*models.User
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{users: make(map[uint]*models.User)}
}

func (m *MockUserRepository) Add(u *models.User) {
	m.users[u.ID] = u
}

func (m *MockUserRepository) FindByID(id uint) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockUserRepository) FilterEligible(ids []uint) ([]uint, error) {
	var out []uint
	for _, id := range ids {
		if u, ok := m.users[id]; ok && u.Role != models.RoleGuest {
			out = append(out, id)
		}
	}
	return out, nil
}

// MockParticipantRepository implements repository.ParticipantRepositoryInterface.
type MockParticipantRepository struct {
	rows  map[uint]map[uint]*models.Participant
	users *MockUserRepository
	seq   int
}

func NewMockParticipantRepository(users *MockUserRepository) *MockParticipantRepository {
	return &MockParticipantRepository{
		rows:  make(map[uint]map[uint]*models.Participant),
		users: users,
	}
}

func (m *MockParticipantRepository) put(p *models.Participant) {
	if _, ok := m.rows[p.ConversationID]; !ok {
		m.rows[p.ConversationID] = make(map[uint]*models.Participant)
	}
	if p.JoinedAt.IsZero() {
		m.seq++
		p.JoinedAt = time.Unix(int64(m.seq), 0)
	}
	m.rows[p.ConversationID][p.UserID] = p
}

func (m *MockParticipantRepository) Find(conversationID, userID uint) (*models.Participant, error) {
	if cm, ok := m.rows[conversationID]; ok {
		if p, ok := cm[userID]; ok {
			cp := *p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockParticipantRepository) list(conversationID uint, includeLeft bool) []models.Participant {
	var out []models.Participant
	for _, p := range m.rows[conversationID] {
		if !includeLeft && p.Status == models.StatusLeft {
			continue
		}
		cp := *p
		if u, ok := m.users.users[p.UserID]; ok {
			cp.User = *u
		}
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].JoinedAt.Before(out[j].JoinedAt) })
	return out
}

func (m *MockParticipantRepository) ListActive(conversationID uint) ([]models.Participant, error) {
	return m.list(conversationID, false), nil
}

func (m *MockParticipantRepository) ListAll(conversationID uint) ([]models.Participant, error) {
	return m.list(conversationID, true), nil
}

func (m *MockParticipantRepository) ActiveMemberIDs(conversationID uint) ([]uint, error) {
	var ids []uint
	for _, p := range m.list(conversationID, false) {
		ids = append(ids, p.UserID)
	}
	return ids, nil
}

func (m *MockParticipantRepository) Upsert(p *models.Participant) error {
	if cm, ok := m.rows[p.ConversationID]; ok {
		if existing, ok := cm[p.UserID]; ok {
			// Conflict updates status, like the SQL upsert. The inviter is
			// kept unless the caller names a new one.
			existing.Status = p.Status
			if p.InvitedByID != nil {
				existing.InvitedByID = p.InvitedByID
			}
			return nil
		}
	}
	cp := *p
	m.put(&cp)
	return nil
}

func (m *MockParticipantRepository) SetStatus(conversationID, userID uint, status models.ParticipantStatus) error {
	if cm, ok := m.rows[conversationID]; ok {
		if p, ok := cm[userID]; ok {
			p.Status = status
		}
	}
	return nil
}

func (m *MockParticipantRepository) PromoteThenLeave(conversationID uint, promoteUserID *uint, leaverID uint) error {
	cm := m.rows[conversationID]
	if promoteUserID != nil {
		if p, ok := cm[*promoteUserID]; ok {
			p.Role = models.ParticipantAdmin
		}
	}
	if p, ok := cm[leaverID]; ok {
		p.Status = models.StatusLeft
	}
	return nil
}

func (m *MockParticipantRepository) CountJoinedByConversations(conversationIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(conversationIDs))
	for _, id := range conversationIDs {
		for _, p := range m.rows[id] {
			if p.Status == models.StatusJoined {
				counts[id]++
			}
		}
	}
	return counts, nil
}

// MockConversationRepository implements repository.ConversationRepositoryInterface.
type MockConversationRepository struct {
	conversations map[uint]*models.Conversation
	nextID        uint
	participants  *MockParticipantRepository
}

func NewMockConversationRepository(participants *MockParticipantRepository) *MockConversationRepository {
	return &MockConversationRepository{
		conversations: make(map[uint]*models.Conversation),
		nextID:        1,
		participants:  participants,
	}
}

func (m *MockConversationRepository) Create(conv *models.Conversation) error {
	if conv.DirectKey != nil {
		for _, existing := range m.conversations {
			if existing.DirectKey != nil && *existing.DirectKey == *conv.DirectKey {
				return gorm.ErrDuplicatedKey
			}
		}
	}
	if conv.ID == 0 {
		conv.ID = m.nextID
		m.nextID++
	}
	now := time.Now()
	conv.CreatedAt = now
	conv.UpdatedAt = now
	// Association create: materialize embedded participant rows.
	for i := range conv.Participants {
		p := conv.Participants[i]
		p.ConversationID = conv.ID
		m.participants.put(&p)
	}
	stored := *conv
	stored.Participants = nil
	m.conversations[conv.ID] = &stored
	return nil
}

func (m *MockConversationRepository) FindByID(id uint) (*models.Conversation, error) {
	if c, ok := m.conversations[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockConversationRepository) FindByDirectKey(key string) (*models.Conversation, error) {
	for _, c := range m.conversations {
		if c.DirectKey != nil && *c.DirectKey == key {
			cp := *c
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockConversationRepository) TouchUpdatedAt(id uint) error {
	if c, ok := m.conversations[id]; ok {
		c.UpdatedAt = time.Now()
	}
	return nil
}

func (m *MockConversationRepository) ListForUser(userID uint) ([]models.Conversation, error) {
	var out []models.Conversation
	for _, c := range m.conversations {
		_, member := m.participants.rows[c.ID][userID]
		if !c.IsPublic && !member {
			continue
		}
		cp := *c
		cp.Participants = m.participants.list(c.ID, false)
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (m *MockConversationRepository) ListPublicByTitles(titles []string) ([]models.Conversation, error) {
	wanted := make(map[string]struct{}, len(titles))
	for _, t := range titles {
		wanted[t] = struct{}{}
	}
	var out []models.Conversation
	for _, c := range m.conversations {
		if !c.IsPublic || c.Title == nil {
			continue
		}
		if _, ok := wanted[*c.Title]; !ok {
			continue
		}
		cp := *c
		cp.Participants = m.participants.list(c.ID, true)
		out = append(out, cp)
	}
	return out, nil
}

// MockMessageRepository implements repository.MessageRepositoryInterface.
type MockMessageRepository struct {
	messages []*models.Message
	nextID   uint
	users    *MockUserRepository
}

func NewMockMessageRepository(users *MockUserRepository) *MockMessageRepository {
	return &MockMessageRepository{nextID: 1, users: users}
}

func (m *MockMessageRepository) Create(message *models.Message) error {
	if message.ID == 0 {
		message.ID = m.nextID
		m.nextID++
	}
	if message.CreatedAt.IsZero() {
		// Monotonic timestamps so pagination ordering is deterministic.
		message.CreatedAt = time.Unix(0, 0).Add(time.Duration(message.ID) * time.Second)
	}
	for i := range message.Attachments {
		message.Attachments[i].ID = uint(i) + 1
		message.Attachments[i].MessageID = message.ID
	}
	m.messages = append(m.messages, message)
	return nil
}

func (m *MockMessageRepository) hydrate(msg models.Message) models.Message {
	if u, ok := m.users.users[msg.AuthorID]; ok {
		msg.Author = *u
	}
	return msg
}

func (m *MockMessageRepository) FindByID(id uint) (*models.Message, error) {
	for _, msg := range m.messages {
		if msg.ID == id {
			cp := m.hydrate(*msg)
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockMessageRepository) PageBefore(conversationID uint, cursor *models.Message, limit int) ([]models.Message, error) {
	var out []models.Message
	for _, msg := range m.messages {
		if msg.ConversationID != conversationID {
			continue
		}
		if cursor != nil {
			older := msg.CreatedAt.Before(cursor.CreatedAt) ||
				(msg.CreatedAt.Equal(cursor.CreatedAt) && msg.ID < cursor.ID)
			if !older {
				continue
			}
		}
		out = append(out, m.hydrate(*msg))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MockMessageRepository) LatestPerConversation(conversationIDs []uint) (map[uint]models.Message, error) {
	latest := make(map[uint]models.Message, len(conversationIDs))
	wanted := make(map[uint]struct{}, len(conversationIDs))
	for _, id := range conversationIDs {
		wanted[id] = struct{}{}
	}
	for _, msg := range m.messages {
		if _, ok := wanted[msg.ConversationID]; !ok {
			continue
		}
		cur, ok := latest[msg.ConversationID]
		if !ok || msg.CreatedAt.After(cur.CreatedAt) ||
			(msg.CreatedAt.Equal(cur.CreatedAt) && msg.ID > cur.ID) {
			latest[msg.ConversationID] = m.hydrate(*msg)
		}
	}
	return latest, nil
}

func (m *MockMessageRepository) CountByConversations(conversationIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(conversationIDs))
	wanted := make(map[uint]struct{}, len(conversationIDs))
	for _, id := range conversationIDs {
		wanted[id] = struct{}{}
	}
	for _, msg := range m.messages {
		if _, ok := wanted[msg.ConversationID]; ok {
			counts[msg.ConversationID]++
		}
	}
	return counts, nil
}

// MockReadReceiptRepository implements repository.ReadReceiptRepositoryInterface.
type MockReadReceiptRepository struct {
	receipts      map[uint]map[uint]bool // userID -> messageID -> seen
	messages      *MockMessageRepository
	participants  *MockParticipantRepository
	conversations *MockConversationRepository
}

func NewMockReadReceiptRepository(messages *MockMessageRepository, participants *MockParticipantRepository, conversations *MockConversationRepository) *MockReadReceiptRepository {
	return &MockReadReceiptRepository{
		receipts:      make(map[uint]map[uint]bool),
		messages:      messages,
		participants:  participants,
		conversations: conversations,
	}
}

func (m *MockReadReceiptRepository) seen(userID, messageID uint) bool {
	return m.receipts[userID][messageID]
}

func (m *MockReadReceiptRepository) eligible(userID, conversationID uint) bool {
	if c, ok := m.conversations.conversations[conversationID]; ok && c.IsPublic {
		return true
	}
	_, ok := m.participants.rows[conversationID][userID]
	return ok
}

func (m *MockReadReceiptRepository) UnreadTotal(userID uint) (int64, error) {
	var total int64
	for _, msg := range m.messages.messages {
		if msg.AuthorID == userID || m.seen(userID, msg.ID) {
			continue
		}
		if m.eligible(userID, msg.ConversationID) {
			total++
		}
	}
	return total, nil
}

func (m *MockReadReceiptRepository) UnreadByConversations(userID uint, conversationIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(conversationIDs))
	wanted := make(map[uint]struct{}, len(conversationIDs))
	for _, id := range conversationIDs {
		wanted[id] = struct{}{}
	}
	for _, msg := range m.messages.messages {
		if _, ok := wanted[msg.ConversationID]; !ok {
			continue
		}
		if msg.AuthorID == userID || m.seen(userID, msg.ID) {
			continue
		}
		counts[msg.ConversationID]++
	}
	return counts, nil
}

func (m *MockReadReceiptRepository) ListUnreadMessageIDs(userID, conversationID uint, limit int) ([]uint, error) {
	var ids []uint
	for _, msg := range m.messages.messages {
		if len(ids) >= limit {
			break
		}
		if msg.ConversationID != conversationID || msg.AuthorID == userID || m.seen(userID, msg.ID) {
			continue
		}
		ids = append(ids, msg.ID)
	}
	return ids, nil
}

func (m *MockReadReceiptRepository) InsertBatch(userID uint, messageIDs []uint) error {
	if _, ok := m.receipts[userID]; !ok {
		m.receipts[userID] = make(map[uint]bool)
	}
	for _, id := range messageIDs {
		m.receipts[userID][id] = true
	}
	return nil
}

// fixture wires the mocks into the full service graph.
type fixture struct {
	users        *MockUserRepository
	participants *MockParticipantRepository
	convs        *MockConversationRepository
	messages     *MockMessageRepository
	reads        *MockReadReceiptRepository

	membership *MembershipService
	history    *HistoryService
	unread     *UnreadService
}

func newFixture() *fixture {
	users := NewMockUserRepository()
	participants := NewMockParticipantRepository(users)
	convs := NewMockConversationRepository(participants)
	messages := NewMockMessageRepository(users)
	reads := NewMockReadReceiptRepository(messages, participants, convs)

	membership := NewMembershipService(convs, participants, users, messages, reads)
	return &fixture{
		users:        users,
		participants: participants,
		convs:        convs,
		messages:     messages,
		reads:        reads,
		membership:   membership,
		history:      NewHistoryService(convs, participants, messages, membership),
		unread:       NewUnreadService(reads, membership),
	}
}

func (f *fixture) addUser(id uint, username, role string) *models.User {
	u := &models.User{ID: id, Username: username, Name: username, Role: role}
	f.users.Add(u)
	return u
}
