package models

import (
	"fmt"
	"time"
)

// Conversation kinds are encoded by the IsGroup/IsPublic pair:
// direct (!group && !public), private group (group && !public),
// public room (group && public).
type Conversation struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	IsGroup  bool    `gorm:"not null;default:false" json:"is_group"`
	IsPublic bool    `gorm:"not null;default:false;index" json:"is_public"`
	Title    *string `gorm:"size:100" json:"title"`

	// DirectKey is "d:{minUserID}:{maxUserID}" for direct conversations and
	// null otherwise. The unique index makes concurrent DM creation collide
	// instead of producing duplicates.
	DirectKey *string `gorm:"uniqueIndex;size:64" json:"-"`

	CreatedByID uint `gorm:"not null" json:"created_by_id"`

	Participants []Participant `gorm:"foreignKey:ConversationID" json:"participants,omitempty"`
}

func (c *Conversation) IsDirect() bool {
	return !c.IsGroup && !c.IsPublic
}

func (c *Conversation) IsPrivateGroup() bool {
	return c.IsGroup && !c.IsPublic
}

func (c *Conversation) IsPublicRoom() bool {
	return c.IsGroup && c.IsPublic
}

// DirectKeyFor builds the canonical unordered-pair key for a DM.
func DirectKeyFor(userA, userB uint) string {
	if userA > userB {
		userA, userB = userB, userA
	}
	return fmt.Sprintf("d:%d:%d", userA, userB)
}

type ParticipantRole string

const (
	ParticipantMember ParticipantRole = "MEMBER"
	ParticipantAdmin  ParticipantRole = "ADMIN"
)

type ParticipantStatus string

const (
	StatusInvited ParticipantStatus = "INVITED"
	StatusJoined  ParticipantStatus = "JOINED"
	StatusLeft    ParticipantStatus = "LEFT"
)

// Participant is the (conversation, user) membership row. Exactly one row per
// pair; status transitions are INVITED -> JOINED, JOINED <-> LEFT, and
// LEFT -> INVITED/JOINED only via re-invite or public-room re-join.
type Participant struct {
	ConversationID uint              `gorm:"primaryKey" json:"conversation_id"`
	UserID         uint              `gorm:"primaryKey" json:"user_id"`
	Role           ParticipantRole   `gorm:"type:varchar(20);not null;default:MEMBER" json:"role"`
	Status         ParticipantStatus `gorm:"type:varchar(20);not null;default:JOINED;index" json:"status"`
	JoinedAt       time.Time         `gorm:"autoCreateTime" json:"joined_at"`
	InvitedByID    *uint             `json:"invited_by_id"`

	User User `gorm:"foreignKey:UserID" json:"user"`
}

func (p *Participant) Active() bool {
	return p.Status != StatusLeft
}

type ParticipantResponse struct {
	User     UserResponse      `json:"user"`
	Role     ParticipantRole   `json:"role"`
	Status   ParticipantStatus `json:"status"`
	JoinedAt time.Time         `json:"joined_at"`
}

func (p *Participant) ToResponse() ParticipantResponse {
	return ParticipantResponse{
		User:     p.User.ToResponse(),
		Role:     p.Role,
		Status:   p.Status,
		JoinedAt: p.JoinedAt,
	}
}
