package models

import (
	"time"
)

// User rows are owned by the identity service; the chat backend only reads them
// to validate targets and to hydrate message authors.
type User struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Username string `gorm:"uniqueIndex;not null" json:"username"`
	Name     string `json:"name"`
	Avatar   string `json:"avatar"`
	Role     string `gorm:"not null;default:USER" json:"role"`
}

const (
	RoleUser  = "USER"
	RoleGuest = "GUEST"
)

type UserResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Avatar   string `json:"avatar"`
}

func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:       u.ID,
		Username: u.Username,
		Name:     u.Name,
		Avatar:   u.Avatar,
	}
}
