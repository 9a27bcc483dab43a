package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a registered account or a guest placeholder. Guests have no
// username until credentials are linked to them.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Username     *string   `gorm:"uniqueIndex" json:"username,omitempty"`
	PasswordHash string    `json:"-"`
	Nickname     string    `json:"nickname,omitempty"`
	IsGuest      bool      `gorm:"default:false" json:"is_guest"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
