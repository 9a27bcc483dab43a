package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Music is one catalog entry. Playback sources are referenced by path or
// YouTube video id; the files themselves live elsewhere.
type Music struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Artist      string    `gorm:"size:255" json:"artist"`
	Genre       string    `gorm:"size:64" json:"genre"`
	Mood        string    `gorm:"size:64" json:"mood"`
	DurationSec int       `gorm:"default:0" json:"duration_sec"`
	FilePath    string    `gorm:"size:512" json:"file_path"`
	YoutubeID   string    `gorm:"size:32" json:"youtube_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relations
	Context *MusicContext `gorm:"foreignKey:MusicID;constraint:OnDelete:CASCADE" json:"context,omitempty"`
}

func (m *Music) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// MusicContext tags a track with the situation it suits. One row per track.
type MusicContext struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	MusicID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"music_id"`
	Weather   string    `gorm:"size:32" json:"weather"`
	TimeOfDay string    `gorm:"size:32" json:"time_of_day"`
	Theme     string    `gorm:"size:64" json:"theme"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *MusicContext) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
