package models

import (
	"time"

	"gorm.io/datatypes"
)

// Session represents one live lecture being monitored.
type Session struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Course    string    `gorm:"size:255" json:"course"`
	StartedAt time.Time `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at"`
	Live      bool      `gorm:"not null;default:false" json:"live"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ModeChange is one instructor mode declaration delivered by the mode feed.
// TimeKey is the opaque key the capture pipeline stamped on the event; it
// is normalized lazily by the engagement core rather than at write time.
type ModeChange struct {
	ID        uint              `gorm:"primaryKey" json:"id"`
	SessionID uint              `gorm:"not null;index" json:"session_id"`
	TimeKey   string            `gorm:"size:64;not null" json:"time_key"`
	Mode      string            `gorm:"size:32;not null" json:"mode"`
	Metadata  datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	CreatedAt time.Time         `json:"created_at"`
	Session   Session           `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}
