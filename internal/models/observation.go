package models

import (
	"time"

	"github.com/noah-isme/fokus-go-api/internal/engagement"
)

// Observation is one behavioural feature snapshot written by the capture
// pipeline for one student at one instant. Immutable once recorded.
type Observation struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	SessionID    uint      `gorm:"not null;index:idx_observation_feed" json:"session_id"`
	StudentID    uint      `gorm:"not null;index:idx_observation_feed" json:"student_id"`
	TimeKey      string    `gorm:"size:64;not null" json:"time_key"`
	DrowsyState  string    `gorm:"size:32" json:"drowsy_state"`
	YawnState    string    `gorm:"size:32" json:"yawn_state"`
	GazeState    string    `gorm:"size:32" json:"gaze_state"`
	PoseState    string    `gorm:"size:32" json:"pose_state"`
	HandState    string    `gorm:"size:32" json:"hand_state"`
	EmotionState string    `gorm:"size:32" json:"emotion_state"`
	CreatedAt    time.Time `json:"created_at"`
}

// FeatureRecord converts the stored row into the engagement core's value type.
func (o Observation) FeatureRecord() engagement.FeatureRecord {
	return engagement.FeatureRecord{
		DrowsyState:  o.DrowsyState,
		YawnState:    o.YawnState,
		GazeState:    o.GazeState,
		PoseState:    o.PoseState,
		HandState:    o.HandState,
		EmotionState: o.EmotionState,
	}
}
