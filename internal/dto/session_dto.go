package dto

import "time"

// ModeChangeRequest declares a new session mode from the instructor.
type ModeChangeRequest struct {
	Mode    string `json:"mode" validate:"required,oneof=teaching discussion group_work break exam"`
	TimeKey string `json:"time_key" validate:"omitempty,max=64"`
	Note    string `json:"note" validate:"omitempty,max=512"`
}

// ModeOverrideRequest pins the visualization mode regardless of history.
type ModeOverrideRequest struct {
	Mode string `json:"mode" validate:"required,oneof=teaching discussion group_work break exam"`
}

// ModeEventResponse is one resolved timeline entry.
type ModeEventResponse struct {
	Time int64  `json:"time"`
	Mode string `json:"mode"`
}

// ModeTimelineResponse lists the session's mode history plus any override.
type ModeTimelineResponse struct {
	SessionID   uint                `json:"session_id"`
	Events      []ModeEventResponse `json:"events"`
	DefaultMode string              `json:"default_mode"`
	Override    string              `json:"override,omitempty"`
	GeneratedAt time.Time           `json:"generated_at"`
}
