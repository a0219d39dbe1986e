package models

import "time"

// Student represents a learner that can appear in monitored sessions.
type Student struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Name            string    `gorm:"size:255;not null" json:"name"`
	Email           string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	ProfileImageURL string    `gorm:"size:512" json:"profile_image_url"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Attendance marks a student as present in a session. The densifier
// enumerates heatmap rows from these rows, not from observations, so a
// silent student still gets a row.
type Attendance struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SessionID uint      `gorm:"not null;uniqueIndex:idx_attendance_once" json:"session_id"`
	StudentID uint      `gorm:"not null;uniqueIndex:idx_attendance_once" json:"student_id"`
	JoinedAt  time.Time `json:"joined_at"`
	CreatedAt time.Time `json:"created_at"`
	Session   Session   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Student   Student   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"student"`
}
