package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/fokus-go-api/internal/models"
)

// AttendanceRepository exposes the attendance feed for a session.
type AttendanceRepository interface {
	ListPresent(ctx context.Context, sessionID uint) ([]models.Attendance, error)
	Create(ctx context.Context, attendance *models.Attendance) error
}

type attendanceRepository struct {
	db *gorm.DB
}

// NewAttendanceRepository instantiates the repository.
func NewAttendanceRepository(db *gorm.DB) AttendanceRepository {
	return &attendanceRepository{db: db}
}

func (r *attendanceRepository) ListPresent(ctx context.Context, sessionID uint) ([]models.Attendance, error) {
	var attendances []models.Attendance
	if err := r.db.WithContext(ctx).
		Preload("Student").
		Where("session_id = ?", sessionID).
		Order("joined_at ASC").
		Find(&attendances).Error; err != nil {
		return nil, err
	}

	return attendances, nil
}

func (r *attendanceRepository) Create(ctx context.Context, attendance *models.Attendance) error {
	return r.db.WithContext(ctx).Create(attendance).Error
}
