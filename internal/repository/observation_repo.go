package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/fokus-go-api/internal/engagement"
	"github.com/noah-isme/fokus-go-api/internal/models"
)

// ObservationRepository exposes the per-student observation feed.
type ObservationRepository interface {
	MapForStudent(ctx context.Context, sessionID, studentID uint) (map[string]engagement.FeatureRecord, error)
	MapsForSession(ctx context.Context, sessionID uint) (map[uint]map[string]engagement.FeatureRecord, error)
	Create(ctx context.Context, observation *models.Observation) error
}

type observationRepository struct {
	db *gorm.DB
}

// NewObservationRepository instantiates the repository.
func NewObservationRepository(db *gorm.DB) ObservationRepository {
	return &observationRepository{db: db}
}

// MapForStudent returns the raw time-key → record mapping for one student,
// the shape the engagement core consumes. Duplicate keys keep the latest row.
func (r *observationRepository) MapForStudent(ctx context.Context, sessionID, studentID uint) (map[string]engagement.FeatureRecord, error) {
	var observations []models.Observation
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Where("student_id = ?", studentID).
		Order("created_at ASC").
		Find(&observations).Error; err != nil {
		return nil, err
	}

	records := make(map[string]engagement.FeatureRecord, len(observations))
	for _, observation := range observations {
		records[observation.TimeKey] = observation.FeatureRecord()
	}

	return records, nil
}

// MapsForSession returns every present student's feed in one query, keyed
// by student ID, for the densifier's polling cycle.
func (r *observationRepository) MapsForSession(ctx context.Context, sessionID uint) (map[uint]map[string]engagement.FeatureRecord, error) {
	var observations []models.Observation
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&observations).Error; err != nil {
		return nil, err
	}

	feeds := make(map[uint]map[string]engagement.FeatureRecord)
	for _, observation := range observations {
		feed, ok := feeds[observation.StudentID]
		if !ok {
			feed = make(map[string]engagement.FeatureRecord)
			feeds[observation.StudentID] = feed
		}
		feed[observation.TimeKey] = observation.FeatureRecord()
	}

	return feeds, nil
}

func (r *observationRepository) Create(ctx context.Context, observation *models.Observation) error {
	return r.db.WithContext(ctx).Create(observation).Error
}
