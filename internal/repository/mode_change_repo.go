package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/fokus-go-api/internal/models"
)

// ModeChangeRepository exposes the per-session mode-change feed.
type ModeChangeRepository interface {
	MapForSession(ctx context.Context, sessionID uint) (map[string]string, error)
	ListForSession(ctx context.Context, sessionID uint) ([]models.ModeChange, error)
	Create(ctx context.Context, change *models.ModeChange) error
}

type modeChangeRepository struct {
	db *gorm.DB
}

// NewModeChangeRepository instantiates the repository.
func NewModeChangeRepository(db *gorm.DB) ModeChangeRepository {
	return &modeChangeRepository{db: db}
}

// MapForSession returns the raw time-key → mode mapping consumed by the
// timeline builder. Duplicate keys keep the latest declaration.
func (r *modeChangeRepository) MapForSession(ctx context.Context, sessionID uint) (map[string]string, error) {
	changes, err := r.ListForSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	feed := make(map[string]string, len(changes))
	for _, change := range changes {
		feed[change.TimeKey] = change.Mode
	}

	return feed, nil
}

func (r *modeChangeRepository) ListForSession(ctx context.Context, sessionID uint) ([]models.ModeChange, error) {
	var changes []models.ModeChange
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&changes).Error; err != nil {
		return nil, err
	}

	return changes, nil
}

func (r *modeChangeRepository) Create(ctx context.Context, change *models.ModeChange) error {
	return r.db.WithContext(ctx).Create(change).Error
}
