package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/meetsync-team/meetsync/internal/domain/entities"
	"github.com/meetsync-team/meetsync/internal/domain/repositories"
)

// meetingRepository implements the MeetingRepository interface
type meetingRepository struct {
	db *gorm.DB
}

// NewMeetingRepository creates a new meeting repository
func NewMeetingRepository(db *gorm.DB) repositories.MeetingRepository {
	return &meetingRepository{db: db}
}

// Create creates a new meeting
func (r *meetingRepository) Create(ctx context.Context, meeting *entities.Meeting) error {
	return r.db.WithContext(ctx).Create(meeting).Error
}

// FindByID retrieves a meeting with its meeting type and organization
func (r *meetingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.Meeting, error) {
	var meeting entities.Meeting
	err := r.db.WithContext(ctx).
		Preload("MeetingType").
		Preload("Organization").
		Where("id = ?", id).
		First(&meeting).Error

	if err != nil {
		return nil, err
	}
	return &meeting, nil
}

// UpdateStatus updates the processing status
func (r *meetingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entities.ProcessingStatus) error {
	return r.db.WithContext(ctx).
		Model(&entities.Meeting{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"processing_status": status,
			"updated_at":        time.Now().UTC(),
		}).
		Error
}

// SetCallbackToken stores a freshly minted one-time callback token
func (r *meetingRepository) SetCallbackToken(ctx context.Context, id uuid.UUID, token string) error {
	return r.db.WithContext(ctx).
		Model(&entities.Meeting{}).
		Where("id = ?", id).
		Update("callback_token", token).
		Error
}

// ApplyCallback writes the callback result and clears the token in one
// conditional update. The WHERE clause is the single-use guard: it only hits
// rows whose stored token matches and whose status is not yet completed, so
// racing duplicate callbacks cannot both apply.
func (r *meetingRepository) ApplyCallback(ctx context.Context, id uuid.UUID, token string, apply repositories.CallbackApply) (int64, error) {
	updates := map[string]interface{}{
		"processing_status": apply.Status,
		"analysis_data":     apply.AnalysisData,
		"callback_token":    nil,
		"updated_at":        time.Now().UTC(),
	}
	if apply.OverallScore != nil {
		updates["overall_score"] = *apply.OverallScore
	}
	if apply.Transcript != nil {
		updates["transcript"] = *apply.Transcript
	}

	res := r.db.WithContext(ctx).
		Model(&entities.Meeting{}).
		Where("id = ? AND callback_token = ? AND processing_status <> ?", id, token, entities.ProcessingStatusCompleted).
		Updates(updates)

	return res.RowsAffected, res.Error
}
