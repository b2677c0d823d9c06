package repositories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/meetsync-team/meetsync/internal/domain/entities"
)

// CallbackApply carries the fields written by a successful callback apply.
type CallbackApply struct {
	Status       entities.ProcessingStatus
	AnalysisData datatypes.JSON
	OverallScore *float64
	Transcript   *string
}

// MeetingRepository defines persistence operations for meetings
type MeetingRepository interface {
	Create(ctx context.Context, meeting *entities.Meeting) error
	// FindByID loads a meeting with its meeting type and organization preloaded.
	FindByID(ctx context.Context, id uuid.UUID) (*entities.Meeting, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status entities.ProcessingStatus) error
	// SetCallbackToken stores a freshly minted one-time token, overwriting any
	// prior unused token.
	SetCallbackToken(ctx context.Context, id uuid.UUID, token string) error
	// ApplyCallback performs the compare-and-clear conditional update: fields
	// are written and the token cleared only where the stored token matches
	// and the meeting is not already completed. Returns the number of rows
	// affected; zero means the guard failed and nothing was mutated.
	ApplyCallback(ctx context.Context, id uuid.UUID, token string, apply CallbackApply) (int64, error)
}
