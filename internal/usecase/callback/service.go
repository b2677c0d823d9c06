package callback

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	apperrors "github.com/meetsync-team/meetsync/errors"
	"github.com/meetsync-team/meetsync/internal/domain/entities"
	"github.com/meetsync-team/meetsync/internal/domain/repositories"
)

// CrmNotifier triggers a background CRM sync after a completed analysis
type CrmNotifier interface {
	TriggerSync(meeting *entities.Meeting)
}

// Request is one inbound automation callback
type Request struct {
	MeetingID uuid.UUID
	Token     string
	Body      []byte
}

// Result reports the applied outcome
type Result struct {
	MeetingID uuid.UUID                 `json:"meeting_id"`
	Status    entities.ProcessingStatus `json:"status"`
	Duplicate bool                      `json:"duplicate,omitempty"`
	Shape     PayloadShape              `json:"-"`
}

// Service applies automation callbacks to meetings
type Service interface {
	Apply(ctx context.Context, req Request) (*Result, error)
}

type service struct {
	meetings repositories.MeetingRepository
	crm      CrmNotifier
	logger   *zap.Logger
}

// NewService creates the callback receiver
func NewService(meetings repositories.MeetingRepository, crm CrmNotifier, logger *zap.Logger) Service {
	return &service{meetings: meetings, crm: crm, logger: logger}
}

// Apply validates the one-time token and applies the analysis result. The
// write is a single conditional update that clears the token in the same
// statement, so two concurrent callbacks can never both win.
func (s *service) Apply(ctx context.Context, req Request) (*Result, error) {
	shaped, err := Classify(req.Body)
	if err != nil {
		return nil, err
	}
	analysis := shaped.Map()

	status := entities.ProcessingStatusCompleted
	if analysis.Failed {
		status = entities.ProcessingStatusFailed
	}

	var score *float64
	if analysis.OverallScore != nil {
		clamped := entities.ClampScore(*analysis.OverallScore)
		score = &clamped
	}

	encoded, err := json.Marshal(analysis)
	if err != nil {
		return nil, apperrors.ErrInternal(err)
	}

	apply := repositories.CallbackApply{
		Status:       status,
		AnalysisData: datatypes.JSON(encoded),
		OverallScore: score,
		Transcript:   analysis.Transcript,
	}

	affected, err := s.meetings.ApplyCallback(ctx, req.MeetingID, req.Token, apply)
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed(err)
	}

	if affected == 0 {
		// The guard failed: either the meeting already completed (benign
		// duplicate) or the token does not match (reject).
		meeting, err := s.meetings.FindByID(ctx, req.MeetingID)
		if err != nil {
			return nil, apperrors.ErrMeetingNotFound(req.MeetingID.String())
		}
		if meeting.IsCompleted() {
			s.logger.Info("callback: duplicate delivery ignored",
				zap.String("meeting_id", req.MeetingID.String()))
			return &Result{
				MeetingID: req.MeetingID,
				Status:    meeting.ProcessingStatus,
				Duplicate: true,
				Shape:     shaped.Shape,
			}, nil
		}
		return nil, apperrors.ErrCallbackTokenMismatch()
	}

	s.logger.Info("callback applied",
		zap.String("meeting_id", req.MeetingID.String()),
		zap.String("status", string(status)),
		zap.String("shape", string(shaped.Shape)))

	if status == entities.ProcessingStatusCompleted && s.crm != nil {
		if meeting, err := s.meetings.FindByID(ctx, req.MeetingID); err == nil {
			s.crm.TriggerSync(meeting)
		}
	}

	return &Result{MeetingID: req.MeetingID, Status: status, Shape: shaped.Shape}, nil
}
