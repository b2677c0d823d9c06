package handler

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "github.com/meetsync-team/meetsync/errors"
	meetingDto "github.com/meetsync-team/meetsync/internal/adapter/dto/meeting"
	"github.com/meetsync-team/meetsync/internal/domain/entities"
	"github.com/meetsync-team/meetsync/internal/usecase/matcher"
	"github.com/meetsync-team/meetsync/internal/usecase/payload"
)

// Meeting exposes meeting-type matching and payload preparation
type Meeting struct {
	matcher   matcher.Service
	assembler payload.Service
	logger    *zap.Logger
}

// NewMeetingHandler creates a new meeting handler
func NewMeetingHandler(matcherSvc matcher.Service, assembler payload.Service, logger *zap.Logger) *Meeting {
	return &Meeting{matcher: matcherSvc, assembler: assembler, logger: logger}
}

// MatchType runs scenario matching for a deal context
func (h *Meeting) MatchType(c echo.Context) error {
	var req meetingDto.MatchTypeRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument(err.Error()))
	}

	orgID, err := uuid.Parse(req.OrganizationID)
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument("organization_id must be a uuid"))
	}

	result, err := h.matcher.Match(c.Request().Context(), orgID, entities.DealContext{
		PipelineID: req.PipelineID,
		StageID:    req.StageID,
		DealStatus: req.DealStatus,
	})
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	resp := meetingDto.MatchTypeResponse{
		Matched: result.Matched,
		Source:  result.Source,
	}
	if result.MeetingType != nil {
		id := result.MeetingType.ID.String()
		name := result.MeetingType.Name
		resp.MeetingTypeID = &id
		resp.Name = &name
	}

	return HandleSuccess(h.logger, c, resp)
}

// PreparePayload assembles the outbound document for a meeting without
// forwarding it
func (h *Meeting) PreparePayload(c echo.Context) error {
	meetingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument("meeting id must be a uuid"))
	}

	doc, err := h.assembler.Assemble(c.Request().Context(), meetingID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, doc)
}
