package handler

import (
	"encoding/json"
	"io"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "github.com/meetsync-team/meetsync/errors"
	callbackDto "github.com/meetsync-team/meetsync/internal/adapter/dto/callback"
	callbackUsecase "github.com/meetsync-team/meetsync/internal/usecase/callback"
)

// Callback handles automation result callbacks
type Callback struct {
	callbacks callbackUsecase.Service
	logger    *zap.Logger
}

// NewCallbackHandler creates a new callback handler
func NewCallbackHandler(callbacks callbackUsecase.Service, logger *zap.Logger) *Callback {
	return &Callback{callbacks: callbacks, logger: logger}
}

// Receive applies one automation callback. The identifying envelope is bound
// and validated up front, the analysis body is forwarded raw because its
// shape varies per automation flow.
func (h *Callback) Receive(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidPayload())
	}

	var envelope callbackDto.Request
	if err := json.Unmarshal(body, &envelope); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidPayload())
	}
	if err := c.Validate(&envelope); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument(err.Error()))
	}

	meetingID, err := uuid.Parse(envelope.MeetingID)
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument("meeting_id must be a uuid"))
	}

	result, err := h.callbacks.Apply(c.Request().Context(), callbackUsecase.Request{
		MeetingID: meetingID,
		Token:     envelope.CallbackToken,
		Body:      body,
	})
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, callbackDto.Response{
		MeetingID: result.MeetingID.String(),
		Status:    string(result.Status),
		Duplicate: result.Duplicate,
	})
}
