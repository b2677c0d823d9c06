package handler

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "github.com/meetsync-team/meetsync/errors"
	webhookDto "github.com/meetsync-team/meetsync/internal/adapter/dto/webhook"
	"github.com/meetsync-team/meetsync/internal/infrastructure/http/middleware"
	relayUsecase "github.com/meetsync-team/meetsync/internal/usecase/relay"
)

// Admin exposes platform-administrator operations
type Admin struct {
	relay  relayUsecase.Service
	logger *zap.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(relay relayUsecase.Service, logger *zap.Logger) *Admin {
	return &Admin{relay: relay, logger: logger}
}

// RetryForward re-runs assembly and forwarding for a meeting
func (h *Admin) RetryForward(c echo.Context) error {
	caller, ok := middleware.UserFrom(c)
	if !ok {
		return HandleError(h.logger, c, apperrors.ErrUnauthenticated())
	}

	meetingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument("meeting id must be a uuid"))
	}

	result, err := h.relay.Retry(c.Request().Context(), caller, meetingID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	resp := webhookDto.RelayResponse{Forwarded: result.Forwarded}
	if result.MeetingID != nil {
		resp.MeetingID = result.MeetingID.String()
	}

	return HandleSuccess(h.logger, c, resp)
}
