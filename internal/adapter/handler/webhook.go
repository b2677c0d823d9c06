package handler

import (
	"io"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "github.com/meetsync-team/meetsync/errors"
	webhookDto "github.com/meetsync-team/meetsync/internal/adapter/dto/webhook"
	relayUsecase "github.com/meetsync-team/meetsync/internal/usecase/relay"
)

// maxWebhookBody caps inbound provider payloads at 2 MiB
const maxWebhookBody = 2 << 20

// Webhook handles inbound provider webhooks on token-addressed endpoints
type Webhook struct {
	relay  relayUsecase.Service
	logger *zap.Logger
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(relay relayUsecase.Service, logger *zap.Logger) *Webhook {
	return &Webhook{relay: relay, logger: logger}
}

// Receive ingests one provider webhook addressed by its endpoint token
func (h *Webhook) Receive(c echo.Context) error {
	token := c.Param("token")
	if token == "" {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument("endpoint token is required"))
	}

	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidPayload())
	}

	result, err := h.relay.Handle(c.Request().Context(), token, body)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	resp := webhookDto.RelayResponse{
		Ignored:   result.Ignored,
		Forwarded: result.Forwarded,
	}
	if result.MeetingID != nil {
		resp.MeetingID = result.MeetingID.String()
	}

	return HandleSuccess(h.logger, c, resp)
}
