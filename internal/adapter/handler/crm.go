package handler

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "github.com/meetsync-team/meetsync/errors"
	crmDto "github.com/meetsync-team/meetsync/internal/adapter/dto/crm"
	"github.com/meetsync-team/meetsync/internal/domain/entities"
	"github.com/meetsync-team/meetsync/internal/infrastructure/http/middleware"
	"github.com/meetsync-team/meetsync/internal/usecase/crmsync"
)

// Crm exposes the authenticated CRM facade
type Crm struct {
	crm    crmsync.Service
	logger *zap.Logger
}

// NewCrmHandler creates a new CRM handler
func NewCrmHandler(crm crmsync.Service, logger *zap.Logger) *Crm {
	return &Crm{crm: crm, logger: logger}
}

// Call proxies one operation to the organization's CRM
func (h *Crm) Call(c echo.Context) error {
	var req crmDto.CallRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument(err.Error()))
	}

	caller, orgID, err := callerAndOrg(c, req.OrganizationID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	result, err := h.crm.Call(c.Request().Context(), caller, orgID, req.Operation, req.Params)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, crmDto.CallResponse{Result: result})
}

// TestConnection validates stored credentials against the live CRM
func (h *Crm) TestConnection(c echo.Context) error {
	var req crmDto.TestConnectionRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument(err.Error()))
	}

	caller, orgID, err := callerAndOrg(c, req.OrganizationID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	if err := h.crm.TestConnection(c.Request().Context(), caller, orgID); err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, map[string]interface{}{"connected": true})
}

// StoreCredentials stores or replaces CRM credentials for an organization
func (h *Crm) StoreCredentials(c echo.Context) error {
	var req crmDto.CredentialsRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument(err.Error()))
	}

	caller, orgID, err := callerAndOrg(c, req.OrganizationID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	integration, err := h.crm.StoreCredentials(c.Request().Context(), caller, orgID, crmsync.CredentialsRequest{
		Platform:  entities.CrmPlatform(req.Platform),
		APIKey:    req.APIKey,
		APISecret: req.APISecret,
		Domain:    req.Domain,
		AuthMode:  entities.LivespaceAuthMode(req.AuthMode),
	})
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, crmDto.CredentialsResponse{
		IntegrationID: integration.ID.String(),
		Platform:      string(integration.Platform),
		IsActive:      integration.IsActive,
	})
}

// callerAndOrg pulls the authenticated user from context and parses the
// target organization id
func callerAndOrg(c echo.Context, rawOrgID string) (*entities.User, uuid.UUID, error) {
	caller, ok := middleware.UserFrom(c)
	if !ok {
		return nil, uuid.Nil, apperrors.ErrUnauthenticated()
	}
	orgID, err := uuid.Parse(rawOrgID)
	if err != nil {
		return nil, uuid.Nil, apperrors.ErrInvalidArgument("organization_id must be a uuid")
	}
	return caller, orgID, nil
}
