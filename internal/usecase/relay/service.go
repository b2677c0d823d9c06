package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	apperrors "github.com/meetsync-team/meetsync/errors"
	"github.com/meetsync-team/meetsync/internal/domain/entities"
	"github.com/meetsync-team/meetsync/internal/domain/repositories"
	"github.com/meetsync-team/meetsync/internal/usecase/matcher"
	"github.com/meetsync-team/meetsync/internal/usecase/payload"
)

// Result is the outcome reported to the webhook sender
type Result struct {
	Ignored   bool       `json:"ignored,omitempty"`
	MeetingID *uuid.UUID `json:"meeting_id,omitempty"`
	Forwarded bool       `json:"forwarded"`
	Source    string     `json:"source,omitempty"`
}

// Service ingests provider webhooks and relays assembled documents downstream
type Service interface {
	Handle(ctx context.Context, endpointToken string, body []byte) (*Result, error)
	// Retry re-runs assembly and forwarding for an existing meeting.
	// Restricted to super admins.
	Retry(ctx context.Context, caller *entities.User, meetingID uuid.UUID) (*Result, error)
}

type service struct {
	webhooks       repositories.WebhookRepository
	meetings       repositories.MeetingRepository
	matcher        matcher.Service
	assembler      payload.Service
	httpClient     *http.Client
	forwardTimeout time.Duration
	logger         *zap.Logger
}

// NewService creates the relay service. forwardTimeout bounds synchronous
// organization forwards; user and global forwards run detached.
func NewService(
	webhooks repositories.WebhookRepository,
	meetings repositories.MeetingRepository,
	matcherSvc matcher.Service,
	assembler payload.Service,
	forwardTimeout time.Duration,
	logger *zap.Logger,
) Service {
	return &service{
		webhooks:  webhooks,
		meetings:  meetings,
		matcher:   matcherSvc,
		assembler: assembler,
		httpClient: &http.Client{
			Timeout: forwardTimeout,
		},
		forwardTimeout: forwardTimeout,
		logger:         logger,
	}
}

func (s *service) Handle(ctx context.Context, endpointToken string, body []byte) (*Result, error) {
	endpoint, err := s.webhooks.FindEndpointByToken(ctx, endpointToken)
	if err != nil {
		return nil, apperrors.ErrWebhookEndpointUnknown(endpointToken)
	}
	if !endpoint.IsActive {
		return nil, apperrors.ErrWebhookEndpointUnknown(endpointToken)
	}

	parsed := map[string]interface{}{}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &parsed); err != nil {
			return nil, apperrors.ErrInvalidPayload()
		}
	}

	source := classifySource(parsed)

	// Telephony providers emit events for every call phase. Only the final
	// hangup carries a complete recording, the rest are acknowledged and
	// dropped before any row is created.
	if source == entities.WebhookSourceTelnyx && telnyxEventType(parsed) != "call.hangup" {
		s.logger.Info("relay: telephony event ignored",
			zap.String("endpoint_token", endpointToken),
			zap.String("event_type", telnyxEventType(parsed)))
		s.audit(ctx, &entities.WebhookLog{
			WebhookEndpointID: &endpoint.ID,
			Trigger:           entities.RelayTriggerWebhook,
			Status:            "ignored",
			RequestBody:       datatypes.JSON(body),
		})
		return &Result{Ignored: true, Source: string(source)}, nil
	}

	if endpoint.OrganizationID == nil {
		return nil, apperrors.ErrConfigurationIncomplete("webhook endpoint has no organization")
	}

	meeting := &entities.Meeting{
		OrganizationID:   *endpoint.OrganizationID,
		UserID:           endpoint.UserID,
		ProcessingStatus: entities.ProcessingStatusPending,
		WebhookMetadata:  datatypes.JSON(body),
	}

	if deal := dealContextFrom(parsed); deal != nil {
		match, err := s.matcher.Match(ctx, *endpoint.OrganizationID, *deal)
		if err != nil {
			s.logger.Warn("relay: type match failed, continuing untyped",
				zap.Error(err))
		} else if match.Matched {
			meeting.MeetingTypeID = &match.MeetingType.ID
		}
	}

	if err := s.meetings.Create(ctx, meeting); err != nil {
		return nil, apperrors.ErrDBQueryFailed(err)
	}

	return s.assembleAndForward(ctx, endpoint, meeting, entities.RelayTriggerWebhook)
}

func (s *service) Retry(ctx context.Context, caller *entities.User, meetingID uuid.UUID) (*Result, error) {
	if caller == nil || !caller.IsSuperAdmin() {
		return nil, apperrors.ErrForbidden("retry is restricted to platform administrators")
	}
	meeting, err := s.meetings.FindByID(ctx, meetingID)
	if err != nil {
		return nil, apperrors.ErrMeetingNotFound(meetingID.String())
	}
	return s.assembleAndForward(ctx, nil, meeting, entities.RelayTriggerAdminRetry)
}

// assembleAndForward runs the shared back half of a relay: build the
// document, move the meeting to processing and deliver the document to the
// organization's target. Organization endpoints forward synchronously, user
// and global endpoints detach.
func (s *service) assembleAndForward(ctx context.Context, endpoint *entities.WebhookEndpoint, meeting *entities.Meeting, trigger entities.RelayTrigger) (*Result, error) {
	doc, err := s.assembler.Assemble(ctx, meeting.ID)
	if err != nil {
		s.failMeeting(ctx, meeting.ID)
		return nil, apperrors.ErrPayloadAssemblyFailed(err)
	}

	if err := s.meetings.UpdateStatus(ctx, meeting.ID, entities.ProcessingStatusProcessing); err != nil {
		return nil, apperrors.ErrDBQueryFailed(err)
	}

	target, err := s.resolveTarget(ctx, meeting)
	if err != nil {
		s.failMeeting(ctx, meeting.ID)
		return nil, err
	}

	var endpointID *uuid.UUID
	if endpoint != nil {
		endpointID = &endpoint.ID
	}

	synchronous := endpoint == nil || endpoint.Type == entities.WebhookEndpointTypeOrganization

	if synchronous {
		fctx, cancel := context.WithTimeout(ctx, s.forwardTimeout)
		defer cancel()
		if err := s.forward(fctx, endpointID, meeting.ID, trigger, target, doc); err != nil {
			s.failMeeting(context.WithoutCancel(ctx), meeting.ID)
			return nil, apperrors.ErrForwardFailed(target, err)
		}
		return &Result{MeetingID: &meeting.ID, Forwarded: true}, nil
	}

	meetingID := meeting.ID
	go func() {
		base := context.Background()
		fctx, cancel := context.WithTimeout(base, s.forwardTimeout)
		defer cancel()
		if err := s.forward(fctx, endpointID, meetingID, trigger, target, doc); err != nil {
			s.logger.Error("relay: detached forward failed",
				zap.String("meeting_id", meetingID.String()),
				zap.String("target", target),
				zap.Error(err))
			s.failMeeting(base, meetingID)
		}
	}()

	return &Result{MeetingID: &meeting.ID, Forwarded: true}, nil
}

// forward POSTs the document to the target and writes exactly one audit row,
// whatever the outcome. No automatic retries.
func (s *service) forward(ctx context.Context, endpointID *uuid.UUID, meetingID uuid.UUID, trigger entities.RelayTrigger, target string, doc *payload.Document) error {
	encoded, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}

	logRow := &entities.WebhookLog{
		WebhookEndpointID: endpointID,
		MeetingID:         &meetingID,
		Trigger:           trigger,
		ForwardedTo:       &target,
		RequestBody:       datatypes.JSON(encoded),
	}

	// The audit row must land even when the forward context has already
	// expired, notably on a forward that failed by hitting its deadline.
	auditCtx := context.WithoutCancel(ctx)

	start := time.Now()
	resp, err := s.post(ctx, target, encoded)
	logRow.DurationMs = time.Since(start).Milliseconds()

	if err != nil {
		logRow.Status = "failed"
		msg := err.Error()
		logRow.ErrorMessage = &msg
		s.audit(auditCtx, logRow)
		return err
	}
	defer resp.Body.Close()

	responseBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	responseText := string(responseBody)
	logRow.HTTPCode = &resp.StatusCode
	logRow.ResponseBody = &responseText

	if resp.StatusCode >= 400 {
		logRow.Status = "failed"
		msg := fmt.Sprintf("target returned status %d", resp.StatusCode)
		logRow.ErrorMessage = &msg
		s.audit(auditCtx, logRow)
		return fmt.Errorf("forward to %s returned status %d", target, resp.StatusCode)
	}

	logRow.Status = "forwarded"
	s.audit(auditCtx, logRow)
	return nil
}

func (s *service) post(ctx context.Context, target string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return s.httpClient.Do(req)
}

func (s *service) resolveTarget(ctx context.Context, meeting *entities.Meeting) (string, error) {
	org := meeting.Organization
	if org == nil {
		loaded, err := s.meetings.FindByID(ctx, meeting.ID)
		if err != nil || loaded.Organization == nil {
			return "", apperrors.ErrConfigurationIncomplete("meeting organization unavailable")
		}
		org = loaded.Organization
	}
	if !org.HasWebhookTarget() {
		return "", apperrors.ErrConfigurationIncomplete("organization has no webhook target url")
	}
	return *org.WebhookTargetURL, nil
}

func (s *service) failMeeting(ctx context.Context, id uuid.UUID) {
	if err := s.meetings.UpdateStatus(ctx, id, entities.ProcessingStatusFailed); err != nil {
		s.logger.Error("relay: failed to mark meeting failed",
			zap.String("meeting_id", id.String()),
			zap.Error(err))
	}
}

func (s *service) audit(ctx context.Context, row *entities.WebhookLog) {
	if err := s.webhooks.CreateLog(ctx, row); err != nil {
		s.logger.Error("relay: audit write failed", zap.Error(err))
	}
}

// classifySource inspects payload shape: telephony events carry a nested
// data.event_type, transcription payloads carry transcript or sentence data.
func classifySource(parsed map[string]interface{}) entities.WebhookSource {
	if telnyxEventType(parsed) != "" {
		return entities.WebhookSourceTelnyx
	}
	if _, ok := parsed["transcript"]; ok {
		return entities.WebhookSourceFireflies
	}
	if _, ok := parsed["sentences"]; ok {
		return entities.WebhookSourceFireflies
	}
	return entities.WebhookSourceGeneric
}

func telnyxEventType(parsed map[string]interface{}) string {
	data, ok := parsed["data"].(map[string]interface{})
	if !ok {
		return ""
	}
	eventType, _ := data["event_type"].(string)
	return eventType
}

// dealContextFrom extracts an optional CRM deal context from the inbound
// payload. Returns nil when no pipeline is present, which skips matching.
func dealContextFrom(parsed map[string]interface{}) *entities.DealContext {
	pipeline := stringField(parsed, "pipeline_id")
	if pipeline == nil {
		return nil
	}
	return &entities.DealContext{
		PipelineID: pipeline,
		StageID:    stringField(parsed, "stage_id"),
		DealStatus: stringField(parsed, "deal_status"),
	}
}

func stringField(parsed map[string]interface{}, key string) *string {
	value, ok := parsed[key].(string)
	if !ok || value == "" {
		return nil
	}
	return &value
}
