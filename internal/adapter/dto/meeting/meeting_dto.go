package meeting

// MatchTypeRequest invokes scenario matching with an optional deal context
type MatchTypeRequest struct {
	OrganizationID string  `json:"organization_id" validate:"required,uuid"`
	PipelineID     *string `json:"pipeline_id,omitempty"`
	StageID        *string `json:"stage_id,omitempty"`
	DealStatus     *string `json:"deal_status,omitempty"`
}

// MatchTypeResponse reports the matched type, if any
type MatchTypeResponse struct {
	Matched       bool    `json:"matched"`
	MeetingTypeID *string `json:"meeting_type_id,omitempty"`
	Name          *string `json:"name,omitempty"`
	Source        string  `json:"source"`
}
