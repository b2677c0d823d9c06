package webhook

// RelayResponse acknowledges an inbound provider webhook
type RelayResponse struct {
	Ignored   bool   `json:"ignored,omitempty"`
	MeetingID string `json:"meeting_id,omitempty"`
	Forwarded bool   `json:"forwarded"`
}
