package callback

// Request identifies the meeting and presents the one-time token. The
// analysis body itself is shape-classified from the raw payload, so it is
// not bound here.
type Request struct {
	MeetingID     string `json:"meeting_id" validate:"required,uuid"`
	CallbackToken string `json:"callback_token" validate:"required"`
}

// Response reports the applied outcome
type Response struct {
	MeetingID string `json:"meeting_id"`
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate,omitempty"`
}
