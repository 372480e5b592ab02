package notify

// Notification is the inbound chat notification. Exactly one of Token or
// Topic addresses it; Extra is passed through to the transport untouched.
type Notification struct {
	Token string `json:"token,omitempty"`
	Topic string `json:"topic,omitempty"`

	Title string `json:"title,omitempty"`
	Body  string `json:"body,omitempty"`

	Extra map[string]interface{} `json:"extra,omitempty"`

	// Transport selects the push client by scheme name. Empty means the
	// configured default.
	Transport string `json:"transport,omitempty"`
}

type Params struct {
	Notification Notification `json:"notification"`
}

type reply struct {
	MessageID string `json:"message_id,omitempty"`
	RequestID string `json:"request_id"`
}
