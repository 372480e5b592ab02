package push

import "context"

// Message is the notification to be pushed. Exactly one of Token or Topic
// must be set: Token targets a single device, Topic targets a broadcast
// group.
type Message struct {
	// Token is the device registration token to address.
	Token string
	// Topic is the topic name to address.
	Topic string

	Payload *Payload

	// Extra carries provider-specific fields merged verbatim into the
	// outbound payload (android/apns blocks, custom notification fields).
	// The "token" and "topic" keys are reserved for addressing and must
	// not appear here.
	Extra map[string]interface{}
}

// Payload is the chat content of the message.
type Payload struct {
	BusinessID string
	Title      string
	Content    string
}

// Receipt is the result of a successful push. MessageID is the
// provider-assigned identifier and may be empty when the provider does not
// return one.
type Receipt struct {
	MessageID string
}

// Push is the interface for push transports.
type Push interface {
	// PushNotice pushes the message and returns the provider receipt.
	PushNotice(ctx context.Context, message *Message) (*Receipt, error)
}
