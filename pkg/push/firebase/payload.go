package firebase

import (
	"github.com/eachchat/firebase-push/pkg/push"
)

// buildPayload assembles the FCM message object: the addressing field from
// the message, the extra provider fields verbatim, and the notification
// block with the body forced from the chat content. A top-level "data"
// field is dropped: data-only delivery is not supported by this transport.
func buildPayload(msg *push.Message) (map[string]interface{}, error) {
	if (msg.Token == "") == (msg.Topic == "") {
		return nil, push.NewError(push.KindInvalidArgument, `the firebase transport requires exactly one of the "token" or "topic" options`)
	}

	payload := make(map[string]interface{}, len(msg.Extra)+2)
	for k, v := range msg.Extra {
		switch k {
		case "token", "topic":
			return nil, push.NewError(push.KindInvalidArgument, "%q is a reserved field, set addressing on the message itself", k)
		case "data", "notification":
			continue
		}
		if emptyValue(v) {
			continue
		}
		payload[k] = v
	}

	if msg.Token != "" {
		payload["token"] = msg.Token
	} else {
		payload["topic"] = msg.Topic
	}

	// The caller's notification block is merged copy-on-write, then the
	// body is overridden: the chat content is authoritative.
	notification := make(map[string]interface{})
	if n, ok := msg.Extra["notification"].(map[string]interface{}); ok {
		for k, v := range n {
			notification[k] = v
		}
	}
	var title, body string
	if msg.Payload != nil {
		title = msg.Payload.Title
		body = msg.Payload.Content
	}
	if title != "" {
		notification["title"] = title
	}
	notification["body"] = body
	payload["notification"] = notification

	return payload, nil
}

func emptyValue(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case map[string]interface{}:
		return len(t) == 0
	case []interface{}:
		return len(t) == 0
	}
	return false
}
