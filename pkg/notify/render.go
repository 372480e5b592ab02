package notify

import (
	"fmt"

	"github.com/eachchat/firebase-push/pkg/push"
)

type PresentationConfig struct {
	// DefaultTitle is used when the notification carries no title.
	DefaultTitle string `yaml:"default_title"`
	// DefaultBody is used when the notification carries no body.
	DefaultBody string `yaml:"default_body"`
	// MaxBodyRunes truncates long chat bodies. 0 disables truncation.
	MaxBodyRunes int `yaml:"max_body_runes"`
}

func (c *PresentationConfig) Validate() error {
	if c.DefaultTitle == "" {
		return fmt.Errorf("default title is required")
	}
	if c.DefaultBody == "" {
		c.DefaultBody = "You have a new message"
	}
	if c.MaxBodyRunes < 0 {
		return fmt.Errorf("max body runes must not be negative")
	}
	return nil
}

// renderPayload fills in presentation defaults so a sparse chat event still
// produces a readable notification.
func renderPayload(n *Notification, cfg *PresentationConfig, businessID string) *push.Payload {
	title := n.Title
	if title == "" {
		title = cfg.DefaultTitle
	}

	body := n.Body
	if body == "" {
		body = cfg.DefaultBody
	}
	if cfg.MaxBodyRunes > 0 {
		if runes := []rune(body); len(runes) > cfg.MaxBodyRunes {
			body = string(runes[:cfg.MaxBodyRunes]) + "…"
		}
	}

	return &push.Payload{
		BusinessID: businessID,
		Title:      title,
		Content:    body,
	}
}
