// Package outreach provides the outbound channel adapters (SMS and email)
// used by campaign batch workers.
package outreach

import (
	"context"
	"fmt"
)

// Sender delivers one message to one recipient. Failures surface as errors
// whose text is inspected by the failure classifier, so adapters should keep
// provider error messages intact.
type Sender interface {
	Send(ctx context.Context, recipient, body string) error
}

// Resolver resolves the channel adapter for a campaign. The adapter is
// resolved once per batch slice so the whole slice shares one connection.
type Resolver struct {
	sms   *SMSClient
	email *EmailSender
}

// NewResolver creates a channel resolver. Either adapter may be nil when the
// deployment has no credentials for that channel.
func NewResolver(sms *SMSClient, email *EmailSender) *Resolver {
	return &Resolver{sms: sms, email: email}
}

// Resolve returns the sender for the channel, or an error when the channel is
// unknown or not configured.
func (r *Resolver) Resolve(channel string) (Sender, error) {
	switch channel {
	case "sms":
		if r.sms == nil {
			return nil, fmt.Errorf("sms channel not configured")
		}
		return r.sms, nil
	case "email":
		if r.email == nil {
			return nil, fmt.Errorf("email channel not configured")
		}
		return r.email, nil
	default:
		return nil, fmt.Errorf("unknown channel %q", channel)
	}
}
