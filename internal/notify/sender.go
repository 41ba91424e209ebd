package notify

import "context"

// Message is a single outbound email.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Sender delivers messages to a recipient. Callers treat delivery as
// fire-and-forget: failures are logged, never surfaced to the user flow.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}
