// Package mailx delivers outbound email. The identity core only ever sends
// password-reset codes; delivery failures are logged, never surfaced to the
// requesting client.
package mailx

import "context"

// Message is a single outbound email.
type Message struct {
	To       string
	Subject  string
	TextBody string
}

// Mailer sends messages. Implementations must be safe for concurrent use.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}
