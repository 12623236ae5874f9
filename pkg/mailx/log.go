package mailx

import (
	"context"
	"log/slog"
)

// LogMailer writes messages to the log instead of sending them. Default in
// dev environments so reset codes are visible without an SES account.
// The body (which contains the code) is logged at debug level only.
type LogMailer struct {
	Logger *slog.Logger
}

func (m *LogMailer) Send(_ context.Context, msg Message) error {
	logger := m.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("mail (not sent)", "to", msg.To, "subject", msg.Subject)
	logger.Debug("mail body", "body", msg.TextBody)
	return nil
}
