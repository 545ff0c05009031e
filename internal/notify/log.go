package notify

import (
	"context"

	"github.com/rs/zerolog"
)

// Log writes notifications to the logger instead of sending them. Used in development.
type Log struct {
	log zerolog.Logger
}

var _ Dispatcher = (*Log)(nil)

// NewLog creates a logging dispatcher.
func NewLog(log zerolog.Logger) *Log {
	return &Log{log: log.With().Str("component", "mail_log").Logger()}
}

func (l *Log) Notify(_ context.Context, to, subject, body string) error {
	if err := validate(to, subject, body); err != nil {
		return err
	}
	l.log.Info().
		Str("to", to).
		Str("subject", subject).
		Str("body", body).
		Msg("Email (not sent)")
	return nil
}
