package notify

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// LogSink records notifications in the service log. Actual delivery (email,
// portal inbox) is handled by the surrounding platform; this service only
// emits the events.
type LogSink struct {
	log zerolog.Logger
}

func NewLogSink(log zerolog.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Notify(_ context.Context, userID uuid.UUID, kind string, payload map[string]any) error {
	s.log.Info().
		Str("user_id", userID.String()).
		Str("kind", kind).
		Interface("payload", payload).
		Msg("notification emitted")
	return nil
}
