package broadcast

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogPublisher writes events to the log instead of a broker. Used when no
// AMQP_URL is configured.
type LogPublisher struct {
	logger zerolog.Logger
}

func NewLogPublisher() *LogPublisher {
	return &LogPublisher{logger: log.With().Str("component", "broadcast").Logger()}
}

func (p *LogPublisher) Publish(_ context.Context, channel string, env Envelope) error {
	payload := env.Payload
	if len(payload) == 0 {
		payload = []byte("null")
	}
	p.logger.Info().
		Str("channel", channel).
		Str("event", env.Event).
		RawJSON("payload", payload).
		Msg("Broadcast event")
	return nil
}

func (p *LogPublisher) Close() error { return nil }
