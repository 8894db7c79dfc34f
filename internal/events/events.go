// Package events fires one outcome notification per Verify call onto a NATS
// JetStream subject, for external audit/alerting. Adapted from the teacher's
// bridge-message relay queue: same connect/stream-ensure/publish shape,
// repurposed from relaying cross-chain messages to announcing verification
// outcomes. Publication is fire-and-forget and entirely optional: an oracle
// with no NATS URL configured runs with a nil Publisher and never blocks on
// it.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// Outcome is the verdict of a single Verify call, published for any outcome
// kind the caller cares to enqueue.
type Outcome string

const (
	OutcomeVerified    Outcome = "verified"
	OutcomeDenied      Outcome = "denied"
	OutcomeNoConsensus Outcome = "no_consensus"
	OutcomeError       Outcome = "error"
)

// Event is the JSON payload published for one Verify call.
type Event struct {
	CorrelationID string    `json:"correlation_id"`
	WalletID      string    `json:"wallet_id"`
	Outcome       Outcome   `json:"outcome"`
	Reason        string    `json:"reason,omitempty"`
	ObservedAt    time.Time `json:"observed_at"`
}

// Publisher publishes verification-outcome events onto a fixed JetStream
// subject.
type Publisher struct {
	conn    *nats.Conn
	js      nats.JetStreamContext
	logger  zerolog.Logger
	stream  string
	subject string
}

// Config names the JetStream connection and stream/subject a Publisher
// publishes onto.
type Config struct {
	URLs    []string
	Stream  string
	Subject string
}

// NewPublisher connects to NATS and ensures the outcome stream exists. An
// empty URLs list means outcome publication is disabled;
// callers get a nil *Publisher and should treat that as "do nothing".
func NewPublisher(cfg Config, logger zerolog.Logger) (*Publisher, error) {
	if len(cfg.URLs) == 0 {
		return nil, nil
	}

	opts := []nats.Option{
		nats.Name("hot-validation-oracle"),
		nats.Timeout(10 * time.Second),
		nats.ReconnectWait(2 * time.Second),
		nats.MaxReconnects(-1),
	}
	if len(cfg.URLs) > 1 {
		opts = append(opts, nats.DontRandomize())
	}

	conn, err := nats.Connect(cfg.URLs[0], opts...)
	if err != nil {
		return nil, fmt.Errorf("events: connecting to NATS: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("events: creating JetStream context: %w", err)
	}

	p := &Publisher{
		conn:    conn,
		js:      js,
		logger:  logger.With().Str("component", "events").Logger(),
		stream:  cfg.Stream,
		subject: cfg.Subject,
	}

	if err := p.ensureStream(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("events: ensuring stream: %w", err)
	}

	p.logger.Info().
		Str("url", cfg.URLs[0]).
		Str("stream", p.stream).
		Str("subject", p.subject).
		Msg("outcome publisher connected")

	return p, nil
}

func (p *Publisher) ensureStream() error {
	if _, err := p.js.StreamInfo(p.stream); err == nil {
		return nil
	}

	_, err := p.js.AddStream(&nats.StreamConfig{
		Name:      p.stream,
		Subjects:  []string{p.subject},
		Storage:   nats.FileStorage,
		Retention: nats.LimitsPolicy,
		MaxAge:    7 * 24 * time.Hour,
		MaxMsgs:   1_000_000,
		Discard:   nats.DiscardOld,
	})
	if err != nil {
		return err
	}
	p.logger.Info().Str("stream", p.stream).Msg("outcome stream created")
	return nil
}

// Publish emits one Event. It never returns an error to the caller's
// critical path: a publish failure is logged, not propagated, since a
// missed audit event must never fail the Verify call it describes.
func (p *Publisher) Publish(event Event) {
	if p == nil {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		p.logger.Error().Err(err).Msg("failed to marshal outcome event")
		return
	}

	if _, err := p.js.Publish(p.subject, data); err != nil {
		p.logger.Error().
			Err(err).
			Str("correlation_id", event.CorrelationID).
			Msg("failed to publish outcome event")
		return
	}

	p.logger.Debug().
		Str("correlation_id", event.CorrelationID).
		Str("outcome", string(event.Outcome)).
		Msg("published outcome event")
}

// Close closes the underlying NATS connection. Safe to call on a nil
// Publisher.
func (p *Publisher) Close() {
	if p == nil || p.conn == nil {
		return
	}
	p.conn.Close()
}
