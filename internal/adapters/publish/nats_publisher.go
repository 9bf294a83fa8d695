package publish

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/mikey/phishscope/internal/core"
)

// NATSPublisher publishes unified verdicts to a NATS subject so downstream
// consumers (quarantine tooling, dashboards) can react to classifications.
type NATSPublisher struct {
	nc      *nats.Conn
	subject string
	logger  *zap.Logger
}

// verdictMessage is the wire shape of a published verdict.
type verdictMessage struct {
	Subject string              `json:"subject"`
	From    string              `json:"from"`
	Result  *core.UnifiedResult `json:"result"`
}

// NewNATSPublisher connects to the NATS server and returns a publisher for
// the given subject.
func NewNATSPublisher(url, subject string, logger *zap.Logger) (*NATSPublisher, error) {
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", url, err)
	}

	logger.Info("Connected to NATS",
		zap.String("url", url),
		zap.String("subject", subject))

	return &NATSPublisher{
		nc:      nc,
		subject: subject,
		logger:  logger,
	}, nil
}

// Publish sends the unified verdict as JSON. Failures are returned to the
// caller for logging; they never affect the verdict itself.
func (p *NATSPublisher) Publish(_ context.Context, email *core.Email, result *core.UnifiedResult) error {
	payload, err := json.Marshal(verdictMessage{
		Subject: email.Subject,
		From:    email.From,
		Result:  result,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal verdict message: %w", err)
	}

	if err := p.nc.Publish(p.subject, payload); err != nil {
		return fmt.Errorf("failed to publish verdict to %s: %w", p.subject, err)
	}

	return nil
}

// Close drains and closes the NATS connection.
func (p *NATSPublisher) Close() error {
	if p.nc != nil {
		p.nc.Close()
	}
	return nil
}
