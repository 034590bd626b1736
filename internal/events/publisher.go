package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
)

// Subjects published by the gateway.
const (
	SubjectTxSubmitted    = "chainbank.tx.submitted"
	SubjectTxConfirmed    = "chainbank.tx.confirmed"
	SubjectTxFailed       = "chainbank.tx.failed"
	SubjectUserRegistered = "chainbank.user.registered"
)

// TxEvent is the payload published on transaction lifecycle subjects.
type TxEvent struct {
	Operation string `json:"operation"`
	TxHash    string `json:"tx_hash,omitempty"`
	From      string `json:"from,omitempty"`
	To        string `json:"to,omitempty"`
	AmountWei string `json:"amount_wei,omitempty"`
	Error     string `json:"error,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// Publisher publishes JSON events to NATS. A nil *Publisher is valid and
// drops all events, so the broker stays optional at runtime.
type Publisher struct {
	conn   *nats.Conn
	logger *logrus.Logger
}

// NewPublisher connects to the NATS server.
func NewPublisher(url string, logger *logrus.Logger) (*Publisher, error) {
	conn, err := nats.Connect(url,
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(10),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", url, err)
	}

	logger.WithField("url", url).Info("Connected to NATS")
	return &Publisher{conn: conn, logger: logger}, nil
}

// Publish marshals v and publishes it on subject. Publish failures are logged
// and swallowed; event delivery is best-effort.
func (p *Publisher) Publish(subject string, v interface{}) {
	if p == nil || p.conn == nil {
		return
	}

	data, err := json.Marshal(v)
	if err != nil {
		p.logger.WithFields(logrus.Fields{
			"subject": subject,
			"error":   err.Error(),
		}).Warn("Failed to marshal event")
		return
	}

	if err := p.conn.Publish(subject, data); err != nil {
		p.logger.WithFields(logrus.Fields{
			"subject": subject,
			"error":   err.Error(),
		}).Warn("Failed to publish event")
	}
}

// Close drains the connection.
func (p *Publisher) Close() {
	if p == nil || p.conn == nil {
		return
	}
	p.conn.Close()
}
