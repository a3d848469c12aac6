package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"kolimeet-service/internal/ports"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// SubjectPerfectMatch is suffixed with the reference owner's id so the push
// provider can subscribe per user or with a wildcard.
const SubjectPerfectMatch = "kolimeet.match.perfect"

// NATSConfig holds NATS connection settings.
type NATSConfig struct {
	URL           string
	Name          string
	ReconnectWait time.Duration
	MaxReconnects int
}

func DefaultNATSConfig() NATSConfig {
	return NATSConfig{
		URL:           nats.DefaultURL,
		Name:          "kolimeet-match-service",
		ReconnectWait: 2 * time.Second,
		MaxReconnects: -1,
	}
}

// NATSMatchNotifier hands perfect match events to the push notification
// provider over NATS.
type NATSMatchNotifier struct {
	conn    *nats.Conn
	publish func(subject string, data []byte) error
}

// NewNATSMatchNotifier connects to NATS and returns a ready notifier.
func NewNATSMatchNotifier(config NATSConfig) (*NATSMatchNotifier, error) {
	log := zap.L().Named("nats")

	opts := []nats.Option{
		nats.Name(config.Name),
		nats.ReconnectWait(config.ReconnectWait),
		nats.MaxReconnects(config.MaxReconnects),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn("disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			log.Info("connection closed")
		}),
	}

	nc, err := nats.Connect(config.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	log.Info("connected", zap.String("url", nc.ConnectedUrl()))

	return &NATSMatchNotifier{conn: nc, publish: nc.Publish}, nil
}

func (n *NATSMatchNotifier) NotifyPerfectMatches(ctx context.Context, event ports.PerfectMatchEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("notify perfect matches: encode event: %w", err)
	}

	subject := SubjectPerfectMatch + "." + event.OwnerID
	if err := n.publish(subject, data); err != nil {
		return fmt.Errorf("notify perfect matches: publish %s: %w", subject, err)
	}
	return nil
}

// Close drains pending publishes and closes the connection.
func (n *NATSMatchNotifier) Close() {
	if n.conn == nil {
		return
	}
	if err := n.conn.Drain(); err != nil {
		n.conn.Close()
	}
}
