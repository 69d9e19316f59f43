package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

const (
	natsClientName           = "rewards"
	natsReconnectWait        = 2 * time.Second
	natsMaxReconnectAttempts = 10

	// Events are kept long enough for downstream consumers to replay a week of ledger activity
	eventRetention = 7 * 24 * time.Hour
)

var errNotConnected = errors.New("not connected to NATS JetStream")

// NATSClient publishes ledger events to JetStream
type NATSClient struct {
	servers []string
	nc      *nats.Conn
	js      nats.JetStreamContext
}

// NewNATSClient creates a client for the given servers; call Connect before use
func NewNATSClient(servers []string) *NATSClient {
	return &NATSClient{servers: servers}
}

// Connect dials the servers and opens a JetStream context
func (c *NATSClient) Connect(ctx context.Context) error {
	opts := []nats.Option{
		nats.Name(natsClientName),
		nats.MaxReconnects(natsMaxReconnectAttempts),
		nats.ReconnectWait(natsReconnectWait),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			entry := log.WithField("servers", c.servers)
			if err != nil {
				entry.WithError(err).Error("NATS disconnected with error")
				return
			}
			entry.Warn("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.WithField("server", nc.ConnectedUrlRedacted()).Info("NATS reconnected")
		}),
	}
	if deadline, ok := ctx.Deadline(); ok {
		opts = append(opts, nats.Timeout(time.Until(deadline)))
	}

	nc, err := nats.Connect(strings.Join(c.servers, ","), opts...)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return fmt.Errorf("failed to create JetStream context: %w", err)
	}

	c.nc, c.js = nc, js
	log.WithField("server", nc.ConnectedUrlRedacted()).Info("Connected to NATS with JetStream")
	return nil
}

// EnsureStream creates the event stream, or widens an existing one that is
// missing any of subjects
func (c *NATSClient) EnsureStream(streamName string, subjects []string) error {
	if c.js == nil {
		return errNotConnected
	}

	info, err := c.js.StreamInfo(streamName)
	switch {
	case errors.Is(err, nats.ErrStreamNotFound):
		return c.createStream(streamName, subjects)
	case err != nil:
		return fmt.Errorf("failed to look up stream %s: %w", streamName, err)
	}

	missing := missingSubjects(info.Config.Subjects, subjects)
	if len(missing) == 0 {
		log.WithField("stream", streamName).Debug("JetStream stream is up to date")
		return nil
	}

	updated := info.Config
	updated.Subjects = append(slices.Clone(updated.Subjects), missing...)
	if _, err := c.js.UpdateStream(&updated); err != nil {
		return fmt.Errorf("failed to update stream %s: %w", streamName, err)
	}
	log.WithFields(log.Fields{
		"stream": streamName,
		"added":  missing,
	}).Info("Added event subjects to JetStream stream")
	return nil
}

func (c *NATSClient) createStream(streamName string, subjects []string) error {
	_, err := c.js.AddStream(&nats.StreamConfig{
		Name:        streamName,
		Description: "Rewards ledger domain events",
		Subjects:    subjects,
		Retention:   nats.LimitsPolicy,
		MaxAge:      eventRetention,
		Storage:     nats.FileStorage,
		Replicas:    1,
	})
	if err != nil {
		return fmt.Errorf("failed to create stream %s: %w", streamName, err)
	}

	log.WithFields(log.Fields{
		"stream":   streamName,
		"subjects": len(subjects),
	}).Info("Created JetStream stream")
	return nil
}

// missingSubjects returns the entries of want that have is lacking
func missingSubjects(have, want []string) []string {
	var missing []string
	for _, subject := range want {
		if !slices.Contains(have, subject) {
			missing = append(missing, subject)
		}
	}
	return missing
}

// Publish stores data on subject and waits for the JetStream ack
func (c *NATSClient) Publish(ctx context.Context, subject string, data []byte) error {
	if c.js == nil {
		return errNotConnected
	}

	ack, err := c.js.Publish(subject, data, nats.Context(ctx))
	if err != nil {
		return fmt.Errorf("failed to publish message to subject %s: %w", subject, err)
	}

	log.WithFields(log.Fields{
		"subject":  subject,
		"size":     len(data),
		"sequence": ack.Sequence,
	}).Debug("Published event to NATS")
	return nil
}

// Healthy reports an error while the connection is down or reconnecting
func (c *NATSClient) Healthy(_ context.Context) error {
	if c.nc == nil {
		return errNotConnected
	}
	if status := c.nc.Status(); status != nats.CONNECTED {
		return fmt.Errorf("NATS connection is %s", status)
	}
	return nil
}

// Close drains pending publishes and closes the connection
func (c *NATSClient) Close() error {
	if c.nc == nil {
		return nil
	}
	if err := c.nc.Drain(); err != nil {
		c.nc.Close()
		return fmt.Errorf("failed to drain NATS connection: %w", err)
	}
	log.Info("NATS connection closed")
	return nil
}
