package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"rewards/domain/events"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/timestamppb"
)

const sourceService = "rewards"

// MessagePublisher sends raw payloads to a subject. NATSClient satisfies it.
type MessagePublisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

// LocalHandler reacts to an event inside the publishing process
type LocalHandler func(context.Context, events.Event) error

// NATSEventPublisher runs local handlers and forwards events to NATS.
// With a nil transport only local handlers run.
type NATSEventPublisher struct {
	transport     MessagePublisher
	subjectMapper *EventSubjectMapper
	mu            sync.RWMutex
	localHandlers map[events.EventType][]LocalHandler
}

// NewNATSEventPublisher creates a new NATS event publisher
func NewNATSEventPublisher(transport MessagePublisher, subjectMapper *EventSubjectMapper) *NATSEventPublisher {
	return &NATSEventPublisher{
		transport:     transport,
		subjectMapper: subjectMapper,
		localHandlers: make(map[events.EventType][]LocalHandler),
	}
}

// Publish invokes local handlers, then publishes the event envelope to its subject
func (p *NATSEventPublisher) Publish(event events.Event) error {
	ctx := context.Background()
	eventType := event.Type()

	p.mu.RLock()
	handlers := p.localHandlers[eventType]
	p.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			// Local handler errors never block other handlers or the bus
			log.WithFields(log.Fields{
				"eventType": eventType,
				"error":     err,
			}).Error("Local event handler failed")
		}
	}

	if p.transport == nil {
		return nil
	}

	envelopeID := uuid.NewString()
	data, err := encodeEnvelope(envelopeID, event)
	if err != nil {
		return err
	}

	subject := p.subjectMapper.MapEventToSubject(event)
	if err := p.transport.Publish(ctx, subject, data); err != nil {
		if strings.Contains(err.Error(), "no response from stream") {
			return nil
		}
		return fmt.Errorf("failed to publish event to NATS: %w", err)
	}

	log.WithFields(log.Fields{
		"eventType": eventType,
		"eventId":   envelopeID,
		"subject":   subject,
	}).Debug("Successfully published event to NATS")
	return nil
}

// RegisterLocalHandler registers a handler invoked in-process for every event of the type
func (p *NATSEventPublisher) RegisterLocalHandler(eventType events.EventType, handler LocalHandler) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.localHandlers[eventType] = append(p.localHandlers[eventType], handler)
	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(p.localHandlers[eventType]),
	}).Info("Registered local event handler")
}

// encodeEnvelope wraps the event in a protobuf Struct envelope serialized as protojson
func encodeEnvelope(eventID string, event events.Event) ([]byte, error) {
	raw, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event payload: %w", err)
	}

	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("failed to decode event payload: %w", err)
	}

	payload, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to build event payload: %w", err)
	}

	envelope := &structpb.Struct{
		Fields: map[string]*structpb.Value{
			"event_id":       structpb.NewStringValue(eventID),
			"event_type":     structpb.NewStringValue(string(event.Type())),
			"timestamp":      structpb.NewStringValue(timestamppb.Now().AsTime().Format(time.RFC3339Nano)),
			"source_service": structpb.NewStringValue(sourceService),
			"payload":        structpb.NewStructValue(payload),
		},
	}

	data, err := protojson.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event envelope: %w", err)
	}
	return data, nil
}
