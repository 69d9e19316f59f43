package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"rewards/domain/entities"
	"rewards/domain/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedMessage struct {
	subject string
	data    []byte
}

type fakeTransport struct {
	messages []capturedMessage
	err      error
}

func (f *fakeTransport) Publish(ctx context.Context, subject string, data []byte) error {
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, capturedMessage{subject: subject, data: data})
	return nil
}

func TestNATSEventPublisher_PublishesEnvelope(t *testing.T) {
	t.Parallel()

	transport := &fakeTransport{}
	publisher := NewNATSEventPublisher(transport, NewEventSubjectMapper())

	event := events.BalanceChangedEvent{
		UserID:          "user-1",
		Currency:        entities.CurrencyPoints,
		OldBalance:      10,
		NewBalance:      25,
		Amount:          15,
		TransactionType: entities.TransactionTypeMissionReward,
		LedgerEntryID:   "entry-1",
	}
	require.NoError(t, publisher.Publish(event))
	require.Len(t, transport.messages, 1)
	assert.Equal(t, "rewards.balance_changed", transport.messages[0].subject)

	var envelope struct {
		EventID       string         `json:"event_id"`
		EventType     string         `json:"event_type"`
		SourceService string         `json:"source_service"`
		Timestamp     string         `json:"timestamp"`
		Payload       map[string]any `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(transport.messages[0].data, &envelope))
	assert.NotEmpty(t, envelope.EventID)
	assert.NotEmpty(t, envelope.Timestamp)
	assert.Equal(t, "balance_changed", envelope.EventType)
	assert.Equal(t, "rewards", envelope.SourceService)
	assert.Equal(t, "user-1", envelope.Payload["user_id"])
	assert.Equal(t, float64(25), envelope.Payload["new_balance"])
}

func TestNATSEventPublisher_LocalHandlers(t *testing.T) {
	t.Parallel()

	transport := &fakeTransport{err: errors.New("nats down")}
	publisher := NewNATSEventPublisher(transport, NewEventSubjectMapper())

	var received []events.Event
	publisher.RegisterLocalHandler(events.EventTypePityTriggered, func(ctx context.Context, event events.Event) error {
		received = append(received, event)
		return nil
	})
	publisher.RegisterLocalHandler(events.EventTypePityTriggered, func(ctx context.Context, event events.Event) error {
		return errors.New("handler failure is logged only")
	})

	event := events.PityTriggeredEvent{UserID: "user-1", PrizeID: "console", RewardAmount: 100}
	err := publisher.Publish(event)

	assert.Error(t, err)
	assert.Equal(t, []events.Event{event}, received)
}

func TestNATSEventPublisher_LocalOnly(t *testing.T) {
	t.Parallel()

	publisher := NewNATSEventPublisher(nil, NewEventSubjectMapper())

	calls := 0
	publisher.RegisterLocalHandler(events.EventTypeAccountOpened, func(ctx context.Context, event events.Event) error {
		calls++
		return nil
	})

	require.NoError(t, publisher.Publish(events.AccountOpenedEvent{UserID: "user-1"}))
	require.NoError(t, publisher.Publish(events.MissionCompletedEvent{UserID: "user-1"}))
	assert.Equal(t, 1, calls)
}

func TestEventSubjectMapper(t *testing.T) {
	t.Parallel()

	mapper := NewEventSubjectMapper()

	subjects := mapper.GetAllSubjects()
	assert.Len(t, subjects, len(events.AllEventTypes))
	assert.Contains(t, subjects, "rewards.withdrawal_processed")

	for _, eventType := range events.AllEventTypes {
		assert.Equal(t, eventType, mapper.MapSubjectToEventType("rewards."+string(eventType)))
	}
}
