package infrastructure

import (
	"context"
	"errors"
	"fmt"

	"rewards/domain/events"
	"rewards/domain/interfaces"
)

// DeferredEventPublisher buffers the events of one unit of work. Nothing
// reaches the bus until Flush runs after commit.
type DeferredEventPublisher struct {
	publisher interfaces.EventPublisher
	pending   []events.Event
}

// NewDeferredEventPublisher wraps publisher for a single unit of work
func NewDeferredEventPublisher(publisher interfaces.EventPublisher) *DeferredEventPublisher {
	return &DeferredEventPublisher{publisher: publisher}
}

// Publish buffers event
func (p *DeferredEventPublisher) Publish(event events.Event) error {
	p.pending = append(p.pending, event)
	return nil
}

// Flush publishes the buffered events in order. A failed event does not stop
// the rest; the failures are joined into the returned error.
func (p *DeferredEventPublisher) Flush(ctx context.Context) error {
	var errs []error
	for _, event := range p.pending {
		if err := ctx.Err(); err != nil {
			errs = append(errs, fmt.Errorf("%s not published: %w", event.Type(), err))
			continue
		}
		if err := p.publisher.Publish(event); err != nil {
			errs = append(errs, fmt.Errorf("%s not published: %w", event.Type(), err))
		}
	}
	p.pending = nil
	return errors.Join(errs...)
}

// Discard drops the buffered events of a rolled back unit of work
func (p *DeferredEventPublisher) Discard() {
	p.pending = nil
}

// Pending returns the number of buffered events
func (p *DeferredEventPublisher) Pending() int {
	return len(p.pending)
}
