package infrastructure

import (
	"rewards/application"
	"rewards/database"
	"rewards/domain/events"
	"rewards/domain/interfaces"
	"rewards/repository"
	"rewards/repository/memstore"
)

// UnitOfWorkFactory implements application.UnitOfWorkFactory.
// Every unit of work gets its own transactional publisher, flushed on commit.
type UnitOfWorkFactory struct {
	repoFactory interface {
		CreateWithPublisher(transactionalPublisher interfaces.TransactionalEventPublisher) application.UnitOfWork
	}
	eventPublisher interfaces.EventPublisher
}

// NewUnitOfWorkFactory creates a factory over PostgreSQL
func NewUnitOfWorkFactory(db *database.DB, eventPublisher interfaces.EventPublisher) *UnitOfWorkFactory {
	return &UnitOfWorkFactory{
		repoFactory:    repository.NewUnitOfWorkFactory(db),
		eventPublisher: eventPublisher,
	}
}

// NewMemoryUnitOfWorkFactory creates a factory over the in-memory store
func NewMemoryUnitOfWorkFactory(store *memstore.Store, eventPublisher interfaces.EventPublisher) *UnitOfWorkFactory {
	return &UnitOfWorkFactory{
		repoFactory:    memstore.NewUnitOfWorkFactory(store),
		eventPublisher: eventPublisher,
	}
}

// RegisterLocalHandler registers an in-process handler when the publisher supports it
func (f *UnitOfWorkFactory) RegisterLocalHandler(eventType events.EventType, handler LocalHandler) {
	if natsPublisher, ok := f.eventPublisher.(*NATSEventPublisher); ok {
		natsPublisher.RegisterLocalHandler(eventType, handler)
	}
}

// Create creates a new UnitOfWork with a transactional event publisher
func (f *UnitOfWorkFactory) Create() application.UnitOfWork {
	return f.repoFactory.CreateWithPublisher(NewDeferredEventPublisher(f.eventPublisher))
}
