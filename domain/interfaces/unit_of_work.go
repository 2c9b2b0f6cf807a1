package interfaces

import "context"

// UnitOfWork groups repository calls into one database transaction
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	ParticipantRepository() ParticipantRepository
	ResultStore() ResultStore
	// EventBus returns a publisher whose events are delivered only after Commit
	EventBus() EventPublisher
}

// UnitOfWorkFactory creates units of work
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}
