package repository

import (
	"context"
	"fmt"

	"lottery/database"
	"lottery/domain/interfaces"
	"lottery/events"

	"github.com/jackc/pgx/v5"
)

// unitOfWork implements the UnitOfWork interface
type unitOfWork struct {
	db               *database.DB
	tx               pgx.Tx
	ctx              context.Context
	transactionalBus *events.TransactionalBus
	participantRepo  interfaces.ParticipantRepository
	resultStore      interfaces.ResultStore
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory
func NewUnitOfWorkFactory(db *database.DB, eventBus *events.Bus) interfaces.UnitOfWorkFactory {
	return &unitOfWorkFactory{
		db:       db,
		eventBus: eventBus,
	}
}

type unitOfWorkFactory struct {
	db       *database.DB
	eventBus *events.Bus
}

func (f *unitOfWorkFactory) Create() interfaces.UnitOfWork {
	return &unitOfWork{
		db:               f.db,
		transactionalBus: events.NewTransactionalBus(f.eventBus),
	}
}

// Begin starts a new transaction
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.ctx = ctx

	u.participantRepo = newParticipantRepositoryWithTx(tx)
	u.resultStore = newDrawResultRepositoryWithTx(tx)

	return nil
}

// Commit commits the transaction and then delivers pending events
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	if err := u.tx.Commit(u.ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	u.tx = nil
	u.transactionalBus.Flush()

	return nil
}

// Rollback rolls back the transaction and drops pending events
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil // Nothing to rollback
	}

	err := u.tx.Rollback(u.ctx)
	if err != nil && err != pgx.ErrTxClosed {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	u.tx = nil
	u.transactionalBus.Discard()

	return nil
}

// ParticipantRepository returns the participant repository for this unit of work
func (u *unitOfWork) ParticipantRepository() interfaces.ParticipantRepository {
	if u.participantRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.participantRepo
}

// ResultStore returns the draw result store for this unit of work
func (u *unitOfWork) ResultStore() interfaces.ResultStore {
	if u.resultStore == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.resultStore
}

// EventBus returns the transactional event bus for this unit of work
func (u *unitOfWork) EventBus() interfaces.EventPublisher {
	return u.transactionalBus
}
