package interfaces

import (
	"context"

	"lottery/domain/entities"
)

// RosterStore loads the eligible participants for a round
type RosterStore interface {
	// LoadRoster returns the roster; fails with entities.ErrMissingData if the
	// backing source is absent
	LoadRoster(ctx context.Context) (entities.Roster, error)
}

// ResultStore persists the single draw result that locks a round
type ResultStore interface {
	// Exists returns true if a draw result is currently persisted
	Exists(ctx context.Context) (bool, error)

	// Load returns the persisted result or entities.ErrNotFound
	Load(ctx context.Context) (*entities.DrawResult, error)

	// Commit durably stores the result, failing with entities.ErrAlreadyLocked
	// if one already exists. The existence check and the write are atomic.
	Commit(ctx context.Context, result *entities.DrawResult) error

	// Clear deletes the persisted result, failing with entities.ErrNotFound
	// if nothing exists. Never leaves a partial record.
	Clear(ctx context.Context) error
}

// ParticipantRepository manages the stored roster table
type ParticipantRepository interface {
	RosterStore

	// ReplaceAll deletes the stored roster and inserts the given one
	ReplaceAll(ctx context.Context, roster entities.Roster) error

	// Count returns the number of stored participants
	Count(ctx context.Context) (int, error)
}
