package interfaces

import (
	"context"
	"io"

	"lottery/domain/entities"
	"lottery/events"
)

// Authorizer validates operator and reset passcodes
type Authorizer interface {
	// CheckOperator returns true iff input matches the operator passcode
	CheckOperator(input string) bool

	// CheckReset returns true iff input matches the reset passcode
	CheckReset(input string) bool

	// Warnings lists configuration problems; an unset passcode makes the
	// matching check fail closed
	Warnings() []error
}

// DrawEngine runs the one-shot draw state machine
type DrawEngine interface {
	// Status reports whether a result is committed for this round
	Status(ctx context.Context) (entities.DrawState, error)

	// PickWinners draws and commits a result; fails with ErrAlreadyDrawn when
	// locked and ErrInvalidRequest when the count is out of bounds
	PickWinners(ctx context.Context, request entities.DrawRequest) (*entities.DrawResult, error)

	// Reset clears the lock after checking the reset passcode
	Reset(ctx context.Context, resetCredential string) error

	// CurrentResult returns the committed result; ErrNotLocked when unlocked
	CurrentResult(ctx context.Context) (*entities.DrawResult, error)

	// Roster returns the roster the engine draws from
	Roster() entities.Roster
}

// Exporter serializes a draw result into a downloadable tabular file
type Exporter interface {
	Export(w io.Writer, result *entities.DrawResult) error
	ContentType() string
	FileExtension() string
}

// EventPublisher publishes domain events
type EventPublisher interface {
	Publish(event events.Event) error
}

// RandomSource yields uniformly distributed integers in [0, n)
type RandomSource interface {
	Intn(n int) (int, error)
}
