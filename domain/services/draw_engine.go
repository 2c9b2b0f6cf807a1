package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"lottery/domain/entities"
	"lottery/domain/interfaces"
	"lottery/events"

	log "github.com/sirupsen/logrus"
)

// drawEngine implements the draw state machine. State is never cached: it is
// always derived from the result store, so a restart resumes in the right
// state and several processes can share one store.
type drawEngine struct {
	// mu serializes check-then-commit and check-then-clear
	mu sync.Mutex

	roster     entities.Roster
	results    interfaces.ResultStore
	authorizer interfaces.Authorizer
	publisher  interfaces.EventPublisher
	sampler    *Sampler
	now        func() time.Time
}

// EngineOption customizes a draw engine
type EngineOption func(*drawEngine)

// WithRandomSource replaces the crypto/rand source, for tests
func WithRandomSource(source interfaces.RandomSource) EngineOption {
	return func(e *drawEngine) {
		e.sampler = NewSampler(source)
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) EngineOption {
	return func(e *drawEngine) {
		e.now = now
	}
}

// NewDrawEngine creates a new draw engine over a loaded roster
func NewDrawEngine(
	roster entities.Roster,
	results interfaces.ResultStore,
	authorizer interfaces.Authorizer,
	publisher interfaces.EventPublisher,
	opts ...EngineOption,
) interfaces.DrawEngine {
	e := &drawEngine{
		roster:     roster,
		results:    results,
		authorizer: authorizer,
		publisher:  publisher,
		sampler:    NewSampler(nil),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Status reports the lock state of the current round
func (e *drawEngine) Status(ctx context.Context) (entities.DrawState, error) {
	exists, err := e.results.Exists(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to check draw lock: %w", err)
	}
	return entities.StateFor(exists), nil
}

// PickWinners draws request.RequestedCount distinct winners and commits them
func (e *drawEngine) PickWinners(ctx context.Context, request entities.DrawRequest) (*entities.DrawResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	exists, err := e.results.Exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to check draw lock: %w", err)
	}
	if exists {
		log.WithField("requested", request.RequestedCount).Warn("Draw refused, round is already locked")
		return nil, entities.ErrAlreadyDrawn
	}

	if err := request.Validate(e.roster.Size()); err != nil {
		return nil, err
	}

	winners, err := e.sampler.Sample(e.roster.Participants, request.RequestedCount)
	if err != nil {
		return nil, fmt.Errorf("failed to sample winners: %w", err)
	}

	result := entities.NewDrawResult(winners, e.roster.Columns, e.roster.Size(), e.now())

	if err := e.results.Commit(ctx, result); err != nil {
		if errors.Is(err, entities.ErrAlreadyLocked) {
			// Another writer committed between our check and our write
			log.WithField("resultID", result.ID).Warn("Draw lost the commit race, discarding result")
			return nil, fmt.Errorf("%w: another draw was committed first", entities.ErrAlreadyDrawn)
		}
		return nil, fmt.Errorf("failed to commit draw result: %w", err)
	}

	log.WithFields(log.Fields{
		"resultID":   result.ID,
		"winners":    len(result.Winners),
		"rosterSize": result.RosterSize,
	}).Info("Draw completed and locked")

	e.publish(events.DrawCompletedEvent{
		ResultID:       result.ID.String(),
		WinnerIDs:      result.WinnerIDs(),
		RequestedCount: result.RequestedCount,
		RosterSize:     result.RosterSize,
		CreatedAt:      result.CreatedAt,
	})

	return result, nil
}

// Reset clears the lock so a new round can be drawn
func (e *drawEngine) Reset(ctx context.Context, resetCredential string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.authorizer.CheckReset(resetCredential) {
		log.Warn("Reset refused, invalid reset passcode")
		e.publish(events.AuthorizationFailedEvent{Role: "reset"})
		return entities.ErrUnauthorized
	}

	exists, err := e.results.Exists(ctx)
	if err != nil {
		return fmt.Errorf("failed to check draw lock: %w", err)
	}
	if !exists {
		return entities.ErrNotLocked
	}

	// An unreadable record still holds the lock and must stay clearable
	var resultID string
	if existing, err := e.results.Load(ctx); err == nil {
		resultID = existing.ID.String()
	} else {
		log.WithError(err).Warn("Clearing a draw result that could not be read")
	}

	if err := e.results.Clear(ctx); err != nil {
		if errors.Is(err, entities.ErrNotFound) {
			return entities.ErrNotLocked
		}
		return fmt.Errorf("failed to clear draw result: %w", err)
	}

	log.WithField("resultID", resultID).Info("Draw lock cleared for a new round")

	e.publish(events.DrawResetEvent{
		ResultID: resultID,
		ResetAt:  e.now().UTC(),
	})

	return nil
}

// CurrentResult returns the committed result of this round
func (e *drawEngine) CurrentResult(ctx context.Context) (*entities.DrawResult, error) {
	result, err := e.results.Load(ctx)
	if errors.Is(err, entities.ErrNotFound) {
		return nil, entities.ErrNotLocked
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load draw result: %w", err)
	}
	return result, nil
}

// Roster returns the roster the engine draws from
func (e *drawEngine) Roster() entities.Roster {
	return e.roster
}

func (e *drawEngine) publish(event events.Event) {
	if e.publisher == nil {
		return
	}
	if err := e.publisher.Publish(event); err != nil {
		log.WithError(err).WithField("eventType", event.Type()).Error("Failed to publish event")
	}
}
