package services

import (
	"context"
	"fmt"
	"time"

	"lottery/domain/entities"
	"lottery/domain/interfaces"
	"lottery/events"

	log "github.com/sirupsen/logrus"
)

// RosterImportService copies a roster from a source (usually the members
// spreadsheet) into the database in a single transaction
type RosterImportService struct {
	source     interfaces.RosterStore
	sourceName string
	uowFactory interfaces.UnitOfWorkFactory
}

// NewRosterImportService creates a new roster import service
func NewRosterImportService(source interfaces.RosterStore, sourceName string, uowFactory interfaces.UnitOfWorkFactory) *RosterImportService {
	return &RosterImportService{
		source:     source,
		sourceName: sourceName,
		uowFactory: uowFactory,
	}
}

// Import replaces the stored roster. It refuses while a draw result is
// committed unless force is set, since the locked result was drawn from the
// current roster.
func (s *RosterImportService) Import(ctx context.Context, force bool) (int, error) {
	roster, err := s.source.LoadRoster(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load roster from %s: %w", s.sourceName, err)
	}
	if err := roster.Validate(); err != nil {
		return 0, fmt.Errorf("roster from %s is invalid: %w", s.sourceName, err)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	locked, err := uow.ResultStore().Exists(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to check draw lock: %w", err)
	}
	if locked && !force {
		return 0, fmt.Errorf("%w: reset the round before replacing the roster", entities.ErrAlreadyDrawn)
	}

	if err := uow.ParticipantRepository().ReplaceAll(ctx, roster); err != nil {
		return 0, fmt.Errorf("failed to store roster: %w", err)
	}

	if err := uow.EventBus().Publish(events.RosterImportedEvent{
		ParticipantCount: roster.Size(),
		Source:           s.sourceName,
		ImportedAt:       time.Now().UTC(),
	}); err != nil {
		return 0, fmt.Errorf("failed to publish roster event: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit roster import: %w", err)
	}

	log.WithFields(log.Fields{
		"source":       s.sourceName,
		"participants": roster.Size(),
		"forced":       locked && force,
	}).Info("Roster imported")

	return roster.Size(), nil
}
