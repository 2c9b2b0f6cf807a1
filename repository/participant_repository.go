package repository

import (
	"context"
	"fmt"

	"lottery/database"
	"lottery/domain/entities"
	"lottery/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

// participantRepository stores the roster in the participants table, keeping
// spreadsheet row order in position
type participantRepository struct {
	q queryable
}

// NewParticipantRepository creates a new participant repository
func NewParticipantRepository(db *database.DB) interfaces.ParticipantRepository {
	return &participantRepository{q: db.Pool}
}

// newParticipantRepositoryWithTx creates a new participant repository with a transaction
func newParticipantRepositoryWithTx(tx queryable) interfaces.ParticipantRepository {
	return &participantRepository{q: tx}
}

// LoadRoster returns the stored roster in import order. An empty table is
// ErrMissingData, the same as a missing spreadsheet.
func (r *participantRepository) LoadRoster(ctx context.Context) (entities.Roster, error) {
	columns, err := r.loadColumns(ctx)
	if err != nil {
		return entities.Roster{}, err
	}

	query := `
		SELECT participant_id, name, fields
		FROM participants
		ORDER BY position
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return entities.Roster{}, fmt.Errorf("failed to query participants: %w: %w", entities.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	roster := entities.Roster{Columns: columns}
	for rows.Next() {
		var p entities.Participant
		if err := rows.Scan(&p.ID, &p.Name, &p.Fields); err != nil {
			return entities.Roster{}, fmt.Errorf("failed to scan participant: %w", err)
		}
		roster.Participants = append(roster.Participants, p)
	}
	if err := rows.Err(); err != nil {
		return entities.Roster{}, fmt.Errorf("error iterating participants: %w", err)
	}

	if roster.IsEmpty() {
		return entities.Roster{}, fmt.Errorf("%w: no participants have been imported", entities.ErrMissingData)
	}
	return roster, nil
}

func (r *participantRepository) loadColumns(ctx context.Context) ([]string, error) {
	rows, err := r.q.Query(ctx, `SELECT name FROM roster_columns ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query roster columns: %w: %w", entities.ErrStoreUnavailable, err)
	}
	columns, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to read roster columns: %w", err)
	}
	return columns, nil
}

// ReplaceAll swaps the stored roster for the given one atomically
func (r *participantRepository) ReplaceAll(ctx context.Context, roster entities.Roster) error {
	if err := roster.Validate(); err != nil {
		return err
	}

	return database.RunInTransaction(ctx, r.q, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM participants`); err != nil {
			return fmt.Errorf("failed to clear participants: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM roster_columns`); err != nil {
			return fmt.Errorf("failed to clear roster columns: %w", err)
		}

		columnRows := make([][]any, len(roster.Columns))
		for i, c := range roster.Columns {
			columnRows[i] = []any{i + 1, c}
		}
		if _, err := tx.CopyFrom(ctx,
			pgx.Identifier{"roster_columns"},
			[]string{"position", "name"},
			pgx.CopyFromRows(columnRows),
		); err != nil {
			return fmt.Errorf("failed to insert roster columns: %w", err)
		}

		copied, err := tx.CopyFrom(ctx,
			pgx.Identifier{"participants"},
			[]string{"position", "participant_id", "name", "fields"},
			pgx.CopyFromSlice(len(roster.Participants), func(i int) ([]any, error) {
				p := roster.Participants[i]
				fields := p.Fields
				if fields == nil {
					fields = map[string]string{}
				}
				return []any{i + 1, p.ID, p.Name, fields}, nil
			}),
		)
		if err != nil {
			return fmt.Errorf("failed to insert participants: %w", err)
		}
		if int(copied) != roster.Size() {
			return fmt.Errorf("inserted %d participants, expected %d", copied, roster.Size())
		}
		return nil
	})
}

// Count returns the number of stored participants
func (r *participantRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM participants`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count participants: %w: %w", entities.ErrStoreUnavailable, err)
	}
	return count, nil
}
