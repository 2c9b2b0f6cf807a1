package repository

import (
	"context"
	"errors"
	"fmt"

	"lottery/database"
	"lottery/domain/entities"
	"lottery/domain/interfaces"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"
)

// DrawResultRepository is the Postgres result store. The draw_results table
// has a single permitted row, so the primary key makes commit a check-and-set.
type DrawResultRepository struct {
	q queryable
}

// NewDrawResultRepository creates a new draw result repository
func NewDrawResultRepository(db *database.DB) *DrawResultRepository {
	return &DrawResultRepository{q: db.Pool}
}

// newDrawResultRepositoryWithTx creates a new draw result repository with a transaction
func newDrawResultRepositoryWithTx(tx queryable) interfaces.ResultStore {
	return &DrawResultRepository{q: tx}
}

// Exists returns true if a result is committed
func (r *DrawResultRepository) Exists(ctx context.Context) (bool, error) {
	var exists bool
	if err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM draw_results)`).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check draw result: %w: %w", entities.ErrStoreUnavailable, err)
	}
	return exists, nil
}

// Load returns the committed result
func (r *DrawResultRepository) Load(ctx context.Context) (*entities.DrawResult, error) {
	query := `
		SELECT result_id, winners, columns, requested_count, roster_size, created_at
		FROM draw_results
		WHERE slot = 1
	`

	result, err := scanDrawResult(r.q.QueryRow(ctx, query))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, entities.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load draw result: %w", err)
	}
	return result, nil
}

// Commit inserts the result unless one already exists
func (r *DrawResultRepository) Commit(ctx context.Context, result *entities.DrawResult) error {
	if err := result.Validate(); err != nil {
		return fmt.Errorf("refusing to store invalid result: %w", err)
	}

	winners, err := json.Marshal(result.Winners)
	if err != nil {
		return fmt.Errorf("failed to encode winners: %w", err)
	}
	columns, err := json.Marshal(nonNilColumns(result.Columns))
	if err != nil {
		return fmt.Errorf("failed to encode columns: %w", err)
	}

	query := `
		INSERT INTO draw_results (slot, result_id, winners, columns, requested_count, roster_size, created_at)
		VALUES (1, $1, $2, $3, $4, $5, $6)
		ON CONFLICT (slot) DO NOTHING
	`

	tag, err := r.q.Exec(ctx, query,
		result.ID,
		winners,
		columns,
		result.RequestedCount,
		result.RosterSize,
		result.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert draw result: %w: %w", entities.ErrStoreUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		return entities.ErrAlreadyLocked
	}
	return nil
}

// Clear removes the committed result
func (r *DrawResultRepository) Clear(ctx context.Context) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM draw_results WHERE slot = 1`)
	if err != nil {
		return fmt.Errorf("failed to clear draw result: %w: %w", entities.ErrStoreUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		return entities.ErrNotFound
	}
	return nil
}

func scanDrawResult(row pgx.Row) (*entities.DrawResult, error) {
	var (
		result           entities.DrawResult
		winners, columns []byte
	)
	if err := row.Scan(
		&result.ID,
		&winners,
		&columns,
		&result.RequestedCount,
		&result.RosterSize,
		&result.CreatedAt,
	); err != nil {
		return nil, err
	}
	if err := decodeResultJSON(&result, winners, columns); err != nil {
		return nil, err
	}
	result.CreatedAt = result.CreatedAt.UTC()
	return &result, nil
}

func decodeResultJSON(result *entities.DrawResult, winners, columns []byte) error {
	if err := json.Unmarshal(winners, &result.Winners); err != nil {
		return fmt.Errorf("failed to decode winners: %w", err)
	}
	if err := json.Unmarshal(columns, &result.Columns); err != nil {
		return fmt.Errorf("failed to decode columns: %w", err)
	}
	return nil
}

func nonNilColumns(columns []string) []string {
	if columns == nil {
		return []string{}
	}
	return columns
}
