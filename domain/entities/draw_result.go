package entities

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DrawRequest asks for a number of distinct winners
type DrawRequest struct {
	RequestedCount int
}

// Validate checks the requested count against the roster size
func (r DrawRequest) Validate(rosterSize int) error {
	if rosterSize == 0 {
		return fmt.Errorf("%w: roster is empty", ErrInvalidRequest)
	}
	if r.RequestedCount < 1 || r.RequestedCount > rosterSize {
		return fmt.Errorf("%w: requested %d winners, must be between 1 and %d",
			ErrInvalidRequest, r.RequestedCount, rosterSize)
	}
	return nil
}

// DrawResult is the committed outcome of a draw. Winners are kept in the
// order they were drawn.
type DrawResult struct {
	ID             uuid.UUID     `json:"id" db:"result_id"`
	Winners        []Participant `json:"winners" db:"winners"`
	Columns        []string      `json:"columns,omitempty" db:"columns"`
	RequestedCount int           `json:"requested_count" db:"requested_count"`
	RosterSize     int           `json:"roster_size" db:"roster_size"`
	CreatedAt      time.Time     `json:"created_at" db:"created_at"`
}

// NewDrawResult builds a result for the given winners. CreatedAt is kept at
// microsecond precision, the resolution of a Postgres TIMESTAMPTZ.
func NewDrawResult(winners []Participant, columns []string, rosterSize int, createdAt time.Time) *DrawResult {
	return &DrawResult{
		ID:             uuid.New(),
		Winners:        winners,
		Columns:        columns,
		RequestedCount: len(winners),
		RosterSize:     rosterSize,
		CreatedAt:      createdAt.UTC().Truncate(time.Microsecond),
	}
}

// WinnerIDs returns winner identifiers in draw order
func (r *DrawResult) WinnerIDs() []string {
	ids := make([]string, len(r.Winners))
	for i, w := range r.Winners {
		ids[i] = w.ID
	}
	return ids
}

// Validate checks the result invariants: correct size and no repeated winner
func (r *DrawResult) Validate() error {
	if len(r.Winners) == 0 {
		return fmt.Errorf("draw result has no winners")
	}
	if len(r.Winners) != r.RequestedCount {
		return fmt.Errorf("draw result has %d winners, expected %d", len(r.Winners), r.RequestedCount)
	}
	seen := make(map[string]bool, len(r.Winners))
	for _, w := range r.Winners {
		if seen[w.ID] {
			return fmt.Errorf("participant %q drawn more than once", w.ID)
		}
		seen[w.ID] = true
	}
	return nil
}
