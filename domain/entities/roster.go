package entities

import (
	"fmt"
	"strings"
)

// Roster is the ordered, fixed set of participants eligible for a round
type Roster struct {
	Columns      []string      `json:"columns"`
	Participants []Participant `json:"participants"`
}

// Size returns the number of participants on the roster
func (r Roster) Size() int {
	return len(r.Participants)
}

// IsEmpty returns true if there is nobody to draw from
func (r Roster) IsEmpty() bool {
	return len(r.Participants) == 0
}

// Validate checks that every participant has a non-blank, unique ID
func (r Roster) Validate() error {
	seen := make(map[string]int, len(r.Participants))
	for i, p := range r.Participants {
		id := strings.TrimSpace(p.ID)
		if id == "" {
			return fmt.Errorf("participant at position %d has no identifier", i+1)
		}
		if first, ok := seen[id]; ok {
			return fmt.Errorf("duplicate participant %q at positions %d and %d", id, first+1, i+1)
		}
		seen[id] = i
	}
	return nil
}

// Contains returns true if a participant with the given ID is on the roster
func (r Roster) Contains(id string) bool {
	for _, p := range r.Participants {
		if p.ID == id {
			return true
		}
	}
	return false
}
