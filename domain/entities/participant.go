package entities

// Participant is a single eligible member of the roster
type Participant struct {
	ID     string            `json:"id" db:"participant_id"`
	Name   string            `json:"name,omitempty" db:"name"`
	Fields map[string]string `json:"fields,omitempty" db:"fields"` // All roster columns keyed by header
}

// DisplayName returns the name when present, otherwise the ID
func (p Participant) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return p.ID
}

// Field returns the value of a roster column, or "" if the column is unknown
func (p Participant) Field(column string) string {
	return p.Fields[column]
}
