package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoster_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		ids         []string
		wantErr     bool
		errContains string
	}{
		{
			name:    "empty roster is valid",
			ids:     nil,
			wantErr: false,
		},
		{
			name:    "unique ids",
			ids:     []string{"M001", "M002", "M003"},
			wantErr: false,
		},
		{
			name:        "blank id",
			ids:         []string{"M001", "  "},
			wantErr:     true,
			errContains: "position 2 has no identifier",
		},
		{
			name:        "duplicate id",
			ids:         []string{"M001", "M002", "M001"},
			wantErr:     true,
			errContains: "duplicate participant \"M001\" at positions 1 and 3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			roster := Roster{}
			for _, id := range tt.ids {
				roster.Participants = append(roster.Participants, Participant{ID: id})
			}

			err := roster.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRoster_SizeAndContains(t *testing.T) {
	t.Parallel()

	roster := Roster{
		Columns: []string{"ID", "Name"},
		Participants: []Participant{
			{ID: "M001", Name: "Abebe"},
			{ID: "M002", Name: "Sara"},
		},
	}

	assert.Equal(t, 2, roster.Size())
	assert.False(t, roster.IsEmpty())
	assert.True(t, roster.Contains("M002"))
	assert.False(t, roster.Contains("M003"))
	assert.True(t, Roster{}.IsEmpty())
}

func TestParticipant_DisplayName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Sara", Participant{ID: "M002", Name: "Sara"}.DisplayName())
	assert.Equal(t, "M002", Participant{ID: "M002"}.DisplayName())
	assert.Equal(t, "Finance", Participant{ID: "M002", Fields: map[string]string{"Dept": "Finance"}}.Field("Dept"))
	assert.Equal(t, "", Participant{ID: "M002"}.Field("Dept"))
}
