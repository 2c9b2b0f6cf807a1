package testutil

import (
	"fmt"
	"time"

	"lottery/domain/entities"
)

// CreateTestRoster creates a roster of n members with an extra Email column
func CreateTestRoster(n int) entities.Roster {
	roster := entities.Roster{Columns: []string{"Member ID", "Name", "Email"}}
	for i := 1; i <= n; i++ {
		id := fmt.Sprintf("M%03d", i)
		name := fmt.Sprintf("Member %d", i)
		roster.Participants = append(roster.Participants, entities.Participant{
			ID:   id,
			Name: name,
			Fields: map[string]string{
				"Member ID": id,
				"Name":      name,
				"Email":     fmt.Sprintf("member%d@example.com", i),
			},
		})
	}
	return roster
}

// CreateTestResult creates a result whose winners are the first k members
func CreateTestResult(roster entities.Roster, k int) *entities.DrawResult {
	winners := append([]entities.Participant(nil), roster.Participants[:k]...)
	return entities.NewDrawResult(winners, roster.Columns, roster.Size(), time.Now())
}
