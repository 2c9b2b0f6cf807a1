package entities

// DrawState is the lock state of the current round
type DrawState string

const (
	DrawStateUnlocked DrawState = "UNLOCKED" // No result committed, a draw may run
	DrawStateLocked   DrawState = "LOCKED"   // A result is committed, draws are refused
)

// String implements fmt.Stringer
func (s DrawState) String() string {
	return string(s)
}

// IsLocked returns true if a draw has already been committed
func (s DrawState) IsLocked() bool {
	return s == DrawStateLocked
}

// StateFor derives the lock state from whether a result exists
func StateFor(resultExists bool) DrawState {
	if resultExists {
		return DrawStateLocked
	}
	return DrawStateUnlocked
}
