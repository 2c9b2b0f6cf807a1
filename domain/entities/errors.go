package entities

import "errors"

// Draw outcomes reported to callers. None of these is fatal to the process.
var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrInvalidRequest = errors.New("invalid draw request")
	ErrAlreadyDrawn   = errors.New("draw already conducted for this round")
	ErrNotLocked      = errors.New("no draw has been conducted for this round")
)

// Storage and roster outcomes.
var (
	ErrNotFound      = errors.New("draw result not found")
	ErrMissingData   = errors.New("roster source not found")
	ErrAlreadyLocked = errors.New("draw result already exists")

	// ErrStoreUnavailable marks a failed write to the result store. A commit
	// that fails this way must not be treated as having happened.
	ErrStoreUnavailable = errors.New("result store unavailable")
)

// Configuration warnings raised by the authorizer.
var (
	ErrOperatorSecretUnset = errors.New("operator passcode is not configured")
	ErrResetSecretUnset    = errors.New("reset passcode is not configured")
)
