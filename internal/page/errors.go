package page

import (
	"fmt"
)

// SessionExpiredError means the portal no longer honours the saved
// session. The user has to log in again.
type SessionExpiredError struct {
	URL string
}

func (e *SessionExpiredError) Error() string {
	return fmt.Sprintf("session expired or portal did not load (URL: %s), run 'abacus login' again", e.URL)
}

// SaveButtonNotFoundError means the form was filled but neither save button
// was visible. The entry was not saved.
type SaveButtonNotFoundError struct{}

func (e *SaveButtonNotFoundError) Error() string {
	return "save button not found, entry was NOT saved"
}

// StaleRowError is returned when a row reference outlived its render.
type StaleRowError struct {
	Ref        RowRef
	Generation int
}

func (e *StaleRowError) Error() string {
	return fmt.Sprintf("row %d of render %d is stale (current render %d), re-read the grid",
		e.Ref.Index, e.Ref.Generation, e.Generation)
}

// TransitionError reports an operation attempted from the wrong UI state.
type TransitionError struct {
	From State
	To   State
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot go from %s to %s", e.From, e.To)
}
