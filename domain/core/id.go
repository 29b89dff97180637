package core

import "github.com/google/uuid"

// RunID identifies one pipeline run in logs and API responses.
type RunID string

// NewRunID returns a time-ordered identifier. UUID v7 keeps run logs
// sortable by creation time; v4 is the fallback when the clock source
// fails.
func NewRunID() RunID {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return RunID(id.String())
}

func (id RunID) String() string { return string(id) }
