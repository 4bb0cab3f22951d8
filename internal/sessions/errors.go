package sessions

import "errors"

var (
	// ErrNotFound means no session with that id exists for the caller.
	ErrNotFound = errors.New("session not found")
	// ErrDeleted means the session existed but has been deleted.
	ErrDeleted = errors.New("session deleted")
	// ErrPersistence wraps storage failures underneath the repo.
	ErrPersistence = errors.New("persistence error")
)
