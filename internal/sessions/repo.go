package sessions

import "context"

// Repo persists sessions and their transcripts. All reads and writes are
// scoped by owner: a session belonging to another user behaves as absent.
type Repo interface {
	Create(ctx context.Context, s *Session) error
	Get(ctx context.Context, userID, sessionID string) (*Session, error)
	ListByUser(ctx context.Context, userID string) ([]Summary, error)
	ListTurns(ctx context.Context, userID, sessionID string) ([]Turn, error)
	// AppendTurns adds the given turns to the transcript atomically:
	// either every turn lands, in order, or none do.
	AppendTurns(ctx context.Context, userID, sessionID string, turns []Turn) error
	SoftDelete(ctx context.Context, userID, sessionID string) error
}
