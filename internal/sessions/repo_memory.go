package sessions

import (
	"context"
	"sort"
	"sync"
	"time"
)

type memoryRecord struct {
	session Session
	turns   []Turn
}

// MemoryRepo is an in-memory Repo used in development and tests.
type MemoryRepo struct {
	mu      sync.RWMutex
	records map[string]*memoryRecord
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{records: make(map[string]*memoryRecord)}
}

func (r *MemoryRepo) Create(ctx context.Context, s *Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.records[s.ID] = &memoryRecord{session: cp}
	return nil
}

func (r *MemoryRepo) Get(ctx context.Context, userID, sessionID string) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, err := r.lookup(userID, sessionID)
	if err != nil {
		return nil, err
	}
	cp := rec.session
	return &cp, nil
}

func (r *MemoryRepo) ListByUser(ctx context.Context, userID string) ([]Summary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Summary, 0)
	for _, rec := range r.records {
		if rec.session.UserID != userID || rec.session.DeletedAt != nil {
			continue
		}
		out = append(out, Summary{
			ID:        rec.session.ID,
			Title:     rec.session.Title,
			TurnCount: len(rec.turns),
			CreatedAt: rec.session.CreatedAt,
			UpdatedAt: rec.session.UpdatedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryRepo) ListTurns(ctx context.Context, userID, sessionID string) ([]Turn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, err := r.lookup(userID, sessionID)
	if err != nil {
		return nil, err
	}
	out := make([]Turn, len(rec.turns))
	copy(out, rec.turns)
	return out, nil
}

func (r *MemoryRepo) AppendTurns(ctx context.Context, userID, sessionID string, turns []Turn) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, err := r.lookup(userID, sessionID)
	if err != nil {
		return err
	}
	rec.turns = append(rec.turns, turns...)
	rec.session.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *MemoryRepo) SoftDelete(ctx context.Context, userID, sessionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, err := r.lookup(userID, sessionID)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	rec.session.DeletedAt = &now
	rec.session.UpdatedAt = now
	return nil
}

// lookup must be called with at least the read lock held.
func (r *MemoryRepo) lookup(userID, sessionID string) (*memoryRecord, error) {
	rec, ok := r.records[sessionID]
	if !ok || rec.session.UserID != userID {
		return nil, ErrNotFound
	}
	if rec.session.DeletedAt != nil {
		return nil, ErrDeleted
	}
	return rec, nil
}

var _ Repo = (*MemoryRepo)(nil)
