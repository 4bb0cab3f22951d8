package sessions

import (
	"context"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/DragX-cyber/Legal-Mate/internal/analysis"
	"github.com/DragX-cyber/Legal-Mate/internal/shared/storage/object"
	"github.com/DragX-cyber/Legal-Mate/internal/shared/telemetry"
)

// Service owns session lifecycle and transcript writes. Store is
// optional; when present the extracted contract text is archived as a
// derived artifact (the uploaded bytes themselves are never persisted).
type Service struct {
	Repo   Repo
	Store  object.ObjectStore
	locker *Locker
}

func NewService(repo Repo, store object.ObjectStore) *Service {
	return &Service{
		Repo:   repo,
		Store:  store,
		locker: NewLocker(),
	}
}

// Lock serializes writers on one session. Returns the release func.
func (s *Service) Lock(sessionID string) func() {
	return s.locker.Acquire(sessionID)
}

// Create persists a new session seeded with the contract text, profile,
// and completed assessment. The transcript starts empty.
func (s *Service) Create(ctx context.Context, userID, fileName, contractText string, profile analysis.UserProfile, assessment analysis.RiskAssessment) (*Session, error) {
	now := time.Now().UTC()
	session := &Session{
		ID:           uuid.NewString(),
		UserID:       userID,
		Title:        DeriveTitle(fileName, assessment.Summary),
		ContractText: contractText,
		Profile:      profile,
		Assessment:   assessment,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Repo.Create(ctx, session); err != nil {
		return nil, err
	}

	if s.Store != nil {
		key := path.Join("sessions", session.ID, "contract.extracted.txt")
		_, err := s.Store.SaveWithKey(ctx, key, "text/plain; charset=utf-8", strings.NewReader(contractText))
		if err != nil {
			// The artifact is derived; the session stays usable without it.
			telemetry.Error("session artifact save failed", map[string]any{
				"session_id": session.ID,
				"error":      err.Error(),
			})
		}
	}

	telemetry.Info("session created", map[string]any{
		"session_id": session.ID,
		"clauses":    len(assessment.Clauses),
		"text_size":  len(contractText),
	})
	return session, nil
}

// Get loads one session with its assessment.
func (s *Service) Get(ctx context.Context, userID, sessionID string) (*Session, error) {
	return s.Repo.Get(ctx, userID, sessionID)
}

// History loads the session and its full ordered transcript.
func (s *Service) History(ctx context.Context, userID, sessionID string) (*Session, []Turn, error) {
	session, err := s.Repo.Get(ctx, userID, sessionID)
	if err != nil {
		return nil, nil, err
	}
	turns, err := s.Repo.ListTurns(ctx, userID, sessionID)
	if err != nil {
		return nil, nil, err
	}
	return session, turns, nil
}

// AppendExchange records one user message and its assistant reply as a
// single atomic write. Callers serialize via Lock; this method does not
// take the session lock itself.
func (s *Service) AppendExchange(ctx context.Context, userID, sessionID, userText, assistantText string) error {
	now := time.Now().UTC()
	return s.Repo.AppendTurns(ctx, userID, sessionID, []Turn{
		{Role: RoleUser, Text: userText, CreatedAt: now},
		{Role: RoleAssistant, Text: assistantText, CreatedAt: now},
	})
}

// List returns the caller's live sessions, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]Summary, error) {
	return s.Repo.ListByUser(ctx, userID)
}

// Delete soft-deletes a session. Subsequent operations on it return
// ErrDeleted; delete of a deleted session is idempotent.
func (s *Service) Delete(ctx context.Context, userID, sessionID string) error {
	release := s.Lock(sessionID)
	defer release()

	err := s.Repo.SoftDelete(ctx, userID, sessionID)
	if err == ErrDeleted {
		return nil
	}
	if err != nil {
		return err
	}
	telemetry.Info("session deleted", map[string]any{"session_id": sessionID})
	return nil
}
