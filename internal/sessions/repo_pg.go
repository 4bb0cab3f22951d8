package sessions

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/DragX-cyber/Legal-Mate/internal/analysis"
)

// PGRepo is the Postgres-backed Repo.
type PGRepo struct {
	DB *sql.DB
}

func NewPGRepo(db *sql.DB) *PGRepo {
	return &PGRepo{DB: db}
}

const insertSessionQuery = `
INSERT INTO sessions (id, user_id, title, contract_text, profile, assessment, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

func (r *PGRepo) Create(ctx context.Context, s *Session) error {
	profileJSON, err := json.Marshal(s.Profile)
	if err != nil {
		return fmt.Errorf("%w: marshal profile: %v", ErrPersistence, err)
	}
	assessmentJSON, err := json.Marshal(s.Assessment)
	if err != nil {
		return fmt.Errorf("%w: marshal assessment: %v", ErrPersistence, err)
	}

	_, err = r.DB.ExecContext(ctx, insertSessionQuery,
		s.ID, s.UserID, s.Title, s.ContractText, profileJSON, assessmentJSON, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("%w: insert session: %v", ErrPersistence, err)
	}
	return nil
}

const getSessionQuery = `
SELECT id, user_id, title, contract_text, profile, assessment, created_at, updated_at, deleted_at
FROM sessions
WHERE id = $1 AND user_id = $2`

func (r *PGRepo) Get(ctx context.Context, userID, sessionID string) (*Session, error) {
	row := r.DB.QueryRowContext(ctx, getSessionQuery, sessionID, userID)
	return scanSession(row)
}

func scanSession(row *sql.Row) (*Session, error) {
	var (
		s              Session
		profileJSON    []byte
		assessmentJSON []byte
		deletedAt      sql.NullTime
	)
	err := row.Scan(&s.ID, &s.UserID, &s.Title, &s.ContractText, &profileJSON, &assessmentJSON, &s.CreatedAt, &s.UpdatedAt, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: scan session: %v", ErrPersistence, err)
	}
	if deletedAt.Valid {
		return nil, ErrDeleted
	}
	if len(profileJSON) > 0 {
		if err := json.Unmarshal(profileJSON, &s.Profile); err != nil {
			return nil, fmt.Errorf("%w: decode profile: %v", ErrPersistence, err)
		}
	}
	if len(assessmentJSON) > 0 {
		if err := json.Unmarshal(assessmentJSON, &s.Assessment); err != nil {
			return nil, fmt.Errorf("%w: decode assessment: %v", ErrPersistence, err)
		}
	}
	if s.Assessment.Clauses == nil {
		s.Assessment.Clauses = []analysis.Clause{}
	}
	return &s, nil
}

const listSessionsQuery = `
SELECT s.id, s.title, COUNT(t.seq), s.created_at, s.updated_at
FROM sessions s
LEFT JOIN turns t ON t.session_id = s.id
WHERE s.user_id = $1 AND s.deleted_at IS NULL
GROUP BY s.id, s.title, s.created_at, s.updated_at
ORDER BY s.created_at DESC, s.id DESC`

func (r *PGRepo) ListByUser(ctx context.Context, userID string) ([]Summary, error) {
	rows, err := r.DB.QueryContext(ctx, listSessionsQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: list sessions: %v", ErrPersistence, err)
	}
	defer rows.Close()

	out := make([]Summary, 0)
	for rows.Next() {
		var sum Summary
		if err := rows.Scan(&sum.ID, &sum.Title, &sum.TurnCount, &sum.CreatedAt, &sum.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%w: scan summary: %v", ErrPersistence, err)
		}
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate sessions: %v", ErrPersistence, err)
	}
	return out, nil
}

const listTurnsQuery = `
SELECT t.role, t.content, t.created_at
FROM turns t
JOIN sessions s ON s.id = t.session_id
WHERE t.session_id = $1 AND s.user_id = $2 AND s.deleted_at IS NULL
ORDER BY t.seq ASC`

func (r *PGRepo) ListTurns(ctx context.Context, userID, sessionID string) ([]Turn, error) {
	// Resolve existence first so absent and deleted map to distinct errors.
	if _, err := r.Get(ctx, userID, sessionID); err != nil {
		return nil, err
	}

	rows, err := r.DB.QueryContext(ctx, listTurnsQuery, sessionID, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: list turns: %v", ErrPersistence, err)
	}
	defer rows.Close()

	out := make([]Turn, 0)
	for rows.Next() {
		var t Turn
		if err := rows.Scan(&t.Role, &t.Text, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scan turn: %v", ErrPersistence, err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate turns: %v", ErrPersistence, err)
	}
	return out, nil
}

const lockSessionQuery = `
SELECT deleted_at
FROM sessions
WHERE id = $1 AND user_id = $2
FOR UPDATE`

const maxSeqQuery = `
SELECT COALESCE(MAX(seq), 0) FROM turns WHERE session_id = $1`

const insertTurnQuery = `
INSERT INTO turns (session_id, seq, role, content, created_at)
VALUES ($1, $2, $3, $4, $5)`

const touchSessionQuery = `
UPDATE sessions SET updated_at = $2 WHERE id = $1`

// AppendTurns writes the turns in one transaction. The session row is
// locked for the duration, so concurrent appends serialize and seq stays
// gapless per session.
func (r *PGRepo) AppendTurns(ctx context.Context, userID, sessionID string, turns []Turn) error {
	if len(turns) == 0 {
		return nil
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", ErrPersistence, err)
	}
	defer tx.Rollback()

	var deletedAt sql.NullTime
	err = tx.QueryRowContext(ctx, lockSessionQuery, sessionID, userID).Scan(&deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: lock session: %v", ErrPersistence, err)
	}
	if deletedAt.Valid {
		return ErrDeleted
	}

	var maxSeq int
	if err := tx.QueryRowContext(ctx, maxSeqQuery, sessionID).Scan(&maxSeq); err != nil {
		return fmt.Errorf("%w: max seq: %v", ErrPersistence, err)
	}

	for i, t := range turns {
		if _, err := tx.ExecContext(ctx, insertTurnQuery, sessionID, maxSeq+i+1, t.Role, t.Text, t.CreatedAt); err != nil {
			return fmt.Errorf("%w: insert turn seq=%d: %v", ErrPersistence, maxSeq+i+1, err)
		}
	}

	if _, err := tx.ExecContext(ctx, touchSessionQuery, sessionID, time.Now().UTC()); err != nil {
		return fmt.Errorf("%w: touch session: %v", ErrPersistence, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", ErrPersistence, err)
	}
	return nil
}

const softDeleteQuery = `
UPDATE sessions SET deleted_at = $3, updated_at = $3
WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL`

func (r *PGRepo) SoftDelete(ctx context.Context, userID, sessionID string) error {
	res, err := r.DB.ExecContext(ctx, softDeleteQuery, sessionID, userID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("%w: delete session: %v", ErrPersistence, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: rows affected: %v", ErrPersistence, err)
	}
	if affected == 0 {
		// Distinguish never-existed from already-deleted.
		if _, getErr := r.Get(ctx, userID, sessionID); errors.Is(getErr, ErrDeleted) {
			return ErrDeleted
		}
		return ErrNotFound
	}
	return nil
}

var _ Repo = (*PGRepo)(nil)
