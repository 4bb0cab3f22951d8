package sessions

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/DragX-cyber/Legal-Mate/internal/analysis"
)

func newMockRepo(t *testing.T) (*PGRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return &PGRepo{DB: db}, mock
}

func TestPGRepoCreateMarshalsJSON(t *testing.T) {
	repo, mock := newMockRepo(t)

	now := time.Now().UTC()
	session := &Session{
		ID:           "sess-1",
		UserID:       "user-1",
		Title:        "MSA review",
		ContractText: "Clause 1: Termination at will.",
		Profile:      analysis.UserProfile{Industry: "tech", Role: "founder", RiskTolerance: "low"},
		Assessment: analysis.RiskAssessment{
			Summary:          "short summary",
			OverallRiskScore: 40,
			Clauses:          []analysis.Clause{},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	mock.ExpectExec("INSERT INTO sessions").
		WithArgs(
			session.ID,
			session.UserID,
			session.Title,
			session.ContractText,
			sqlmock.AnyArg(), // profile json
			sqlmock.AnyArg(), // assessment json
			session.CreatedAt,
			session.UpdatedAt,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), session); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetMapsMissingToNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT id, user_id, title").
		WithArgs("missing", "user-1").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), "user-1", "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestPGRepoGetMapsDeleted(t *testing.T) {
	repo, mock := newMockRepo(t)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "user_id", "title", "contract_text", "profile", "assessment", "created_at", "updated_at", "deleted_at"}).
		AddRow("sess-1", "user-1", "t", "text", []byte(`{}`), []byte(`{"summary":"s","overallRiskScore":1,"clauses":[]}`), now, now, now)
	mock.ExpectQuery("SELECT id, user_id, title").
		WithArgs("sess-1", "user-1").
		WillReturnRows(rows)

	_, err := repo.Get(context.Background(), "user-1", "sess-1")
	if !errors.Is(err, ErrDeleted) {
		t.Fatalf("err = %v, want ErrDeleted", err)
	}
}

func TestPGRepoAppendTurnsLocksAndSequences(t *testing.T) {
	repo, mock := newMockRepo(t)

	now := time.Now().UTC()
	turns := []Turn{
		{Role: RoleUser, Text: "what about termination?", CreatedAt: now},
		{Role: RoleAssistant, Text: "clause 1 allows exit at will", CreatedAt: now},
	}

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT deleted_at").
		WithArgs("sess-1", "user-1").
		WillReturnRows(sqlmock.NewRows([]string{"deleted_at"}).AddRow(nil))
	mock.ExpectQuery("SELECT COALESCE").
		WithArgs("sess-1").
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(4))
	mock.ExpectExec("INSERT INTO turns").
		WithArgs("sess-1", 5, RoleUser, turns[0].Text, turns[0].CreatedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO turns").
		WithArgs("sess-1", 6, RoleAssistant, turns[1].Text, turns[1].CreatedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE sessions SET updated_at").
		WithArgs("sess-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := repo.AppendTurns(context.Background(), "user-1", "sess-1", turns); err != nil {
		t.Fatalf("AppendTurns: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoAppendTurnsRollsBackOnInsertFailure(t *testing.T) {
	repo, mock := newMockRepo(t)

	now := time.Now().UTC()
	turns := []Turn{
		{Role: RoleUser, Text: "hi", CreatedAt: now},
		{Role: RoleAssistant, Text: "hello", CreatedAt: now},
	}

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT deleted_at").
		WithArgs("sess-1", "user-1").
		WillReturnRows(sqlmock.NewRows([]string{"deleted_at"}).AddRow(nil))
	mock.ExpectQuery("SELECT COALESCE").
		WithArgs("sess-1").
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(0))
	mock.ExpectExec("INSERT INTO turns").
		WithArgs("sess-1", 1, RoleUser, "hi", now).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO turns").
		WithArgs("sess-1", 2, RoleAssistant, "hello", now).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := repo.AppendTurns(context.Background(), "user-1", "sess-1", turns)
	if !errors.Is(err, ErrPersistence) {
		t.Fatalf("err = %v, want ErrPersistence", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoAppendTurnsDeletedSession(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT deleted_at").
		WithArgs("sess-1", "user-1").
		WillReturnRows(sqlmock.NewRows([]string{"deleted_at"}).AddRow(time.Now().UTC()))
	mock.ExpectRollback()

	err := repo.AppendTurns(context.Background(), "user-1", "sess-1", []Turn{{Role: RoleUser, Text: "x"}})
	if !errors.Is(err, ErrDeleted) {
		t.Fatalf("err = %v, want ErrDeleted", err)
	}
}

func TestPGRepoSoftDeleteNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("UPDATE sessions SET deleted_at").
		WithArgs("missing", "user-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT id, user_id, title").
		WithArgs("missing", "user-1").
		WillReturnError(sql.ErrNoRows)

	err := repo.SoftDelete(context.Background(), "user-1", "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
