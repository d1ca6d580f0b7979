package chat

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
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

func TestPGRepoCreateEncodesMetadata(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	mock.ExpectExec("INSERT INTO chat_messages").
		WithArgs("m1", "doc-1", RoleAssistant, "hello", []byte(`{"model":"m","provider":"p"}`), now).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Create(context.Background(), Message{
		ID:         "m1",
		DocumentID: "doc-1",
		Role:       RoleAssistant,
		Content:    "hello",
		Metadata:   map[string]any{"provider": "p", "model": "m"},
		CreatedAt:  now,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoCreateWithoutMetadata(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	mock.ExpectExec("INSERT INTO chat_messages").
		WithArgs("m1", "doc-1", RoleUser, "hi", nil, now).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), Message{ID: "m1", DocumentID: "doc-1", Role: RoleUser, Content: "hi", CreatedAt: now}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoListNewestFirstWithLimit(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{"id", "document_id", "role", "content", "metadata", "created_at"}).
		AddRow("m2", "doc-1", RoleAssistant, "answer", []byte(`{"provider":"p","model":"m"}`), now).
		AddRow("m1", "doc-1", RoleUser, "question", nil, now.Add(-time.Second))
	mock.ExpectQuery("SELECT (.+) FROM chat_messages WHERE document_id = \\$1 ORDER BY created_at DESC LIMIT \\$2").
		WithArgs("doc-1", 11).
		WillReturnRows(rows)

	msgs, err := repo.List(context.Background(), "doc-1", ListOptions{Limit: 11, Order: OrderNewestFirst})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(msgs) != 2 || msgs[0].ID != "m2" || msgs[0].Metadata["provider"] != "p" || msgs[1].Metadata != nil {
		t.Fatalf("unexpected messages %+v", msgs)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoListOldestFirst(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM chat_messages WHERE document_id = \\$1 ORDER BY created_at ASC").
		WithArgs("doc-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "document_id", "role", "content", "metadata", "created_at"}))

	msgs, err := repo.List(context.Background(), "doc-1", ListOptions{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if msgs == nil || len(msgs) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", msgs)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoDeleteByDocument(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("DELETE FROM chat_messages WHERE document_id = \\$1").
		WithArgs("doc-1").
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.DeleteByDocument(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("DeleteByDocument: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 deleted, got %d", n)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoMalformedDocumentID(t *testing.T) {
	badUUID := &pgconn.PgError{Code: "22P02"}
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("SELECT (.+) FROM chat_messages").WithArgs("abc").WillReturnError(badUUID)
	mock.ExpectExec("DELETE FROM chat_messages").WithArgs("abc").WillReturnError(badUUID)

	msgs, err := repo.List(context.Background(), "abc", ListOptions{})
	if err != nil || msgs == nil || len(msgs) != 0 {
		t.Fatalf("expected empty list, got %v, %v", msgs, err)
	}
	n, err := repo.DeleteByDocument(context.Background(), "abc")
	if err != nil || n != 0 {
		t.Fatalf("expected 0 deleted, got %d, %v", n, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
