package documents

import (
	"context"
	"database/sql"
	"errors"
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

var columns = []string{
	"id", "user_id", "title", "original_name", "mime_type", "size_bytes", "storage_provider", "storage_key",
	"extracted_text", "summary", "error_message", "extraction_method", "page_count", "extracted_at", "created_at", "updated_at",
}

func TestPGRepoCreate(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()
	doc := Document{
		ID:               "doc-1",
		UserID:           "user-1",
		Title:            "Invoice",
		OriginalName:     "invoice.pdf",
		MimeType:         "application/pdf",
		SizeBytes:        42,
		StorageKey:       "abc/123_invoice.pdf",
		ExtractedText:    "Total: $10",
		Summary:          "Total is ten.",
		ExtractionMethod: "native",
		PageCount:        1,
		ExtractedAt:      &now,
		CreatedAt:        now,
	}

	mock.ExpectExec("INSERT INTO documents").
		WithArgs(doc.ID, doc.UserID, doc.Title, doc.OriginalName, doc.MimeType, doc.SizeBytes, "local", doc.StorageKey,
			"Total: $10", "Total is ten.", nil, "native", 1, now, now, now).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), doc); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoCreateRecordsExtractionError(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	mock.ExpectExec("INSERT INTO documents").
		WithArgs("doc-1", "user-1", "Scan", "scan.png", "image/png", int64(7), "s3", "k",
			"", "", "OCR failed", "ocr", 1, now, now, now).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Create(context.Background(), Document{
		ID: "doc-1", UserID: "user-1", Title: "Scan", OriginalName: "scan.png", MimeType: "image/png",
		SizeBytes: 7, StorageProvider: "s3", StorageKey: "k",
		ErrorMessage: "OCR failed", ExtractionMethod: "ocr", PageCount: 1, ExtractedAt: &now,
		CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByID(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT (.+) FROM documents WHERE id = \\$1").
		WithArgs("doc-1").
		WillReturnRows(sqlmock.NewRows(columns).AddRow(
			"doc-1", "user-1", "Invoice", "invoice.pdf", "application/pdf", int64(42), "s3", "key",
			"Total: $10", "Total is ten.", nil, "native", 1, now, now, now,
		))

	doc, err := repo.GetByID(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if doc.ExtractedText != "Total: $10" || doc.ErrorMessage != "" || doc.ExtractedAt == nil || doc.StorageProvider != "s3" {
		t.Fatalf("unexpected document %+v", doc)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByIDNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("SELECT (.+) FROM documents").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	if _, err := repo.GetByID(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoListByUser(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()
	mock.ExpectQuery("SELECT (.+) FROM documents WHERE user_id = \\$1 ORDER BY created_at DESC").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("doc-2", "user-1", "B", "b.png", "image/png", int64(1), "local", "k2", "", "", "OCR failed", "ocr", 1, now, now, now).
			AddRow("doc-1", "user-1", "A", "a.pdf", "application/pdf", int64(1), "local", "k1", "text", "", nil, "native", 2, nil, now.Add(-time.Hour), now))

	docs, err := repo.ListByUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(docs) != 2 || docs[0].ID != "doc-2" || docs[0].ErrorMessage != "OCR failed" || docs[1].ExtractedAt != nil {
		t.Fatalf("unexpected documents %+v", docs)
	}
}

func TestPGRepoUpdateTitleAndDeleteMissing(t *testing.T) {
	repo, mock := newMockRepo(t)
	at := time.Now().UTC()
	mock.ExpectExec("UPDATE documents SET title").
		WithArgs("New", at, "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM documents").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.UpdateTitle(context.Background(), "missing", "New", at); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := repo.Delete(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoMalformedIDIsNotFound(t *testing.T) {
	badUUID := &pgconn.PgError{Code: "22P02", Message: `invalid input syntax for type uuid: "abc"`}
	at := time.Now().UTC()

	t.Run("get", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery("SELECT (.+) FROM documents").WithArgs("abc").WillReturnError(badUUID)
		if _, err := repo.GetByID(context.Background(), "abc"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
	t.Run("rename", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectExec("UPDATE documents SET title").WithArgs("New", at, "abc").WillReturnError(badUUID)
		if err := repo.UpdateTitle(context.Background(), "abc", "New", at); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
	t.Run("delete", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectExec("DELETE FROM documents").WithArgs("abc").WillReturnError(badUUID)
		if err := repo.Delete(context.Background(), "abc"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
	t.Run("list", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery("SELECT (.+) FROM documents WHERE user_id").WithArgs("abc").WillReturnError(badUUID)
		docs, err := repo.ListByUser(context.Background(), "abc")
		if err != nil || docs == nil || len(docs) != 0 {
			t.Fatalf("expected empty list, got %v, %v", docs, err)
		}
	})
}

func TestPGRepoGetByIDPropagatesOtherErrors(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("SELECT (.+) FROM documents").WithArgs("doc-1").WillReturnError(&pgconn.PgError{Code: "57P01"})

	_, err := repo.GetByID(context.Background(), "doc-1")
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("expected raw database error, got %v", err)
	}
}
