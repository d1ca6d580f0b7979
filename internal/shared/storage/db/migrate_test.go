package db

import (
	"io/fs"
	"strings"
	"testing"
)

func TestEmbeddedMigrations(t *testing.T) {
	entries, err := fs.ReadDir(migrationFiles, "migrations")
	if err != nil {
		t.Fatalf("read embedded migrations: %v", err)
	}
	want := []string{"00001_create_users.sql", "00002_create_documents.sql", "00003_create_chat_messages.sql"}
	if len(entries) != len(want) {
		t.Fatalf("expected %d migrations, got %d", len(want), len(entries))
	}
	for i, entry := range entries {
		if entry.Name() != want[i] {
			t.Fatalf("migration %d = %s, want %s", i, entry.Name(), want[i])
		}
		body, err := fs.ReadFile(migrationFiles, "migrations/"+entry.Name())
		if err != nil {
			t.Fatalf("read %s: %v", entry.Name(), err)
		}
		if !strings.Contains(string(body), "-- +goose Up") || !strings.Contains(string(body), "-- +goose Down") {
			t.Fatalf("%s is missing goose annotations", entry.Name())
		}
	}
}

func TestChatMessagesCascadeOnDocumentDelete(t *testing.T) {
	body, err := fs.ReadFile(migrationFiles, "migrations/00003_create_chat_messages.sql")
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	if !strings.Contains(string(body), "REFERENCES documents (id) ON DELETE CASCADE") {
		t.Fatalf("chat_messages must cascade on document delete")
	}
}
