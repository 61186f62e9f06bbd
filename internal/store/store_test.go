package store

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "codelio.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.db

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestMigrationCreatesTable(t *testing.T) {
	s := openTestStore(t)

	var name string
	err := s.db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='table' AND name='local_storage'",
	).Scan(&name)
	if err != nil {
		t.Fatalf("query sqlite_master: %v", err)
	}
	if name != "local_storage" {
		t.Errorf("table name = %q, want 'local_storage'", name)
	}
}

func TestLocalStorageGetMissing(t *testing.T) {
	ls := openTestStore(t).LocalStorage()

	v, ok, err := ls.Get(context.Background(), KeyGuestName)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok || v != "" {
		t.Errorf("get missing = (%q, %v), want empty and not found", v, ok)
	}
}

func TestLocalStorageSetGetOverwrite(t *testing.T) {
	ls := openTestStore(t).LocalStorage()
	ctx := context.Background()

	if err := ls.Set(ctx, KeyGuestName, "Alice"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := ls.Set(ctx, KeyGuestName, "Bob"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	v, ok, err := ls.Get(ctx, KeyGuestName)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok || v != "Bob" {
		t.Errorf("get = (%q, %v), want (\"Bob\", true)", v, ok)
	}
}

func TestLocalStorageKeysAreIndependent(t *testing.T) {
	ls := openTestStore(t).LocalStorage()
	ctx := context.Background()

	if err := ls.Set(ctx, KeyGuestName, "Alice"); err != nil {
		t.Fatalf("set name: %v", err)
	}
	if err := ls.Set(ctx, KeySolvedQuestions, `{"q1":true}`); err != nil {
		t.Fatalf("set solved: %v", err)
	}
	if err := ls.Remove(ctx, KeyGuestName); err != nil {
		t.Fatalf("remove: %v", err)
	}

	if _, ok, _ := ls.Get(ctx, KeyGuestName); ok {
		t.Error("guest name should be removed")
	}
	v, ok, err := ls.Get(ctx, KeySolvedQuestions)
	if err != nil || !ok || v != `{"q1":true}` {
		t.Errorf("solved = (%q, %v, %v), want stored mapping", v, ok, err)
	}
}

func TestLocalStorageRemoveMissing(t *testing.T) {
	ls := openTestStore(t).LocalStorage()
	if err := ls.Remove(context.Background(), "nope"); err != nil {
		t.Errorf("remove missing: %v", err)
	}
}

func TestLocalStoragePersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "codelio.db")
	ctx := context.Background()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.LocalStorage().Set(ctx, KeyGuestName, "Alice"); err != nil {
		t.Fatalf("set: %v", err)
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	v, ok, err := s.LocalStorage().Get(ctx, KeyGuestName)
	if err != nil || !ok || v != "Alice" {
		t.Errorf("after reopen = (%q, %v, %v), want Alice", v, ok, err)
	}
}

func TestDefaultDBPathFromEnv(t *testing.T) {
	want := filepath.Join(t.TempDir(), "nested", "custom.db")
	t.Setenv("CODELIO_DB", want)

	got, err := DefaultDBPath()
	if err != nil {
		t.Fatalf("default path: %v", err)
	}
	if got != want {
		t.Errorf("path = %q, want %q", got, want)
	}
}

func TestDefaultDBPathXDG(t *testing.T) {
	dataHome := t.TempDir()
	t.Setenv("CODELIO_DB", "")
	t.Setenv("XDG_DATA_HOME", dataHome)

	got, err := DefaultDBPath()
	if err != nil {
		t.Fatalf("default path: %v", err)
	}
	want := filepath.Join(dataHome, "codelio", "codelio.db")
	if got != want {
		t.Errorf("path = %q, want %q", got, want)
	}
}
