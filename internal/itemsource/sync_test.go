package itemsource

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lingoreps/lingoreps/internal/storage"
)

func writeWordList(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
}

func TestAddSource(t *testing.T) {
	db, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	src, err := AddSource(db, "/decks/spanish")
	if err != nil {
		t.Fatalf("AddSource: %v", err)
	}
	if src.Type != "local" {
		t.Errorf("Type = %q, want local", src.Type)
	}

	// Adding the same path again returns the existing source.
	again, err := AddSource(db, "/decks/spanish")
	if err != nil {
		t.Fatalf("second AddSource: %v", err)
	}
	if again.ID != src.ID {
		t.Errorf("second AddSource ID = %d, want %d", again.ID, src.ID)
	}

	gitSrc, err := AddSource(db, "git@github.com:acme/words.git")
	if err != nil {
		t.Fatalf("AddSource git: %v", err)
	}
	if gitSrc.Type != "git" {
		t.Errorf("git source Type = %q, want git", gitSrc.Type)
	}
}

func TestSyncAllReconcilesLocalSource(t *testing.T) {
	db, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	dir := t.TempDir()
	writeWordList(t, dir, "basics.txt", "perro\ngato\n")
	writeWordList(t, dir, "notes.md", "not a word list\n")

	src, err := AddSource(db, dir)
	if err != nil {
		t.Fatalf("AddSource: %v", err)
	}

	if err := SyncAll(db, t.TempDir()); err != nil {
		t.Fatalf("SyncAll: %v", err)
	}

	items, err := db.GetItemsBySourceID(src.ID)
	if err != nil {
		t.Fatalf("GetItemsBySourceID: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items after first sync, want 2", len(items))
	}

	s, err := db.FindSourceByPath(dir)
	if err != nil {
		t.Fatalf("FindSourceByPath: %v", err)
	}
	if !s.LastSynced.Valid {
		t.Error("source not stamped as synced")
	}

	// Second sync with one term removed and one added: the orphan goes,
	// the newcomer arrives, the survivor keeps its key.
	writeWordList(t, dir, "basics.txt", "gato\npez\n")
	if err := SyncAll(db, t.TempDir()); err != nil {
		t.Fatalf("second SyncAll: %v", err)
	}

	items, err = db.GetItemsBySourceID(src.ID)
	if err != nil {
		t.Fatalf("GetItemsBySourceID: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items after second sync, want 2", len(items))
	}
	terms := map[string]bool{}
	for _, it := range items {
		terms[it.Term] = true
	}
	if !terms["gato"] || !terms["pez"] || terms["perro"] {
		t.Errorf("items after second sync = %v, want gato and pez", terms)
	}
}

func TestSyncAllIdempotent(t *testing.T) {
	db, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	dir := t.TempDir()
	writeWordList(t, dir, "words.list", "uno\ndos\ntres\n")
	src, err := AddSource(db, dir)
	if err != nil {
		t.Fatalf("AddSource: %v", err)
	}

	reposDir := t.TempDir()
	for i := 0; i < 3; i++ {
		if err := SyncAll(db, reposDir); err != nil {
			t.Fatalf("SyncAll %d: %v", i, err)
		}
	}

	items, err := db.GetItemsBySourceID(src.ID)
	if err != nil {
		t.Fatalf("GetItemsBySourceID: %v", err)
	}
	if len(items) != 3 {
		t.Errorf("got %d items after repeated syncs, want 3", len(items))
	}
}

func TestSyncAllNoSources(t *testing.T) {
	db, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	if err := SyncAll(db, t.TempDir()); err != nil {
		t.Errorf("SyncAll with no sources: %v", err)
	}
}
