package store

import (
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// ============================================================
// Store initialization
// ============================================================

func TestNewMemory(t *testing.T) {
	s, err := NewMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	// Should have run migration v1
	var version int
	s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if version != 1 {
		t.Fatalf("expected user_version 1, got %d", version)
	}
}

func TestNewWithPath(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/sub/tempo.db"
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	s.Save("greeting", "hello")
	s.Close()

	// Reopen — should not re-migrate, and the value should survive.
	s2, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	var got string
	if !s2.Load("greeting", &got) || got != "hello" {
		t.Fatalf("expected persisted value, got %q", got)
	}
}

func TestDefaultDBPath(t *testing.T) {
	path, err := DefaultDBPath()
	if err != nil {
		t.Fatal(err)
	}
	if path == "" {
		t.Fatal("empty path")
	}
}

func TestMigrationIdempotent(t *testing.T) {
	s := newTestStore(t)
	if err := s.migrate(); err != nil {
		t.Fatalf("second migration failed: %v", err)
	}
}

// ============================================================
// Key-value blobs
// ============================================================

func TestSaveAndLoad(t *testing.T) {
	s := newTestStore(t)

	type blob struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}
	s.Save("b", blob{Name: "deep work", Count: 3})

	var got blob
	if !s.Load("b", &got) {
		t.Fatal("expected key to exist")
	}
	if got.Name != "deep work" || got.Count != 3 {
		t.Fatalf("unexpected value: %+v", got)
	}
}

func TestLoadMissingKeyLeavesDefault(t *testing.T) {
	s := newTestStore(t)

	got := 42
	if s.Load("nope", &got) {
		t.Fatal("expected miss for absent key")
	}
	if got != 42 {
		t.Fatalf("default clobbered: %d", got)
	}
}

func TestLoadCorruptValueLeavesDefault(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.db.Exec(`INSERT INTO kv (key, value) VALUES ('bad', '{not json')`); err != nil {
		t.Fatal(err)
	}

	got := []string{"default"}
	if s.Load("bad", &got) {
		t.Fatal("expected miss for corrupt value")
	}
	if len(got) != 1 || got[0] != "default" {
		t.Fatalf("default clobbered: %v", got)
	}
}

func TestSaveOverwrites(t *testing.T) {
	s := newTestStore(t)
	s.Save("k", 1)
	s.Save("k", 2)

	var got int
	s.Load("k", &got)
	if got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	s.Save("k", "v")
	s.Delete("k")

	var got string
	if s.Load("k", &got) {
		t.Fatal("expected key to be gone")
	}
	// Deleting again is fine.
	s.Delete("k")
}

// ============================================================
// Secrets
// ============================================================

func TestSecretsRoundTrip(t *testing.T) {
	s := newTestStore(t)
	if err := s.SetSecret("openai", "sk-123"); err != nil {
		t.Fatal(err)
	}

	cred, ok := s.GetSecret("openai")
	if !ok || cred != "sk-123" {
		t.Fatalf("expected sk-123, got %q ok=%v", cred, ok)
	}

	// Per-provider: another provider has no credential.
	if _, ok := s.GetSecret("anthropic"); ok {
		t.Fatal("expected no credential for anthropic")
	}

	// Overwrite.
	if err := s.SetSecret("openai", "sk-456"); err != nil {
		t.Fatal(err)
	}
	cred, _ = s.GetSecret("openai")
	if cred != "sk-456" {
		t.Fatalf("expected sk-456, got %q", cred)
	}
}
