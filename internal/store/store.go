package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	_ "modernc.org/sqlite"
)

const currentVersion = 1

// Logical keys for persisted local state.
const (
	KeyProjects = "projects"
	KeySessions = "sessions"
	KeySettings = "settings"
	KeyRecovery = "recovery"
	KeyAI       = "ai"
)

// Store is the durable local key-value store. Values are JSON blobs in a
// single-writer SQLite database. Writes are best-effort: a failed save is
// logged and swallowed, a failed load falls back to the caller's default.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the SQLite database at dbPath and runs migrations.
func New(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	// Configure pragmas.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	// The secrets table lives in the same file; keep it private to the user.
	if dbPath != ":memory:" {
		if err := os.Chmod(dbPath, 0o600); err != nil {
			log.Warn("restrict db permissions", "path", dbPath, "err", err)
		}
	}
	return s, nil
}

// NewMemory creates an in-memory store for testing.
func NewMemory() (*Store, error) {
	return New(":memory:")
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	var version int
	err := s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version >= currentVersion {
		return nil
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	_, err = s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

func (s *Store) migrateV1() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS kv (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS secrets (
		provider   TEXT PRIMARY KEY,
		credential TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(ddl)
	return err
}

// Save persists v under key as JSON. Failures are logged and swallowed;
// in-memory state stays authoritative for the rest of the process.
func (s *Store) Save(key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Error("marshal value", "key", key, "err", err)
		return
	}
	_, err = s.db.Exec(
		`INSERT INTO kv (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, string(data),
	)
	if err != nil {
		log.Error("save value", "key", key, "err", err)
	}
}

// Load unmarshals the value stored under key into v. It reports false when
// the key is absent or the stored blob is unreadable, leaving v untouched
// so the caller's default survives.
func (s *Store) Load(key string, v any) bool {
	var raw string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&raw)
	if err == sql.ErrNoRows {
		return false
	}
	if err != nil {
		log.Error("load value", "key", key, "err", err)
		return false
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		log.Error("decode value", "key", key, "err", err)
		return false
	}
	return true
}

// Delete removes key. Missing keys are not an error.
func (s *Store) Delete(key string) {
	if _, err := s.db.Exec(`DELETE FROM kv WHERE key = ?`, key); err != nil {
		log.Error("delete value", "key", key, "err", err)
	}
}

// SetSecret stores the credential for an AI provider. Credentials never
// leave this table except in a request to their own provider.
func (s *Store) SetSecret(provider, credential string) error {
	_, err := s.db.Exec(
		`INSERT INTO secrets (provider, credential) VALUES (?, ?) ON CONFLICT(provider) DO UPDATE SET credential = excluded.credential`,
		provider, credential,
	)
	if err != nil {
		return fmt.Errorf("save credential for %q: %w", provider, err)
	}
	return nil
}

// GetSecret returns the saved credential for provider, if any.
func (s *Store) GetSecret(provider string) (string, bool) {
	var cred string
	err := s.db.QueryRow(`SELECT credential FROM secrets WHERE provider = ?`, provider).Scan(&cred)
	if err == sql.ErrNoRows {
		return "", false
	}
	if err != nil {
		log.Error("load credential", "provider", provider, "err", err)
		return "", false
	}
	return cred, true
}

// DefaultDBPath returns ~/.config/tempo/tempo.db
func DefaultDBPath() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "tempo", "tempo.db"), nil
}
