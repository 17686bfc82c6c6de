package settings

import (
	"database/sql"
	"sync"

	"github.com/charmbracelet/log"
)

// Store is a small persisted key-value table used for transport bookkeeping,
// such as the pointer to the last published queue-status message.
type Store interface {
	// Get returns the stored value, or ok=false when the key is absent.
	Get(key string) (value string, ok bool)
	// Set overwrites the value for a key.
	Set(key, value string) error
	// Delete removes a key; deleting an absent key is a no-op.
	Delete(key string) error
}

// Keys used by the engine.
const (
	KeyQueueMessageRef = "queue_message_ref"
)

type store struct {
	db *sql.DB
	mu sync.Mutex
}

// New creates a settings Store backed by the given database.
func New(db *sql.DB) Store {
	return &store{db: db}
}

func (s *store) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var value string
	err := s.db.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false
	}
	if err != nil {
		log.Error("Failed to read setting", "error", err, "key", key)
		return "", false
	}
	return value, true
}

func (s *store) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(`
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

func (s *store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec("DELETE FROM settings WHERE key = ?", key)
	return err
}
