package bans

import (
	"database/sql"
	"sort"
	"time"

	"github.com/charmbracelet/log"
)

// New creates a BanStore backed by the given database, loading any persisted
// bans into memory.
func New(db *sql.DB) (BanStore, error) {
	s := &store{
		db:   db,
		bans: make(map[string]time.Time),
		now:  time.Now,
	}
	rows, err := db.Query("SELECT player_id, expires_at FROM bans")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		var expires int64
		if err := rows.Scan(&id, &expires); err != nil {
			log.Error("Failed to scan ban row", "error", err)
			continue
		}
		s.bans[id] = time.Unix(expires, 0)
	}
	log.Info("Loaded ban table", "count", len(s.bans))
	return s, nil
}

func (s *store) Ban(playerID string, duration time.Duration) error {
	if duration <= 0 {
		return ErrInvalidDuration
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bans[playerID] = s.now().Add(duration)
	log.Info("Player banned", "playerID", playerID, "until", s.bans[playerID])
	return s.persistLocked()
}

func (s *store) Unban(playerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bans[playerID]; !ok {
		return ErrNotBanned
	}
	delete(s.bans, playerID)
	log.Info("Player unbanned", "playerID", playerID)
	return s.persistLocked()
}

func (s *store) IsBanned(playerID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	expires, ok := s.bans[playerID]
	if !ok {
		return false
	}
	if s.now().After(expires) {
		delete(s.bans, playerID)
		if err := s.persistLocked(); err != nil {
			log.Error("Failed to persist ban table after lazy purge", "error", err, "playerID", playerID)
		}
		return false
	}
	return true
}

func (s *store) List() []Ban {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	var out []Ban
	for id, expires := range s.bans {
		if now.After(expires) {
			continue
		}
		out = append(out, Ban{PlayerID: id, ExpiresAt: expires})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlayerID < out[j].PlayerID })
	return out
}

// persistLocked rewrites the whole bans table. The in-memory map remains the
// source of truth when the write fails.
func (s *store) persistLocked() error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM bans"); err != nil {
		tx.Rollback()
		return err
	}
	for id, expires := range s.bans {
		if _, err := tx.Exec("INSERT INTO bans (player_id, expires_at) VALUES (?, ?)", id, expires.Unix()); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}
