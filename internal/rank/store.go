package rank

import (
	"database/sql"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/tenman-bot/tenman/internal/player"
)

// New creates a RankStore backed by the given database, loading any persisted
// stats into memory.
func New(db *sql.DB) (RankStore, error) {
	s := &store{
		db:    db,
		stats: make(map[string]*entry),
	}
	rows, err := db.Query("SELECT player_id, player_name, wins, losses, seq FROM player_stats ORDER BY seq")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id, name string
		var wins, losses, seq int
		if err := rows.Scan(&id, &name, &wins, &losses, &seq); err != nil {
			log.Error("Failed to scan player stats row", "error", err)
			continue
		}
		s.stats[id] = &entry{name: name, wins: wins, losses: losses, seq: seq}
		if seq >= s.nextSeq {
			s.nextSeq = seq + 1
		}
	}
	log.Info("Loaded player stats", "count", len(s.stats))
	return s, nil
}

func (s *store) Record(winners, losers []player.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range winners {
		s.touchLocked(p).wins++
	}
	for _, p := range losers {
		s.touchLocked(p).losses++
	}
	log.Info("Recorded match result", "winners", len(winners), "losers", len(losers))
	return s.persistLocked()
}

// touchLocked returns the player's entry, creating it at the next insertion
// slot if this is the first time the player is recorded.
func (s *store) touchLocked(p player.Player) *entry {
	e, ok := s.stats[p.ID]
	if !ok {
		e = &entry{name: p.Name, seq: s.nextSeq}
		s.nextSeq++
		s.stats[p.ID] = e
	}
	if p.Name != "" {
		e.name = p.Name
	}
	return e
}

func (s *store) Score(playerID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.stats[playerID]
	if !ok {
		return 0
	}
	return e.wins - e.losses
}

func (s *store) Scores(playerIDs []string) map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	scores := make(map[string]int, len(playerIDs))
	for _, id := range playerIDs {
		if e, ok := s.stats[id]; ok {
			scores[id] = e.wins - e.losses
		} else {
			scores[id] = 0
		}
	}
	return scores
}

func (s *store) Leaderboard(limit int) []PlayerStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]PlayerStats, 0, len(s.stats))
	seqs := make(map[string]int, len(s.stats))
	for id, e := range s.stats {
		out = append(out, PlayerStats{
			PlayerID:   id,
			PlayerName: e.name,
			Wins:       e.wins,
			Losses:     e.losses,
			Score:      e.wins - e.losses,
		})
		seqs[id] = e.seq
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return seqs[out[i].PlayerID] < seqs[out[j].PlayerID]
	})
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (s *store) ResetAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats = make(map[string]*entry)
	s.nextSeq = 0
	log.Info("Player stats reset")
	return s.persistLocked()
}

// persistLocked rewrites the whole stats table. The in-memory map remains the
// source of truth when the write fails.
func (s *store) persistLocked() error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM player_stats"); err != nil {
		tx.Rollback()
		return err
	}
	stmt, err := tx.Prepare("INSERT INTO player_stats (player_id, player_name, wins, losses, seq) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()
	for id, e := range s.stats {
		if _, err := stmt.Exec(id, e.name, e.wins, e.losses, e.seq); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}
