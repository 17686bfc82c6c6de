package rank

import (
	"database/sql"
	"sync"
)

// PlayerStats is a single leaderboard row.
type PlayerStats struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
	Wins       int    `json:"wins"`
	Losses     int    `json:"losses"`
	Score      int    `json:"score"`
}

type entry struct {
	name   string
	wins   int
	losses int
	seq    int
}

// store keeps the stats table in memory as the source of truth and rewrites
// the persisted table after every mutation.
type store struct {
	db      *sql.DB
	mu      sync.RWMutex
	stats   map[string]*entry
	nextSeq int
}
