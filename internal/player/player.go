package player

// Player identifies a participant. The ID is the Slack user ID and is
// assigned externally; players are never created locally.
type Player struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// IDs extracts the IDs of a slice of players, preserving order.
func IDs(players []Player) []string {
	ids := make([]string, len(players))
	for i, p := range players {
		ids[i] = p.ID
	}
	return ids
}
