package pubsub

import "cloud.google.com/go/pubsub"

type client struct {
	client   *pubsub.Client
	teardown func()
}

// EventType represents the type of event/message sent via pubsub.
type EventType string

const (
	EventMatchFormed    EventType = "match-formed"
	EventMatchCancelled EventType = "match-cancelled"
	EventMatchReported  EventType = "match-reported"
)

// MatchEvent is the payload published for every lifecycle transition.
type MatchEvent struct {
	MatchID   string   `msgpack:"match_id"`
	TeamA     []string `msgpack:"team_a"`
	TeamB     []string `msgpack:"team_b"`
	Winner    string   `msgpack:"winner,omitempty"`
	CheckedIn int      `msgpack:"checked_in"`
}
