package pubsub

// PubSubClient publishes lifecycle events for external consumers. Publishing
// is fire-and-forget from the engine's point of view: a failed publish is
// logged and never fails the operation that triggered it.
type PubSubClient interface {
	SendMessage(topic EventType, data any) error
}
