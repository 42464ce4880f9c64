package types

// Event represents a typed event emitted during a settlement state transition.
// Attributes carry string-rendered fields so downstream indexers stay
// schema-free.
type Event struct {
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes"`
}
