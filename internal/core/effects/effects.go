// Package effects defines effect types as data structures representing I/O operations.
// Planners return effects; the app layer interprets them.
package effects

// Effect is the base interface for all effects.
type Effect interface {
	// EffectType returns a string identifier for the effect type.
	EffectType() string
}

// LogEffect represents a logging operation.
type LogEffect struct {
	Level   string
	Message string
	Fields  map[string]any
}

func (e LogEffect) EffectType() string { return "log" }

// FileEffect represents a file system operation.
// Knowledge-base writes are not effects: they read inputs at execution time.
type FileEffect struct {
	Operation string // "mkdir"
	Path      string
	Mode      uint32 // File permissions
}

func (e FileEffect) EffectType() string { return "file" }
