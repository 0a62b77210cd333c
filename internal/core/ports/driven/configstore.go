package driven

// ConfigStore is flat dot-notation key/value configuration ("library.page_size").
// Typed getters return the zero value for missing or mistyped keys so callers
// can fall back to defaults.
type ConfigStore interface {
	// Get returns the raw value and whether the key exists.
	Get(key string) (any, bool)

	// GetString returns a string value, or "".
	GetString(key string) string

	// GetInt returns an integer value, or 0. Floats are truncated.
	GetInt(key string) int

	// GetFloat returns a numeric value, or 0. Integers are widened.
	GetFloat(key string) float64

	// Set stores a value. File-backed stores persist it immediately.
	Set(key string, value any) error

	// Save persists the current configuration.
	Save() error

	// Path identifies where the configuration lives.
	Path() string
}
