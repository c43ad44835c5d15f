package driven

// ConfigStore is a flat key/value view of the configuration file. Keys
// are dotted ("retrieval.top_k"). Typed getters return the zero value
// when a key is missing or holds another type; GetFloat widens integers.
type ConfigStore interface {
	Get(key string) (any, bool)
	GetString(key string) string
	GetInt(key string) int
	GetFloat(key string) float64

	// Set stores value and writes it through to the backing file.
	Set(key string, value any) error

	// Save writes everything held in memory.
	Save() error

	// Load discards what is in memory and rereads the backing file.
	Load() error

	// Path locates the backing file.
	Path() string
}
