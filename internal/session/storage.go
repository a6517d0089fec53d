package session

// Storage is a persistent string key-value namespace, the equivalent of a
// browser's local storage. Implementations need not be safe for concurrent use.
type Storage interface {
	// Get returns the value stored under key and whether it was present.
	Get(key string) (string, bool)
	// Set stores value under key.
	Set(key, value string) error
	// Remove deletes the given keys. Missing keys are not an error.
	Remove(keys ...string) error
}

// MemoryStorage keeps entries in a map for the lifetime of the process.
type MemoryStorage struct {
	entries map[string]string
}

// NewMemoryStorage creates an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{entries: make(map[string]string)}
}

func (m *MemoryStorage) Get(key string) (string, bool) {
	v, ok := m.entries[key]
	return v, ok
}

func (m *MemoryStorage) Set(key, value string) error {
	m.entries[key] = value
	return nil
}

func (m *MemoryStorage) Remove(keys ...string) error {
	for _, k := range keys {
		delete(m.entries, k)
	}
	return nil
}
