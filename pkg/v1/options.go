package v1

// Option configures a Client.
type Option func(*clientConfig)

type clientConfig struct {
	scope     string
	dbPath    string
	inMemory  bool
	cacheSize int
}

// WithScope forces a specific scope (global or project).
func WithScope(scope string) Option {
	return func(c *clientConfig) {
		c.scope = scope
	}
}

// WithDatabase opens the store at an explicit database path instead of the
// resolved scope's default.
func WithDatabase(path string) Option {
	return func(c *clientConfig) {
		c.dbPath = path
	}
}

// WithInMemoryStore backs the client with an ephemeral in-memory store.
func WithInMemoryStore() Option {
	return func(c *clientConfig) {
		c.inMemory = true
	}
}

// WithCacheSize sets the head-snapshot cache capacity.
func WithCacheSize(size int) Option {
	return func(c *clientConfig) {
		c.cacheSize = size
	}
}
