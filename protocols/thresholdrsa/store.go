package thresholdrsa

import "sync"

// Store maps a username (a registered secret name) to the share
// configuration of this server. It is safe for concurrent use.
//
// The first registration of a name wins: registering a name again is a
// no-op.
type Store struct {
	mu      sync.RWMutex
	configs map[string]*RsaShareConfiguration
}

// NewStore returns an empty store
func NewStore() *Store {
	return &Store{configs: make(map[string]*RsaShareConfiguration)}
}

// Register stores cfg under username unless the name is already registered.
// It returns true if cfg was stored.
func (s *Store) Register(username string, cfg *RsaShareConfiguration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.configs[username]; ok {
		return false
	}
	s.configs[username] = cfg
	return true
}

// Lookup returns the configuration registered under username
func (s *Store) Lookup(username string) (*RsaShareConfiguration, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cfg, ok := s.configs[username]
	return cfg, ok
}

// Len returns the number of registered names
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.configs)
}
