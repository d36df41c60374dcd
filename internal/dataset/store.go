package dataset

import (
	"sync"
	"time"

	"datadigest/domain/core"
	domainDataset "datadigest/domain/dataset"
	"datadigest/internal/errors"
)

// Entry is the active dataset together with when it was loaded
type Entry struct {
	Dataset  *domainDataset.Dataset
	Format   string
	LoadedAt time.Time
}

// Store holds the active dataset of a session. Loading a new dataset replaces
// the previous one; nothing is persisted.
type Store struct {
	mu      sync.RWMutex
	current *Entry
	now     func() time.Time
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{now: time.Now}
}

// Put makes ds the active dataset
func (s *Store) Put(ds *domainDataset.Dataset, format string) Entry {
	entry := &Entry{Dataset: ds, Format: format, LoadedAt: s.now()}
	s.mu.Lock()
	s.current = entry
	s.mu.Unlock()
	return *entry
}

// Current returns the active dataset
func (s *Store) Current() (Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return Entry{}, errors.NotFound("active dataset")
	}
	return *s.current, nil
}

// Get returns the active dataset when its ID matches id
func (s *Store) Get(id core.ID) (Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil || s.current.Dataset.ID() != id {
		return Entry{}, errors.NotFound("dataset " + id.String())
	}
	return *s.current, nil
}

// Clear drops the active dataset
func (s *Store) Clear() {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
}
