package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/mvoss/teampulse-cli/internal/domain"
	"github.com/mvoss/teampulse-cli/internal/ports"
)

// Store keeps values in process memory only. It backs the current-session
// pointer, which by contract does not outlive the process that set it, and
// substitutes for the file store in tests.
type Store struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

var _ ports.KeyValueStore = (*Store)(nil)

func NewStore() *Store {
	return &Store{entries: map[string][]byte{}}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.entries[key]
	if !ok {
		return nil, domain.ErrKeyNotFound
	}

	copied := make([]byte, len(value))
	copy(copied, value)
	return copied, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make([]byte, len(value))
	copy(copied, value)
	s.entries[key] = copied

	return nil
}

func (s *Store) Keys(ctx context.Context, prefix string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.entries))
	for key := range s.entries {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	return keys, nil
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.entries)
}
