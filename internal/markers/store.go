// Package markers keeps the set of crawled records the operator flagged as
// already contacted. The flag is local bookkeeping, independent of the
// delivery status the backend tracks for stored contacts.
package markers

import (
	"cmp"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"sync"

	"prospector/internal/utils"
)

const (
	// PositionKey holds markers keyed by list position (JSON list of ints).
	PositionKey = "crawler_contacted_indices"
	// RecordKey holds markers keyed by record content hash.
	RecordKey = "crawler_contacted_keys"
)

// KeyValueStore is the durable byte store backing a Store.
type KeyValueStore interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
}

// Store is a persisted set of record identifiers. Store[int] holds list
// positions, which point at other records once the upstream list changes
// order or length; Store[string] holds content keys (models.RawRecord.Key).
type Store[K cmp.Ordered] struct {
	mu  sync.Mutex
	kv  KeyValueStore
	key string
	ids map[K]struct{}
}

// Load reads the marker set stored under key. A missing key, a read error
// or a payload that does not decode all yield an empty set; failures are
// logged and never returned.
func Load[K cmp.Ordered](kv KeyValueStore, key string) *Store[K] {
	s := &Store[K]{kv: kv, key: key, ids: make(map[K]struct{})}

	raw, ok, err := kv.Get(key)
	if err != nil {
		utils.LogWarning("Could not read contacted markers %q, starting empty: %v", key, err)
		return s
	}
	if !ok || len(raw) == 0 {
		return s
	}

	var ids []K
	if err := json.Unmarshal(raw, &ids); err != nil {
		utils.LogWarning("Could not parse contacted markers %q, starting empty: %v", key, err)
		return s
	}
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
	return s
}

// Toggle flips the marker of id and writes the whole set back before
// returning. It reports the new state of id. When the write fails the
// in-memory set is left as it was, so memory never runs ahead of storage.
func (s *Store[K]) Toggle(id K) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, marked := s.ids[id]
	if marked {
		delete(s.ids, id)
	} else {
		s.ids[id] = struct{}{}
	}

	if err := s.persist(); err != nil {
		if marked {
			s.ids[id] = struct{}{}
		} else {
			delete(s.ids, id)
		}
		return marked, err
	}
	return !marked, nil
}

// Has reports whether id is marked.
func (s *Store[K]) Has(id K) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.ids[id]
	return ok
}

// Len is the number of marked ids.
func (s *Store[K]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}

// IDs returns the marked ids in ascending order.
func (s *Store[K]) IDs() []K {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Sorted(maps.Keys(s.ids))
}

func (s *Store[K]) persist() error {
	payload, err := json.Marshal(slices.Sorted(maps.Keys(s.ids)))
	if err != nil {
		return fmt.Errorf("error encoding contacted markers: %w", err)
	}
	if err := s.kv.Set(s.key, payload); err != nil {
		return fmt.Errorf("error saving contacted markers: %w", err)
	}
	return nil
}
