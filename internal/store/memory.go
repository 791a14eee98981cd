package store

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
)

// MemoryStore keeps documents in process. Used by tests and the "memory"
// backend.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]map[string][]byte)}
}

func (m *MemoryStore) WhereEqual(ctx context.Context, collection, field string, value any) ([]Snapshot, error) {
	w, err := json.Marshal(value)
	if err != nil {
		return nil, unavailable("encode value", err)
	}
	return m.filter(collection, field, [][]byte{w})
}

func (m *MemoryStore) WhereIn(ctx context.Context, collection, field string, values []string) ([]Snapshot, error) {
	if len(values) > MaxInValues {
		return nil, ErrTooManyValues
	}
	if len(values) == 0 {
		return nil, nil
	}
	wanted := make([][]byte, 0, len(values))
	for _, v := range values {
		w, _ := json.Marshal(v)
		wanted = append(wanted, w)
	}
	return m.filter(collection, field, wanted)
}

func (m *MemoryStore) All(ctx context.Context, collection string) ([]Snapshot, error) {
	return m.filter(collection, "", nil)
}

func (m *MemoryStore) Set(ctx context.Context, collection, id string, data any, fields ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	coll, ok := m.docs[collection]
	if !ok {
		coll = make(map[string][]byte)
		m.docs[collection] = coll
	}
	merged, err := mergeDocument(coll[id], data, fields)
	if err != nil {
		return unavailable("set "+collection+"/"+id, err)
	}
	coll[id] = merged
	return nil
}

// filter returns matching documents ordered by id. An empty field matches all.
func (m *MemoryStore) filter(collection, field string, wanted [][]byte) ([]Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	coll := m.docs[collection]
	ids := make([]string, 0, len(coll))
	for id := range coll {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var out []Snapshot
	for _, id := range ids {
		data := coll[id]
		if field != "" {
			ok, err := fieldMatches(data, field, wanted)
			if err != nil {
				return nil, unavailable("decode "+collection+"/"+id, err)
			}
			if !ok {
				continue
			}
		}
		out = append(out, jsonSnapshot{id: id, data: append([]byte(nil), data...)})
	}
	return out, nil
}
