package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Collection names used by the application.
const (
	Games       = "BoardGame"
	Collections = "GameCollections"
	Users       = "Users"
	GameNights  = "GameNights"
)

// MaxInValues is the largest value set a membership query accepts.
const MaxInValues = 10

var (
	// ErrCacheUnavailable wraps every backend failure.
	ErrCacheUnavailable = errors.New("store: cache unavailable")

	// ErrTooManyValues is returned by WhereIn for more than MaxInValues values.
	ErrTooManyValues = fmt.Errorf("store: membership query limited to %d values", MaxInValues)
)

// Snapshot is one stored document.
type Snapshot interface {
	ID() string
	DataTo(v any) error
}

// Store is the document store the sync pipeline caches into.
type Store interface {
	// WhereEqual returns documents whose field equals value.
	WhereEqual(ctx context.Context, collection, field string, value any) ([]Snapshot, error)
	// WhereIn returns documents whose field is one of values.
	WhereIn(ctx context.Context, collection, field string, values []string) ([]Snapshot, error)
	// All returns every document of collection.
	All(ctx context.Context, collection string) ([]Snapshot, error)
	// Set writes data under id, merging into an existing document. With no
	// fields every top-level key of data is merged; otherwise only the named
	// keys, and a named key absent from data is removed.
	Set(ctx context.Context, collection, id string, data any, fields ...string) error
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrCacheUnavailable, op, err)
}

// jsonSnapshot backs the memory and sqlite stores.
type jsonSnapshot struct {
	id   string
	data []byte
}

func (s jsonSnapshot) ID() string { return s.id }

func (s jsonSnapshot) DataTo(v any) error {
	return json.Unmarshal(s.data, v)
}

// mergeDocument overlays data onto existing (either may be nil) following the
// Set contract and returns the encoded result.
func mergeDocument(existing []byte, data any, fields []string) ([]byte, error) {
	doc := map[string]json.RawMessage{}
	if len(existing) > 0 {
		if err := json.Unmarshal(existing, &doc); err != nil {
			return nil, fmt.Errorf("decode existing document: %w", err)
		}
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	incoming := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &incoming); err != nil {
		return nil, fmt.Errorf("document must be an object: %w", err)
	}

	if len(fields) == 0 {
		for k, v := range incoming {
			doc[k] = v
		}
	} else {
		for _, k := range fields {
			if v, ok := incoming[k]; ok {
				doc[k] = v
			} else {
				delete(doc, k)
			}
		}
	}
	return json.Marshal(doc)
}

// fieldMatches reports whether the document's field encodes to the same JSON
// as one of the wanted values.
func fieldMatches(data []byte, field string, wanted [][]byte) (bool, error) {
	doc := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return false, err
	}
	got, ok := doc[field]
	if !ok {
		return false, nil
	}
	for _, w := range wanted {
		if string(got) == string(w) {
			return true, nil
		}
	}
	return false, nil
}
