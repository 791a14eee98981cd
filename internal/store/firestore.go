package store

import (
	"context"
	"fmt"
	"os"
	"reflect"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"
)

// FirestoreStore is the Cloud Firestore backend.
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreClient connects to projectID, or to the emulator when
// FIRESTORE_EMULATOR_HOST is set.
func NewFirestoreClient(ctx context.Context, projectID string) (*firestore.Client, error) {
	var opts []option.ClientOption
	if os.Getenv("FIRESTORE_EMULATOR_HOST") != "" {
		opts = append(opts, option.WithoutAuthentication())
	}
	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("firestore client: %w", err)
	}
	return client, nil
}

func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

type firestoreSnapshot struct {
	snap *firestore.DocumentSnapshot
}

func (s firestoreSnapshot) ID() string         { return s.snap.Ref.ID }
func (s firestoreSnapshot) DataTo(v any) error { return s.snap.DataTo(v) }

func (f *FirestoreStore) WhereEqual(ctx context.Context, collection, field string, value any) ([]Snapshot, error) {
	return f.getAll(ctx, f.client.Collection(collection).Where(field, "==", value))
}

func (f *FirestoreStore) WhereIn(ctx context.Context, collection, field string, values []string) ([]Snapshot, error) {
	if len(values) > MaxInValues {
		return nil, ErrTooManyValues
	}
	if len(values) == 0 {
		return nil, nil
	}
	return f.getAll(ctx, f.client.Collection(collection).Where(field, "in", values))
}

func (f *FirestoreStore) All(ctx context.Context, collection string) ([]Snapshot, error) {
	return f.getAll(ctx, f.client.Collection(collection).Query)
}

func (f *FirestoreStore) Set(ctx context.Context, collection, id string, data any, fields ...string) error {
	m, err := firestoreFields(data, fields)
	if err != nil {
		return unavailable("encode "+collection+"/"+id, err)
	}
	if _, err := f.client.Collection(collection).Doc(id).Set(ctx, m, firestore.MergeAll); err != nil {
		return unavailable("set "+collection+"/"+id, err)
	}
	return nil
}

func (f *FirestoreStore) getAll(ctx context.Context, q firestore.Query) ([]Snapshot, error) {
	docs, err := q.Documents(ctx).GetAll()
	if err != nil {
		return nil, unavailable("query", err)
	}
	out := make([]Snapshot, 0, len(docs))
	for _, d := range docs {
		out = append(out, firestoreSnapshot{snap: d})
	}
	return out, nil
}

// firestoreFields flattens a tagged struct into the top-level map MergeAll
// needs. Zero omitempty fields are skipped, or deleted when named in fields.
func firestoreFields(data any, fields []string) (map[string]any, error) {
	if m, ok := data.(map[string]any); ok {
		return m, nil
	}

	v := reflect.ValueOf(data)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, fmt.Errorf("nil document")
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, fmt.Errorf("unsupported document type %T", data)
	}

	var only map[string]bool
	if len(fields) > 0 {
		only = make(map[string]bool, len(fields))
		for _, f := range fields {
			only[f] = true
		}
	}

	out := make(map[string]any)
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		name, omitEmpty := parseFirestoreTag(sf)
		if name == "-" {
			continue
		}
		if only != nil && !only[name] {
			continue
		}
		fv := v.Field(i)
		if omitEmpty && fv.IsZero() {
			if only != nil {
				out[name] = firestore.Delete
			}
			continue
		}
		out[name] = fv.Interface()
	}
	return out, nil
}

func parseFirestoreTag(sf reflect.StructField) (string, bool) {
	tag, ok := sf.Tag.Lookup("firestore")
	if !ok || tag == "" {
		return sf.Name, false
	}
	parts := strings.Split(tag, ",")
	name := parts[0]
	if name == "" {
		name = sf.Name
	}
	for _, p := range parts[1:] {
		if p == "omitempty" {
			return name, true
		}
	}
	return name, false
}
