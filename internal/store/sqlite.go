package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
)

// SQLiteStore keeps documents as JSON text in the documents table.
type SQLiteStore struct {
	DB *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{DB: db}
}

func jsonPath(field string) string {
	return `$."` + strings.ReplaceAll(field, `"`, ``) + `"`
}

func (s *SQLiteStore) WhereEqual(ctx context.Context, collection, field string, value any) ([]Snapshot, error) {
	w, err := json.Marshal(value)
	if err != nil {
		return nil, unavailable("encode value", err)
	}
	// compare decoded values; the type check keeps strings and numbers apart
	return s.query(ctx, `
		SELECT id, data FROM documents
		WHERE collection = ?
		  AND json_type(data, ?) = json_type(?)
		  AND json_extract(data, ?) = json_extract(?, '$')
		ORDER BY id
	`, collection, jsonPath(field), string(w), jsonPath(field), string(w))
}

func (s *SQLiteStore) WhereIn(ctx context.Context, collection, field string, values []string) ([]Snapshot, error) {
	if len(values) > MaxInValues {
		return nil, ErrTooManyValues
	}
	if len(values) == 0 {
		return nil, nil
	}

	args := []any{collection, jsonPath(field), jsonPath(field)}
	marks := make([]string, 0, len(values))
	for _, v := range values {
		marks = append(marks, "?")
		args = append(args, v)
	}
	return s.query(ctx, `
		SELECT id, data FROM documents
		WHERE collection = ? AND json_type(data, ?) = 'text' AND json_extract(data, ?) IN (`+strings.Join(marks, ", ")+`)
		ORDER BY id
	`, args...)
}

func (s *SQLiteStore) All(ctx context.Context, collection string) ([]Snapshot, error) {
	return s.query(ctx, `
		SELECT id, data FROM documents
		WHERE collection = ?
		ORDER BY id
	`, collection)
}

func (s *SQLiteStore) Set(ctx context.Context, collection, id string, data any, fields ...string) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return unavailable("begin tx", err)
	}
	defer tx.Rollback()

	var existing []byte
	err = tx.QueryRowContext(ctx, `
		SELECT data FROM documents WHERE collection = ? AND id = ?
	`, collection, id).Scan(&existing)
	if err != nil && err != sql.ErrNoRows {
		return unavailable("read "+collection+"/"+id, err)
	}

	merged, err := mergeDocument(existing, data, fields)
	if err != nil {
		return unavailable("merge "+collection+"/"+id, err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO documents (collection, id, data, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(collection, id) DO UPDATE SET
		  data = excluded.data,
		  updated_at = CURRENT_TIMESTAMP
	`, collection, id, string(merged)); err != nil {
		return unavailable("write "+collection+"/"+id, err)
	}

	if err := tx.Commit(); err != nil {
		return unavailable("commit", err)
	}
	return nil
}

func (s *SQLiteStore) query(ctx context.Context, q string, args ...any) ([]Snapshot, error) {
	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, unavailable("query", err)
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		var (
			id   string
			data string
		)
		if err := rows.Scan(&id, &data); err != nil {
			return nil, unavailable("scan", err)
		}
		out = append(out, jsonSnapshot{id: id, data: []byte(data)})
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("rows", err)
	}
	return out, nil
}
