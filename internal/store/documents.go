package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a document does not exist in a collection.
var ErrNotFound = errors.New("document not found")

// ErrConflict is returned from a grouped commit when a guarded update finds
// a RequireAbsent field already set. The whole group rolls back.
var ErrConflict = errors.New("document changed concurrently")

// NewID returns a fresh document identifier. Callers that need to reference
// a document inside a grouped commit generate the id up front.
func NewID() string {
	return uuid.NewString()
}

// OpKind discriminates the writes carried by a grouped commit.
type OpKind int

const (
	OpAdd OpKind = iota
	OpSet
	OpUpdate
)

// Op is a single write inside a grouped commit.
type Op struct {
	Kind       OpKind
	Collection string
	ID         string
	Doc        any            // OpAdd/OpSet: the full document
	Patch      map[string]any // OpUpdate: fields merged into the stored document

	// RequireAbsent names fields that must be missing or empty in the
	// stored document for an OpUpdate to proceed. A set field fails the
	// op with ErrConflict. The check runs inside the transaction, so it
	// guards against writes that landed after the caller's read.
	RequireAbsent []string
}

// Document is a raw stored document, returned by List.
type Document struct {
	ID  string
	Doc []byte
}

// querier is satisfied by both *sql.DB and *sql.Tx so document operations
// can run standalone or inside a grouped commit.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Get loads the document (collection, id) into out.
func (db *DB) Get(ctx context.Context, collection, id string, out any) error {
	return getDoc(ctx, db.DB, collection, id, out)
}

// Add stores v as a new document under a generated id and returns the id.
func (db *DB) Add(ctx context.Context, collection string, v any) (string, error) {
	id := NewID()
	if err := insertDoc(ctx, db.DB, collection, id, v); err != nil {
		return "", err
	}
	return id, nil
}

// Set stores v under an explicit id, replacing any existing document.
func (db *DB) Set(ctx context.Context, collection, id string, v any) error {
	return upsertDoc(ctx, db.DB, collection, id, v)
}

// Update merges patch fields into the stored document.
func (db *DB) Update(ctx context.Context, collection, id string, patch map[string]any) error {
	return updateDoc(ctx, db.DB, collection, id, patch, nil)
}

// List returns all documents in a collection in creation order. Callers
// decode each document themselves.
func (db *DB) List(ctx context.Context, collection string) ([]Document, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT id, doc FROM documents WHERE collection = ? ORDER BY created_at ASC, id ASC",
		collection,
	)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var d Document
		var raw string
		if err := rows.Scan(&d.ID, &raw); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		d.Doc = []byte(raw)
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// Apply executes ops inside a single transaction: either every write
// commits or none do. This is the grouped-write primitive the batch
// conversion driver relies on.
func (db *DB) Apply(ctx context.Context, ops []Op) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, op := range ops {
		switch op.Kind {
		case OpAdd:
			err = insertDoc(ctx, tx, op.Collection, op.ID, op.Doc)
		case OpSet:
			err = upsertDoc(ctx, tx, op.Collection, op.ID, op.Doc)
		case OpUpdate:
			err = updateDoc(ctx, tx, op.Collection, op.ID, op.Patch, op.RequireAbsent)
		default:
			err = fmt.Errorf("unknown op kind %d", op.Kind)
		}
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func getDoc(ctx context.Context, q querier, collection, id string, out any) error {
	var raw string
	err := q.QueryRowContext(ctx,
		"SELECT doc FROM documents WHERE collection = ? AND id = ?",
		collection, id,
	).Scan(&raw)
	if err == sql.ErrNoRows {
		return fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("loading document: %w", err)
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("decoding document: %w", err)
	}
	return nil
}

func insertDoc(ctx context.Context, q querier, collection, id string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}
	if _, err := q.ExecContext(ctx,
		"INSERT INTO documents (collection, id, doc) VALUES (?, ?, ?)",
		collection, id, string(data),
	); err != nil {
		return fmt.Errorf("inserting document: %w", err)
	}
	return nil
}

func upsertDoc(ctx context.Context, q querier, collection, id string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}
	if _, err := q.ExecContext(ctx,
		`INSERT INTO documents (collection, id, doc) VALUES (?, ?, ?)
		 ON CONFLICT(collection, id) DO UPDATE SET doc = excluded.doc, updated_at = CURRENT_TIMESTAMP`,
		collection, id, string(data),
	); err != nil {
		return fmt.Errorf("storing document: %w", err)
	}
	return nil
}

func updateDoc(ctx context.Context, q querier, collection, id string, patch map[string]any, requireAbsent []string) error {
	var current map[string]any
	if err := getDoc(ctx, q, collection, id, &current); err != nil {
		return err
	}

	for _, field := range requireAbsent {
		if v, ok := current[field]; ok {
			if s, isStr := v.(string); !isStr || s != "" {
				return fmt.Errorf("%s/%s field %q already set: %w", collection, id, field, ErrConflict)
			}
		}
	}

	for k, v := range patch {
		current[k] = v
	}

	data, err := json.Marshal(current)
	if err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}
	if _, err := q.ExecContext(ctx,
		"UPDATE documents SET doc = ?, updated_at = CURRENT_TIMESTAMP WHERE collection = ? AND id = ?",
		string(data), collection, id,
	); err != nil {
		return fmt.Errorf("updating document: %w", err)
	}
	return nil
}
