package store

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
)

type testDoc struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestAddAndGet(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	id, err := db.Add(ctx, "things", testDoc{Name: "widget", Count: 2})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if id == "" {
		t.Fatal("Add returned empty id")
	}

	var got testDoc
	if err := db.Get(ctx, "things", id, &got); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "widget" || got.Count != 2 {
		t.Errorf("got %+v, want widget/2", got)
	}
}

func TestGetNotFound(t *testing.T) {
	db := openTestDB(t)

	var got testDoc
	err := db.Get(context.Background(), "things", "missing", &got)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSetReplacesDocument(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if err := db.Set(ctx, "things", "fixed-id", testDoc{Name: "widget", Count: 1}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := db.Set(ctx, "things", "fixed-id", testDoc{Name: "gadget"}); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}

	var got testDoc
	if err := db.Get(ctx, "things", "fixed-id", &got); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "gadget" || got.Count != 0 {
		t.Errorf("got %+v, want full replacement", got)
	}
}

func TestUpdateMergesPatch(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	id, err := db.Add(ctx, "things", testDoc{Name: "widget", Count: 2})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	if err := db.Update(ctx, "things", id, map[string]any{"count": 5}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	var got testDoc
	if err := db.Get(ctx, "things", id, &got); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "widget" {
		t.Errorf("patch clobbered untouched field: name = %q", got.Name)
	}
	if got.Count != 5 {
		t.Errorf("count = %d, want 5", got.Count)
	}
}

func TestUpdateNotFound(t *testing.T) {
	db := openTestDB(t)
	err := db.Update(context.Background(), "things", "missing", map[string]any{"count": 1})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListOrderAndDecode(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	for i, name := range []string{"a", "b", "c"} {
		if _, err := db.Add(ctx, "things", testDoc{Name: name, Count: i}); err != nil {
			t.Fatalf("Add %q: %v", name, err)
		}
	}

	docs, err := db.List(ctx, "things")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("expected 3 documents, got %d", len(docs))
	}
	for _, d := range docs {
		var got testDoc
		if err := json.Unmarshal(d.Doc, &got); err != nil {
			t.Errorf("decoding %s: %v", d.ID, err)
		}
	}
}

func TestApplyCommitsAsGroup(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	id, err := db.Add(ctx, "things", testDoc{Name: "widget", Count: 1})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	newID := NewID()
	ops := []Op{
		{Kind: OpAdd, Collection: "things", ID: newID, Doc: testDoc{Name: "gadget"}},
		{Kind: OpUpdate, Collection: "things", ID: id, Patch: map[string]any{"count": 9}},
	}
	if err := db.Apply(ctx, ops); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	var added, updated testDoc
	if err := db.Get(ctx, "things", newID, &added); err != nil {
		t.Errorf("added doc missing: %v", err)
	}
	if err := db.Get(ctx, "things", id, &updated); err != nil {
		t.Fatalf("Get updated: %v", err)
	}
	if updated.Count != 9 {
		t.Errorf("count = %d, want 9", updated.Count)
	}
}

func TestApplySetUpserts(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if err := db.Set(ctx, "things", "fixed-id", testDoc{Name: "widget", Count: 1}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	ops := []Op{
		{Kind: OpSet, Collection: "things", ID: "fixed-id", Doc: testDoc{Name: "gadget", Count: 2}},
	}
	if err := db.Apply(ctx, ops); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	var got testDoc
	if err := db.Get(ctx, "things", "fixed-id", &got); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "gadget" || got.Count != 2 {
		t.Errorf("got %+v, want replacement by grouped set", got)
	}
}

func TestApplyGuardedUpdateConflict(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	id, err := db.Add(ctx, "things", map[string]any{"name": "widget", "owner": "alex"})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	newID := NewID()
	ops := []Op{
		{Kind: OpAdd, Collection: "things", ID: newID, Doc: testDoc{Name: "gadget"}},
		{Kind: OpUpdate, Collection: "things", ID: id,
			Patch:         map[string]any{"owner": "sam"},
			RequireAbsent: []string{"owner"}},
	}
	if err := db.Apply(ctx, ops); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	var got testDoc
	if err := db.Get(ctx, "things", newID, &got); !errors.Is(err, ErrNotFound) {
		t.Errorf("add from conflicted group leaked: err = %v", err)
	}

	// Empty and missing fields satisfy the guard.
	ops = []Op{
		{Kind: OpUpdate, Collection: "things", ID: id,
			Patch:         map[string]any{"color": "red"},
			RequireAbsent: []string{"color"}},
	}
	if err := db.Apply(ctx, ops); err != nil {
		t.Errorf("guard on absent field should pass: %v", err)
	}
}

func TestApplyRollsBackOnFailure(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	newID := NewID()
	ops := []Op{
		{Kind: OpAdd, Collection: "things", ID: newID, Doc: testDoc{Name: "gadget"}},
		// Updating a missing document fails the whole group.
		{Kind: OpUpdate, Collection: "things", ID: "missing", Patch: map[string]any{"count": 1}},
	}

	if err := db.Apply(ctx, ops); err == nil {
		t.Fatal("expected Apply to fail")
	}

	var got testDoc
	if err := db.Get(ctx, "things", newID, &got); !errors.Is(err, ErrNotFound) {
		t.Errorf("add from failed group leaked: err = %v", err)
	}
}

func TestStateRoundTrip(t *testing.T) {
	db := openTestDB(t)

	if v, err := db.GetState("cursor"); err != nil || v != "" {
		t.Fatalf("GetState on empty = (%q, %v), want empty", v, err)
	}
	if err := db.SetState("cursor", "abc"); err != nil {
		t.Fatalf("SetState: %v", err)
	}
	if err := db.SetState("cursor", "def"); err != nil {
		t.Fatalf("SetState overwrite: %v", err)
	}
	v, err := db.GetState("cursor")
	if err != nil || v != "def" {
		t.Errorf("GetState = (%q, %v), want def", v, err)
	}
}
