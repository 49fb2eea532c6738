package localstore

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestLocalStore(t *testing.T) *LocalStore {
	t.Helper()
	store, err := NewLocalStore(filepath.Join(t.TempDir(), "cache"), testLogger())
	if err != nil {
		t.Fatalf("failed to open local store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// TestLocalStore_GetEmptyCollection は未書き込みのコレクションが
// エラーにならず空スライスを返すことを検証する。
func TestLocalStore_GetEmptyCollection(t *testing.T) {
	store := newTestLocalStore(t)

	records, err := store.Get(CollectionClients)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if records == nil {
		t.Fatal("records should be an empty slice, not nil")
	}
	if len(records) != 0 {
		t.Errorf("len(records) = %d, want 0", len(records))
	}
}

// TestLocalStore_PutGetRoundtrip は書き込んだレコードが取得できることを検証する。
func TestLocalStore_PutGetRoundtrip(t *testing.T) {
	store := newTestLocalStore(t)

	rec := Record{"id": "client-1", "name": "Acme Inc.", "status": "active"}
	if err := store.Put(CollectionClients, rec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	records, err := store.Get(CollectionClients)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("len(records) = %d, want 1", len(records))
	}
	if records[0].ID() != "client-1" {
		t.Errorf("ID = %q, want %q", records[0].ID(), "client-1")
	}
	if records[0]["name"] != "Acme Inc." {
		t.Errorf("name = %v, want %q", records[0]["name"], "Acme Inc.")
	}
}

// TestLocalStore_PutOverwritesSameID は同一idの書き込みが上書きになることを検証する。
func TestLocalStore_PutOverwritesSameID(t *testing.T) {
	store := newTestLocalStore(t)

	if err := store.Put(CollectionIdeas, Record{"id": "idea-1", "title": "v1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.Put(CollectionIdeas, Record{"id": "idea-1", "title": "v2"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	records, err := store.Get(CollectionIdeas)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("len(records) = %d, want 1", len(records))
	}
	if records[0]["title"] != "v2" {
		t.Errorf("title = %v, want %q", records[0]["title"], "v2")
	}
}

// TestLocalStore_PutWithoutID はid欠落レコードの書き込みが拒否されることを検証する。
func TestLocalStore_PutWithoutID(t *testing.T) {
	store := newTestLocalStore(t)

	if err := store.Put(CollectionClients, Record{"name": "no id"}); err == nil {
		t.Error("expected error for record without id")
	}
}

// TestLocalStore_Delete は削除後にレコードが消え、二重削除もエラーに
// ならないことを検証する。
func TestLocalStore_Delete(t *testing.T) {
	store := newTestLocalStore(t)

	if err := store.Put(CollectionProjects, Record{"id": "p1", "name": "site build"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.Delete(CollectionProjects, "p1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	records, err := store.Get(CollectionProjects)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("len(records) = %d, want 0", len(records))
	}

	if err := store.Delete(CollectionProjects, "p1"); err != nil {
		t.Errorf("second delete should succeed, got %v", err)
	}
}

// TestLocalStore_Replace はコレクションの内容がまるごと置き換わることを検証する。
func TestLocalStore_Replace(t *testing.T) {
	store := newTestLocalStore(t)

	if err := store.Put(CollectionWebsites, Record{"id": "old", "url": "https://old.example.com"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := store.Replace(CollectionWebsites, []Record{
		{"id": "w1", "url": "https://a.example.com"},
		{"id": "w2", "url": "https://b.example.com"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	records, err := store.Get(CollectionWebsites)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(records))
	}
	for _, rec := range records {
		if rec.ID() == "old" {
			t.Error("replaced collection should not contain the old record")
		}
	}
}

// TestLocalStore_CollectionsAreIsolated はコレクション間でキーが
// 混ざらないことを検証する。
func TestLocalStore_CollectionsAreIsolated(t *testing.T) {
	store := newTestLocalStore(t)

	if err := store.Put(CollectionClients, Record{"id": "x", "name": "client"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.Put(CollectionFinances, Record{"id": "x", "amount": 100}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	clients, err := store.Get(CollectionClients)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(clients) != 1 || clients[0]["name"] != "client" {
		t.Errorf("unexpected clients: %+v", clients)
	}
}
