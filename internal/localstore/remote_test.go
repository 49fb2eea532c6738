package localstore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestRemote(t *testing.T, handler http.HandlerFunc) *APIRemote {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewAPIRemote(server.Client(), testLogger(), server.URL)
}

// TestAPIRemote_Get はコレクションパスへのGETとレスポンス変換を検証する。
func TestAPIRemote_Get(t *testing.T) {
	remote := newTestRemote(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/clients" {
			t.Errorf("path = %s, want /api/clients", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]Record{{"id": "c1", "name": "Acme Inc."}})
	})

	records, err := remote.Get(context.Background(), CollectionClients)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 || records[0].ID() != "c1" {
		t.Errorf("unexpected records: %+v", records)
	}
}

// TestAPIRemote_Add はPOSTリクエストのボディとレスポンス変換を検証する。
func TestAPIRemote_Add(t *testing.T) {
	remote := newTestRemote(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		var rec Record
		if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		rec["id"] = "server-id"
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(rec)
	})

	rec, err := remote.Add(context.Background(), CollectionIdeas, Record{"title": "dark mode"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.ID() != "server-id" {
		t.Errorf("ID = %q, want %q", rec.ID(), "server-id")
	}
}

// TestAPIRemote_Update はid付きパスへのPUTを検証する。
func TestAPIRemote_Update(t *testing.T) {
	remote := newTestRemote(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("method = %s, want PUT", r.Method)
		}
		if r.URL.Path != "/api/projects/p1" {
			t.Errorf("path = %s, want /api/projects/p1", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(Record{"id": "p1", "name": "renamed"})
	})

	rec, err := remote.Update(context.Background(), CollectionProjects, Record{"id": "p1", "name": "renamed"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec["name"] != "renamed" {
		t.Errorf("name = %v, want %q", rec["name"], "renamed")
	}
}

// TestAPIRemote_Delete はid付きパスへのDELETEと204応答の処理を検証する。
func TestAPIRemote_Delete(t *testing.T) {
	remote := newTestRemote(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("method = %s, want DELETE", r.Method)
		}
		if r.URL.Path != "/api/websites/w1" {
			t.Errorf("path = %s, want /api/websites/w1", r.URL.Path)
		}
		w.WriteHeader(http.StatusNoContent)
	})

	if err := remote.Delete(context.Background(), CollectionWebsites, "w1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// TestAPIRemote_ServerError はエラーステータスがエラーとして返ることを検証する。
func TestAPIRemote_ServerError(t *testing.T) {
	remote := newTestRemote(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	if _, err := remote.Get(context.Background(), CollectionClients); err == nil {
		t.Error("expected error for 502 response")
	}
}
