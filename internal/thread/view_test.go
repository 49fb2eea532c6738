package thread

import (
	"testing"
	"time"

	"github.com/AidenBurnzy/AuctusAPP-sub000/internal/model"
)

func testPools() IdentityPools {
	return IdentityPools{
		ClientAliases: []string{"Jane (Client)", "Acme Inc."},
		AdminNames:    []string{"Aiden"},
	}
}

func msgAt(id, clientID, author string, createdAt time.Time) model.Message {
	return model.Message{
		ID:        id,
		ClientID:  clientID,
		Body:      "body of " + id,
		Author:    author,
		CreatedAt: createdAt,
	}
}

// TestBuildView_GroupsByLocalDay はメッセージが表示タイムゾーンの日付ごとに
// まとめられることを検証する。
func TestBuildView_GroupsByLocalDay(t *testing.T) {
	loc := time.UTC
	day1 := time.Date(2026, 3, 1, 9, 0, 0, 0, loc)
	day2 := time.Date(2026, 3, 2, 10, 0, 0, 0, loc)

	msgs := []model.Message{
		msgAt("m1", "client-1", "Jane (Client)", day1),
		msgAt("m2", "client-1", "Aiden", day1.Add(2*time.Hour)),
		msgAt("m3", "client-1", "Jane (Client)", day2),
	}

	view := buildView("client-1", msgs, testPools(), loc)

	if len(view.Buckets) != 2 {
		t.Fatalf("len(Buckets) = %d, want 2", len(view.Buckets))
	}
	if len(view.Buckets[0].Bubbles) != 2 {
		t.Errorf("first bucket has %d bubbles, want 2", len(view.Buckets[0].Bubbles))
	}
	if len(view.Buckets[1].Bubbles) != 1 {
		t.Errorf("second bucket has %d bubbles, want 1", len(view.Buckets[1].Bubbles))
	}

	wantDate := time.Date(2026, 3, 1, 0, 0, 0, 0, loc)
	if !view.Buckets[0].Date.Equal(wantDate) {
		t.Errorf("first bucket date = %v, want %v", view.Buckets[0].Date, wantDate)
	}
}

// TestBuildView_SortsAscending は入力順に関わらず作成日時の昇順に
// 整列され、最新のメッセージが末尾に来ることを検証する。
func TestBuildView_SortsAscending(t *testing.T) {
	loc := time.UTC
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, loc)

	// 一覧APIは降順で返すことがある
	msgs := []model.Message{
		msgAt("newest", "client-1", "Aiden", base.Add(2*time.Hour)),
		msgAt("middle", "client-1", "Jane (Client)", base.Add(time.Hour)),
		msgAt("oldest", "client-1", "Aiden", base),
	}

	view := buildView("client-1", msgs, testPools(), loc)

	if len(view.Buckets) != 1 {
		t.Fatalf("len(Buckets) = %d, want 1", len(view.Buckets))
	}
	bubbles := view.Buckets[0].Bubbles
	if len(bubbles) != 3 {
		t.Fatalf("len(Bubbles) = %d, want 3", len(bubbles))
	}
	wantOrder := []string{"oldest", "middle", "newest"}
	for i, want := range wantOrder {
		if bubbles[i].Message.ID != want {
			t.Errorf("bubbles[%d].ID = %q, want %q", i, bubbles[i].Message.ID, want)
		}
	}
}

// TestBuildView_ExcludesArchivedAndOtherClients はアーカイブ済みと
// 他クライアントのメッセージが除外されることを検証する。
func TestBuildView_ExcludesArchivedAndOtherClients(t *testing.T) {
	loc := time.UTC
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, loc)

	archived := msgAt("archived", "client-1", "Aiden", base)
	archived.IsArchived = true

	msgs := []model.Message{
		msgAt("visible", "client-1", "Jane (Client)", base),
		archived,
		msgAt("other", "client-2", "Jane (Client)", base),
	}

	view := buildView("client-1", msgs, testPools(), loc)

	if len(view.Buckets) != 1 || len(view.Buckets[0].Bubbles) != 1 {
		t.Fatalf("expected exactly 1 visible bubble, got %+v", view.Buckets)
	}
	if view.Buckets[0].Bubbles[0].Message.ID != "visible" {
		t.Errorf("bubble ID = %q, want %q", view.Buckets[0].Bubbles[0].Message.ID, "visible")
	}
}

// TestBuildView_TagsOrigins は各バブルに送信元の推定結果が付与されることを検証する。
func TestBuildView_TagsOrigins(t *testing.T) {
	loc := time.UTC
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, loc)

	msgs := []model.Message{
		msgAt("from-client", "client-1", "Jane (Client)", base),
		msgAt("from-empty", "client-1", "", base.Add(time.Minute)),
		msgAt("from-support", "client-1", "Auctus Support", base.Add(2*time.Minute)),
	}

	view := buildView("client-1", msgs, testPools(), loc)

	bubbles := view.Buckets[0].Bubbles
	if bubbles[0].Origin != OriginClient {
		t.Errorf("alias match: Origin = %q, want %q", bubbles[0].Origin, OriginClient)
	}
	if bubbles[1].Origin != OriginAdmin {
		t.Errorf("empty label: Origin = %q, want %q", bubbles[1].Origin, OriginAdmin)
	}
	if bubbles[2].Origin != OriginAdmin {
		t.Errorf("indicator match: Origin = %q, want %q", bubbles[2].Origin, OriginAdmin)
	}
}

// TestBuildView_EmptyInput は空の入力から空のビューが組み立てられることを検証する。
func TestBuildView_EmptyInput(t *testing.T) {
	view := buildView("client-1", nil, testPools(), time.UTC)

	if view.ClientID != "client-1" {
		t.Errorf("ClientID = %q, want %q", view.ClientID, "client-1")
	}
	if len(view.Buckets) != 0 {
		t.Errorf("len(Buckets) = %d, want 0", len(view.Buckets))
	}
}
