package thread

import (
	"sort"
	"time"

	"github.com/AidenBurnzy/AuctusAPP-sub000/internal/model"
)

// Bubble は表示用の1メッセージ。送信元の推定結果を伴う。
type Bubble struct {
	Message model.Message
	Origin  Origin
}

// DayBucket は同一日のメッセージをまとめた表示単位。
// Dateは表示タイムゾーンにおけるその日の0時を指す。
type DayBucket struct {
	Date    time.Time
	Bubbles []Bubble
}

// View はスレッド1回分の描画スナップショット。
// バケットは日付昇順、バケット内のメッセージは作成日時昇順で、
// 最新のメッセージが必ず末尾に来る。
type View struct {
	ClientID string
	Buckets  []DayBucket
}

// ViewSink はスレッドの描画先。描画後に最新メッセージ位置まで
// スクロールするのはSink側の責務とする。
type ViewSink interface {
	Render(view View)
}

// buildView は対象クライアントの非アーカイブメッセージから描画スナップショットを組み立てる。
// 他クライアントのメッセージとアーカイブ済みメッセージは除外し、
// 作成日時の昇順に整列した上で表示タイムゾーンの日付ごとにまとめる。
// 送信元はメッセージごとにこの時点で推定し直す。
func buildView(clientID string, messages []model.Message, pools IdentityPools, loc *time.Location) View {
	visible := make([]model.Message, 0, len(messages))
	for _, m := range messages {
		if m.ClientID != clientID || m.IsArchived {
			continue
		}
		visible = append(visible, m)
	}

	sort.SliceStable(visible, func(i, j int) bool {
		return visible[i].CreatedAt.Before(visible[j].CreatedAt)
	})

	view := View{ClientID: clientID}
	for _, m := range visible {
		local := m.CreatedAt.In(loc)
		day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)

		n := len(view.Buckets)
		if n == 0 || !view.Buckets[n-1].Date.Equal(day) {
			view.Buckets = append(view.Buckets, DayBucket{Date: day})
			n++
		}
		view.Buckets[n-1].Bubbles = append(view.Buckets[n-1].Bubbles, Bubble{
			Message: m,
			Origin:  InferOrigin(m.Author, pools),
		})
	}

	return view
}
