// Package thread は1クライアント分の会話スレッドを管理するコントローラを提供する。
// フラットなメッセージ一覧から送信元を推定し、日付ごとにまとめた表示ビューを組み立て、
// 定期ポーリングと既読化をライフサイクルとして制御する。
package thread

import "strings"

// Origin はメッセージ送信元の推定分類を表す。
type Origin string

const (
	// OriginAdmin は運営側からのメッセージを表す。
	OriginAdmin Origin = "admin"
	// OriginClient はクライアント側からのメッセージを表す。
	OriginClient Origin = "client"
)

// adminIndicators は運営側と判定する固定の部分一致キーワード。
var adminIndicators = []string{"admin", "auctus", "team", "support"}

// IdentityPools は送信元推定に使う識別子プール。
// クライアント側はクライアント名・会社名・担当者名の別名集合、
// 運営側は現在の管理者表示名を持つ。
type IdentityPools struct {
	ClientAliases []string
	AdminNames    []string
}

// InferOrigin は送信者ラベルから送信元を推定する。
//
// ラベルとプールはトリム・小文字化して比較する。空ラベルはadmin。
// 運営プールとの完全一致または部分一致を先に判定し、次にクライアントプール、
// 最後に固定キーワード（admin/auctus/team/support）の部分一致を見る。
// どれにも該当しないラベルはadminに分類される。未知の送信者がadminに倒れるのは
// 意図した挙動であり、呼び出し側はこの結果を保存せず表示のたびに再計算すること。
func InferOrigin(authorLabel string, pools IdentityPools) Origin {
	label := strings.ToLower(strings.TrimSpace(authorLabel))
	if label == "" {
		return OriginAdmin
	}

	if matchesPool(label, pools.AdminNames) {
		return OriginAdmin
	}
	if matchesPool(label, pools.ClientAliases) {
		return OriginClient
	}

	for _, indicator := range adminIndicators {
		if strings.Contains(label, indicator) {
			return OriginAdmin
		}
	}

	return OriginAdmin
}

// matchesPool はラベルがプール内のいずれかの識別子と一致（完全一致または包含）するか判定する。
// 空の識別子はすべてのラベルに包含されてしまうため読み飛ばす。
func matchesPool(label string, pool []string) bool {
	for _, entry := range pool {
		entry = strings.ToLower(strings.TrimSpace(entry))
		if entry == "" {
			continue
		}
		if label == entry || strings.Contains(label, entry) {
			return true
		}
	}
	return false
}
