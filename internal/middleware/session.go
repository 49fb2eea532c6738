// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/AidenBurnzy/AuctusAPP-sub000/internal/auth"
	"github.com/AidenBurnzy/AuctusAPP-sub000/internal/model"
)

// SessionCookieName はセッショントークンを保持するHTTP Only Cookieの名前。
// ログインハンドラーがCookieを設定し、セッションミドルウェアが読み取る。
const SessionCookieName = "session_id"

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// actorContextKey はリクエストコンテキストに認証主体を格納するためのキー。
var actorContextKey = contextKey("actor")

// ActorResolver はセッショントークンから認証主体を解決するインターフェース。
// auth.Serviceの部分集合として定義する。
type ActorResolver interface {
	GetCurrentActor(ctx context.Context, token string) (*auth.Actor, error)
}

// NewSessionMiddleware はHTTP Only Cookieからセッショントークンを読み取り、
// 認証主体を解決するミドルウェアを返す。
// 解決したActor（管理者またはクライアントポータル）をリクエストコンテキストに注入する。
// 未認証リクエストには401 Unauthorizedを返す。
func NewSessionMiddleware(resolver ActorResolver) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. Cookieからセッショントークンを取得
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			// 2. トークンから認証主体を解決
			// 期限切れ・未登録トークンは日常的に発生するためDebugレベルで記録する
			actor, err := resolver.GetCurrentActor(r.Context(), cookie.Value)
			if err != nil {
				slog.Debug("session resolution failed",
					slog.String("error", err.Error()),
				)
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			// 3. 認証主体をコンテキストに注入
			next.ServeHTTP(w, r.WithContext(ContextWithActor(r.Context(), actor)))
		})
	}
}

// NewRequireAdminMiddleware は管理者のみにアクセスを許可するミドルウェアを返す。
// セッションミドルウェアの後に配置する。
// クライアントポータルのセッションには403 Forbiddenを返す。
func NewRequireAdminMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, err := ActorFromContext(r.Context())
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			if actor.Kind != model.ActorKindAdmin {
				WriteErrorResponse(w, http.StatusForbidden, model.NewForbiddenClientDataError())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ActorFromContext はリクエストコンテキストから認証主体を取得する。
// セッションミドルウェアを通過したリクエストでのみ有効。
func ActorFromContext(ctx context.Context) (*auth.Actor, error) {
	actor, ok := ctx.Value(actorContextKey).(*auth.Actor)
	if !ok || actor == nil {
		return nil, fmt.Errorf("actor not found in context")
	}
	return actor, nil
}

// ContextWithActor はコンテキストに認証主体を注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithActor(ctx context.Context, actor *auth.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey, actor)
}
