package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/AidenBurnzy/AuctusAPP-sub000/internal/auth"
	"github.com/AidenBurnzy/AuctusAPP-sub000/internal/middleware"
	"github.com/AidenBurnzy/AuctusAPP-sub000/internal/model"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	// LoginAdmin は管理者のパスワードログインを処理する。
	LoginAdmin(ctx context.Context, username, password string) (string, *model.Session, error)
	// LoginPortal はクライアントポータルアカウントのログインを処理する。
	LoginPortal(ctx context.Context, username, password string) (string, *model.Session, error)
	// Logout はトークンに対応するセッションを破棄する。
	Logout(ctx context.Context, token string) error
	// GetCurrentActor はトークンから現在の認証主体を取得する。
	GetCurrentActor(ctx context.Context, token string) (*auth.Actor, error)
}

// AuthHandlerConfig は認証ハンドラーの設定。
type AuthHandlerConfig struct {
	CookieDomain  string
	CookieSecure  bool
	SessionMaxAge int // セッションCookieの有効期間（秒）
}

// AuthHandler はパスワード認証関連のHTTPハンドラー。
// 管理者ログインとクライアントポータルログインは同一のCookie方式を使う。
type AuthHandler struct {
	service AuthServiceInterface
	config  AuthHandlerConfig
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, config AuthHandlerConfig) *AuthHandler {
	return &AuthHandler{
		service: service,
		config:  config,
	}
}

// loginRequest はログインリクエストのボディ。
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// actorResponse は認証主体のAPIレスポンス。
type actorResponse struct {
	Kind        string `json:"kind"`
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	ClientID    string `json:"client_id,omitempty"`
}

// LoginAdmin は管理者ログインを処理する。
// POST /auth/login
func (h *AuthHandler) LoginAdmin(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, h.service.LoginAdmin)
}

// LoginPortal はクライアントポータルログインを処理する。
// POST /auth/portal/login
func (h *AuthHandler) LoginPortal(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, h.service.LoginPortal)
}

// login はログインリクエストの共通処理。
// 成功時はHTTP OnlyのセッションCookieを設定し、認証主体を返す。
func (h *AuthHandler) login(
	w http.ResponseWriter,
	r *http.Request,
	loginFn func(ctx context.Context, username, password string) (string, *model.Session, error),
) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, newInvalidRequestBodyError())
		return
	}
	if req.Username == "" || req.Password == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewEmptyRequiredFieldError("username, password"))
		return
	}

	token, _, err := loginFn(r.Context(), req.Username, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	h.setSessionCookie(w, token, h.config.SessionMaxAge)

	actor, err := h.service.GetCurrentActor(r.Context(), token)
	if err != nil {
		slog.Error("failed to resolve actor after login", slog.String("error", err.Error()))
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, toActorResponse(actor))
}

// Logout はセッションを破棄しCookieを削除する。冪等。
// POST /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(middleware.SessionCookieName)
	if err == nil && cookie.Value != "" {
		if err := h.service.Logout(r.Context(), cookie.Value); err != nil {
			// セッション破棄の失敗はCookie削除を妨げない
			slog.Warn("logout failed", slog.String("error", err.Error()))
		}
	}

	h.setSessionCookie(w, "", -1)
	w.WriteHeader(http.StatusNoContent)
}

// Me は現在の認証主体を返す。
// GET /auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(middleware.SessionCookieName)
	if err != nil || cookie.Value == "" {
		writeAPIErrorResponse(w, http.StatusUnauthorized, newUnauthorizedError())
		return
	}

	actor, err := h.service.GetCurrentActor(r.Context(), cookie.Value)
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, newUnauthorizedError())
		return
	}

	writeJSONResponse(w, http.StatusOK, toActorResponse(actor))
}

// setSessionCookie はセッションCookieを設定する。maxAgeが負の場合は削除になる。
func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// toActorResponse はauth.ActorからAPIレスポンスに変換する。
func toActorResponse(actor *auth.Actor) actorResponse {
	return actorResponse{
		Kind:        string(actor.Kind),
		ID:          actor.ID,
		DisplayName: actor.DisplayName,
		ClientID:    actor.ClientID,
	}
}
