// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, client, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeClientNotFound      = "CLIENT_NOT_FOUND"
	ErrCodeMessageNotFound     = "MESSAGE_NOT_FOUND"
	ErrCodeProjectNotFound     = "PROJECT_NOT_FOUND"
	ErrCodeWebsiteNotFound     = "WEBSITE_NOT_FOUND"
	ErrCodeIdeaNotFound        = "IDEA_NOT_FOUND"
	ErrCodeFinanceNotFound     = "FINANCE_NOT_FOUND"
	ErrCodeEmptyMessageBody    = "EMPTY_MESSAGE_BODY"
	ErrCodeEmptyRequiredField  = "EMPTY_REQUIRED_FIELD"
	ErrCodeInvalidCredentials  = "INVALID_CREDENTIALS"
	ErrCodeInvalidFinanceKind  = "INVALID_FINANCE_KIND"
	ErrCodeInvalidURL          = "INVALID_URL"
	ErrCodeSSRFBlocked         = "SSRF_BLOCKED"
	ErrCodeStoreUnavailable    = "STORE_UNAVAILABLE"
	ErrCodeForbiddenClientData = "FORBIDDEN_CLIENT_DATA"
)

// NewClientNotFoundError はクライアント未検出エラーを生成する。
func NewClientNotFoundError(clientID string) *APIError {
	return &APIError{
		Code:     ErrCodeClientNotFound,
		Message:  fmt.Sprintf("指定されたクライアントが見つかりません: %s", clientID),
		Category: "client",
		Action:   "クライアントIDを確認してください。",
	}
}

// NewMessageNotFoundError はメッセージ未検出エラーを生成する。
func NewMessageNotFoundError(messageID string) *APIError {
	return &APIError{
		Code:     ErrCodeMessageNotFound,
		Message:  fmt.Sprintf("指定されたメッセージが見つかりません: %s", messageID),
		Category: "client",
		Action:   "メッセージIDを確認してください。",
	}
}

// NewProjectNotFoundError は案件未検出エラーを生成する。
func NewProjectNotFoundError(projectID string) *APIError {
	return &APIError{
		Code:     ErrCodeProjectNotFound,
		Message:  fmt.Sprintf("指定された案件が見つかりません: %s", projectID),
		Category: "client",
		Action:   "案件IDを確認してください。",
	}
}

// NewWebsiteNotFoundError はWebサイト未検出エラーを生成する。
func NewWebsiteNotFoundError(websiteID string) *APIError {
	return &APIError{
		Code:     ErrCodeWebsiteNotFound,
		Message:  fmt.Sprintf("指定されたWebサイトが見つかりません: %s", websiteID),
		Category: "client",
		Action:   "WebサイトIDを確認してください。",
	}
}

// NewIdeaNotFoundError はアイデア未検出エラーを生成する。
func NewIdeaNotFoundError(ideaID string) *APIError {
	return &APIError{
		Code:     ErrCodeIdeaNotFound,
		Message:  fmt.Sprintf("指定されたアイデアが見つかりません: %s", ideaID),
		Category: "client",
		Action:   "アイデアIDを確認してください。",
	}
}

// NewFinanceNotFoundError は収支レコード未検出エラーを生成する。
func NewFinanceNotFoundError(financeID string) *APIError {
	return &APIError{
		Code:     ErrCodeFinanceNotFound,
		Message:  fmt.Sprintf("指定された収支レコードが見つかりません: %s", financeID),
		Category: "client",
		Action:   "レコードIDを確認してください。",
	}
}

// NewEmptyMessageBodyError はメッセージ本文が空の場合のエラーを生成する。
func NewEmptyMessageBodyError() *APIError {
	return &APIError{
		Code:     ErrCodeEmptyMessageBody,
		Message:  "メッセージ本文が空です。",
		Category: "validation",
		Action:   "本文を入力してから送信してください。",
	}
}

// NewEmptyRequiredFieldError は必須フィールドが空の場合のエラーを生成する。
func NewEmptyRequiredFieldError(field string) *APIError {
	return &APIError{
		Code:     ErrCodeEmptyRequiredField,
		Message:  fmt.Sprintf("必須フィールドが入力されていません: %s", field),
		Category: "validation",
		Action:   "入力内容を確認してください。",
	}
}

// NewInvalidCredentialsError は認証失敗エラーを生成する。
// ユーザー名不明とパスワード不一致を区別しない。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "ユーザー名またはパスワードが正しくありません。",
		Category: "auth",
		Action:   "入力内容を確認して再度ログインしてください。",
	}
}

// NewInvalidFinanceKindError は収支種別が不正な場合のエラーを生成する。
func NewInvalidFinanceKindError(kind string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidFinanceKind,
		Message:  fmt.Sprintf("収支種別が不正です: %s", kind),
		Category: "validation",
		Action:   "種別には income または expense を指定してください。",
	}
}

// NewInvalidURLError は無効なURLエラーを生成する。
func NewInvalidURLError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidURL,
		Message:  fmt.Sprintf("無効なURLです: %s", reason),
		Category: "validation",
		Action:   "正しいURL形式（http:// または https:// で始まるURL）を入力してください。",
	}
}

// NewSSRFBlockedError はSSRFブロックエラーを生成する。
func NewSSRFBlockedError() *APIError {
	return &APIError{
		Code:     ErrCodeSSRFBlocked,
		Message:  "セキュリティポリシーにより、指定されたURLへのアクセスがブロックされました。",
		Category: "validation",
		Action:   "公開されているWebサイトのURLを入力してください。ローカルネットワークやプライベートIPへのアクセスは許可されていません。",
	}
}

// NewStoreUnavailableError はストア一時障害エラーを生成する。
func NewStoreUnavailableError() *APIError {
	return &APIError{
		Code:     ErrCodeStoreUnavailable,
		Message:  "データストアへのアクセスに失敗しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewForbiddenClientDataError は他クライアントのデータへのアクセスエラーを生成する。
func NewForbiddenClientDataError() *APIError {
	return &APIError{
		Code:     ErrCodeForbiddenClientData,
		Message:  "このデータへのアクセス権限がありません。",
		Category: "auth",
		Action:   "自分のアカウントに紐付くデータのみ参照できます。",
	}
}
