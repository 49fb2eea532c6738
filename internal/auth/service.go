// Package auth はパスワード認証とセッション管理を提供する。
//
// 管理者（admin_users）とクライアントポータル（client_accounts）の
// 2種類の主体が同一のセッショントークン方式でログインする。
// トークンは32バイトの乱数をhexエンコードしたもので、DBにはトークンそのものではなく
// HMAC-SHA256（SessionSecret鍵）でハッシュ化した値をセッションIDとして保存する。
// これによりDBが漏洩してもセッションの乗っ取りはできない。
package auth

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/AidenBurnzy/AuctusAPP-sub000/internal/model"
	"github.com/AidenBurnzy/AuctusAPP-sub000/internal/repository"
)

// Actor は認証済みの主体を表す。
type Actor struct {
	Kind        model.ActorKind
	ID          string
	DisplayName string
	ClientID    string // Kind == ActorKindClient の場合のみ設定される
}

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	SessionMaxAge int    // セッション有効期間（秒）
	SessionSecret string // セッショントークンのHMACハッシュ鍵
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	adminRepo   repository.AdminUserRepository
	accountRepo repository.ClientAccountRepository
	clientRepo  repository.ClientRepository
	sessionRepo repository.SessionRepository
	config      ServiceConfig
}

// NewService はServiceを生成する。
func NewService(
	adminRepo repository.AdminUserRepository,
	accountRepo repository.ClientAccountRepository,
	clientRepo repository.ClientRepository,
	sessionRepo repository.SessionRepository,
	config ServiceConfig,
) *Service {
	return &Service{
		adminRepo:   adminRepo,
		accountRepo: accountRepo,
		clientRepo:  clientRepo,
		sessionRepo: sessionRepo,
		config:      config,
	}
}

// LoginAdmin は管理者のパスワードログインを処理し、セッショントークンを発行する。
// ユーザー名不明とパスワード不一致はどちらもInvalidCredentialsとして扱い、区別しない。
func (s *Service) LoginAdmin(ctx context.Context, username, password string) (string, *model.Session, error) {
	admin, err := s.adminRepo.FindByUsername(ctx, username)
	if err != nil {
		return "", nil, fmt.Errorf("failed to find admin user: %w", err)
	}
	if admin == nil {
		return "", nil, model.NewInvalidCredentialsError()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return "", nil, model.NewInvalidCredentialsError()
	}

	token, session, err := s.createSession(ctx, model.ActorKindAdmin, admin.ID, "")
	if err != nil {
		return "", nil, err
	}

	slog.Info("admin logged in", slog.String("admin_id", admin.ID))
	return token, session, nil
}

// LoginPortal はクライアントポータルアカウントのログインを処理する。
// セッションにはアカウントの所属クライアントIDが記録され、
// 以降のリクエストはそのクライアントのデータに限定される。
func (s *Service) LoginPortal(ctx context.Context, username, password string) (string, *model.Session, error) {
	account, err := s.accountRepo.FindByUsername(ctx, username)
	if err != nil {
		return "", nil, fmt.Errorf("failed to find portal account: %w", err)
	}
	if account == nil {
		return "", nil, model.NewInvalidCredentialsError()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return "", nil, model.NewInvalidCredentialsError()
	}

	token, session, err := s.createSession(ctx, model.ActorKindClient, account.ID, account.ClientID)
	if err != nil {
		return "", nil, err
	}

	slog.Info("portal account logged in",
		slog.String("account_id", account.ID),
		slog.String("client_id", account.ClientID),
	)
	return token, session, nil
}

// Logout はトークンに対応するセッションを破棄する。冪等。
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return fmt.Errorf("session token is required")
	}

	if err := s.sessionRepo.DeleteByID(ctx, s.hashToken(token)); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	slog.Info("actor logged out")
	return nil
}

// GetCurrentActor はトークンから現在の認証主体を取得する。
// 期限切れ・未登録トークンの場合はエラーを返す。
func (s *Service) GetCurrentActor(ctx context.Context, token string) (*Actor, error) {
	if token == "" {
		return nil, fmt.Errorf("session token is required")
	}

	session, err := s.sessionRepo.FindByID(ctx, s.hashToken(token))
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	if session == nil {
		return nil, fmt.Errorf("session not found or expired")
	}

	switch session.ActorKind {
	case model.ActorKindAdmin:
		admin, err := s.adminRepo.FindByID(ctx, session.ActorID)
		if err != nil {
			return nil, fmt.Errorf("failed to find admin user: %w", err)
		}
		if admin == nil {
			return nil, fmt.Errorf("admin user not found")
		}
		displayName := admin.DisplayName
		if displayName == "" {
			displayName = admin.Username
		}
		return &Actor{
			Kind:        model.ActorKindAdmin,
			ID:          admin.ID,
			DisplayName: displayName,
		}, nil

	case model.ActorKindClient:
		account, err := s.accountRepo.FindByID(ctx, session.ActorID)
		if err != nil {
			return nil, fmt.Errorf("failed to find portal account: %w", err)
		}
		if account == nil {
			return nil, fmt.Errorf("portal account not found")
		}
		displayName := account.Username
		client, err := s.clientRepo.FindByID(ctx, account.ClientID)
		if err != nil {
			return nil, fmt.Errorf("failed to find client: %w", err)
		}
		if client != nil && client.ContactName != "" {
			displayName = client.ContactName
		}
		return &Actor{
			Kind:        model.ActorKindClient,
			ID:          account.ID,
			DisplayName: displayName,
			ClientID:    account.ClientID,
		}, nil

	default:
		return nil, fmt.Errorf("unknown actor kind: %s", session.ActorKind)
	}
}

// CreateClientAccount はクライアントのポータルアカウントを発行する。管理者専用操作。
func (s *Service) CreateClientAccount(ctx context.Context, clientID, username, password string) (*model.ClientAccount, error) {
	if username == "" {
		return nil, model.NewEmptyRequiredFieldError("username")
	}
	if password == "" {
		return nil, model.NewEmptyRequiredFieldError("password")
	}

	client, err := s.clientRepo.FindByID(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("クライアントの取得に失敗しました: %w", err)
	}
	if client == nil {
		return nil, model.NewClientNotFoundError(clientID)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	account := &model.ClientAccount{
		ID:           uuid.New().String(),
		ClientID:     clientID,
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.accountRepo.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("ポータルアカウントの作成に失敗しました: %w", err)
	}

	slog.Info("portal account created",
		slog.String("account_id", account.ID),
		slog.String("client_id", clientID),
	)
	return account, nil
}

// EnsureAdminUser は管理者ユーザーが存在しない場合に作成する。初期セットアップ用。
// 既に同名の管理者が存在する場合は何もしない。
func (s *Service) EnsureAdminUser(ctx context.Context, username, displayName, password string) error {
	existing, err := s.adminRepo.FindByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("failed to find admin user: %w", err)
	}
	if existing != nil {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	admin := &model.AdminUser{
		ID:           uuid.New().String(),
		Username:     username,
		DisplayName:  displayName,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.adminRepo.Create(ctx, admin); err != nil {
		return fmt.Errorf("管理者の作成に失敗しました: %w", err)
	}

	slog.Info("admin user created", slog.String("admin_id", admin.ID), slog.String("username", username))
	return nil
}

// createSession はセッションを作成し永続化する。
// 戻り値の第1要素はCookieに格納する生トークン、第2要素は保存済みセッション。
func (s *Service) createSession(ctx context.Context, kind model.ActorKind, actorID, clientID string) (string, *model.Session, error) {
	token, err := generateToken()
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate session token: %w", err)
	}

	session := &model.Session{
		ID:        s.hashToken(token),
		ActorKind: kind,
		ActorID:   actorID,
		ClientID:  clientID,
		ExpiresAt: time.Now().Add(time.Duration(s.config.SessionMaxAge) * time.Second),
		CreatedAt: time.Now(),
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return "", nil, fmt.Errorf("failed to save session: %w", err)
	}

	return token, session, nil
}

// hashToken はセッショントークンをHMAC-SHA256でハッシュ化する。
func (s *Service) hashToken(token string) string {
	mac := hmac.New(sha256.New, []byte(s.config.SessionSecret))
	mac.Write([]byte(token))
	return hex.EncodeToString(mac.Sum(nil))
}

// generateToken は暗号的に安全なセッショントークンを生成する。
func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
