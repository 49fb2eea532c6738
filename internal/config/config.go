package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string

	// Session
	SessionSecret string // セッショントークンのHMACキー
	SessionMaxAge int

	// Admin bootstrap（初回起動時の管理者ユーザー作成。未設定の場合はスキップ）
	AdminUsername    string
	AdminPassword    string
	AdminDisplayName string

	// Website check
	CheckTimeout       time.Duration
	CheckMaxSize       int64
	CheckMaxConcurrent int
	CheckInterval      time.Duration

	// Thread
	ThreadPollInterval time.Duration

	// Local cache
	LocalCachePath string

	// Rate Limit
	RateLimitGeneral     int
	RateLimitMessageSend int

	// Server
	ServerPort string
	BaseURL    string

	// Cookie
	CookieSecure bool
	CookieDomain string

	// CORS
	CORSAllowedOrigin string
}

// Load は環境変数からConfigを読み込む。
// カレントディレクトリに.envがあれば先に読み込む（未存在は無視）。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	// .envはローカル開発用。本番では環境変数を直接設定する
	_ = godotenv.Load()

	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	cfg.SessionSecret = os.Getenv("SESSION_SECRET")
	if cfg.SessionSecret == "" {
		missing = append(missing, "SESSION_SECRET")
	}

	cfg.BaseURL = os.Getenv("BASE_URL")
	if cfg.BaseURL == "" {
		missing = append(missing, "BASE_URL")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.SessionMaxAge = getEnvInt("SESSION_MAX_AGE", 86400)
	cfg.AdminUsername = getEnvString("ADMIN_USERNAME", "")
	cfg.AdminPassword = getEnvString("ADMIN_PASSWORD", "")
	cfg.AdminDisplayName = getEnvString("ADMIN_DISPLAY_NAME", "Auctus Support")
	cfg.CheckTimeout = getEnvDuration("CHECK_TIMEOUT", 10*time.Second)
	cfg.CheckMaxSize = getEnvInt64("CHECK_MAX_SIZE", 5242880)
	cfg.CheckMaxConcurrent = getEnvInt("CHECK_MAX_CONCURRENT", 10)
	cfg.CheckInterval = getEnvDuration("CHECK_INTERVAL", 15*time.Minute)
	cfg.ThreadPollInterval = getEnvDuration("THREAD_POLL_INTERVAL", 5*time.Second)
	cfg.LocalCachePath = getEnvString("LOCAL_CACHE_PATH", "auctus-cache")
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitMessageSend = getEnvInt("RATE_LIMIT_MESSAGE_SEND", 20)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.CookieSecure = strings.HasPrefix(cfg.BaseURL, "https://")
	cfg.CookieDomain = getEnvString("COOKIE_DOMAIN", "")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvInt64(key string, defaultVal int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
