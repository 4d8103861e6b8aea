package drink

import (
	"os"
	"strconv"
	"strings"

	"github.com/nao1215/coffeeshop/pkg/jwks"
)

// Config はドリンクAPIサーバーの設定。
type Config struct {
	// Port はサーバーのリッスンポート。
	Port string
	// DatabaseDSN はSQLiteデータベースの接続文字列。
	DatabaseDSN string
	// AuthDomain はアクセストークンを発行するIDプロバイダのドメイン。
	AuthDomain string
	// Audience はアクセストークンのaudクレームに期待する値。
	Audience string
	// AllowedOrigins はCORSで許可するオリジン。
	AllowedOrigins []string
	// RateLimitRPS はクライアントIPごとの1秒あたりのリクエスト上限。0の場合は制限しない。
	RateLimitRPS float64
	// RateLimitBurst はレート制限のバースト数。
	RateLimitBurst int
	// ResetDatabase がtrueの場合、起動時に全ドリンクを削除して初期データを投入する。
	ResetDatabase bool
}

// LoadConfig は環境変数から設定を読み込む。未設定の項目はデフォルト値を使う。
func LoadConfig() Config {
	return Config{
		Port:           getEnvOr("PORT", "8080"),
		DatabaseDSN:    getEnvOr("DATABASE_DSN", "file:/data/coffeeshop.db?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"),
		AuthDomain:     getEnvOr("AUTH0_DOMAIN", "dev-coffeeshop.us.auth0.com"),
		Audience:       getEnvOr("API_AUDIENCE", "drinks"),
		AllowedOrigins: strings.Split(getEnvOr("FRONTEND_URL", "http://localhost:8100"), ","),
		RateLimitRPS:   getEnvFloat("RATE_LIMIT_RPS", 0),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 10),
		ResetDatabase:  getEnvBool("DB_RESET", false),
	}
}

// Issuer はアクセストークンのissクレームに期待する値を返す。
func (c Config) Issuer() string {
	return "https://" + c.AuthDomain + "/"
}

// JWKSBaseURL はJWKSを公開しているIDプロバイダのベースURLを返す。
// JWKSのパスはjwks.DefaultPath。
func (c Config) JWKSBaseURL() string {
	return "https://" + c.AuthDomain
}

// JWKSURL はJWKSドキュメントの完全なURLを返す。
func (c Config) JWKSURL() string {
	return c.JWKSBaseURL() + jwks.DefaultPath
}

// getEnvOr は環境変数の値を返す。未設定の場合はfallbackを返す。
func getEnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return fallback
	}
	return v
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}
