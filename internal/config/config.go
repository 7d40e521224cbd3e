package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	DatabaseURL      string // あれば POSTGRES_* より優先
	PostgresUser     string // DBユーザー
	PostgresPassword string // DBパスワード
	PostgresDB       string // DB名
	PostgresHost     string // DBホスト（localhost）
	PostgresPort     int    // DBポート（5432）
	PostgresSSLMode  string

	JWTSecret string        // JWT署名シークレット
	AccessTTL time.Duration // アクセストークンの有効期限

	GoEnv    string // dev/prod
	FEURL    string // フロントURL（CORSで使う）
	LogLevel string // debug/info/warn/error

	RedisAddr          string        // 空ならチェックアウトの二重送信ガードなし
	CheckoutLockTTL    time.Duration // 二重送信ガードの保持時間
	KafkaBrokers       []string      // 空ならoutbox relayを起動しない
	OutboxTopic        string
	OutboxPollEvery    time.Duration
	PaymentBaseURL     string
	PaymentSecretKey   string
	PaymentCurrency    string
	PaymentMock        bool // trueなら決済検証を外に出さない（開発用）
	PaymentHTTPTimeout time.Duration
}

// Loadは環境変数
func Load() (Config, error) {
	cfg, err := LoadDatabase()
	if err != nil {
		return Config{}, err
	}

	cfg.Port = getenv("PORT", "8080")
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	cfg.GoEnv = os.Getenv("GO_ENV")
	cfg.FEURL = os.Getenv("FE_URL")
	cfg.LogLevel = getenv("LOG_LEVEL", "info")
	cfg.RedisAddr = os.Getenv("REDIS_ADDR")
	cfg.KafkaBrokers = splitList(os.Getenv("KAFKA_BROKERS"))
	cfg.OutboxTopic = getenv("OUTBOX_TOPIC", "shop.orders")
	cfg.PaymentBaseURL = getenv("PAYMENT_BASE_URL", "https://api.paystack.co")
	cfg.PaymentSecretKey = os.Getenv("PAYMENT_SECRET_KEY")
	cfg.PaymentCurrency = getenv("PAYMENT_CURRENCY", "USD")

	if cfg.AccessTTL, err = durationDefault("ACCESS_TOKEN_TTL", 15*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.CheckoutLockTTL, err = durationDefault("CHECKOUT_LOCK_TTL", 30*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.OutboxPollEvery, err = durationDefault("OUTBOX_POLL_INTERVAL", 2*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.PaymentHTTPTimeout, err = durationDefault("PAYMENT_HTTP_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.PaymentMock, err = boolDefault("PAYMENT_MOCK", false); err != nil {
		return Config{}, err
	}

	//必須チェック
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.GoEnv == "" {
		return Config{}, fmt.Errorf("GO_ENV is required")
	}
	if cfg.FEURL == "" {
		return Config{}, fmt.Errorf("FE_URL is required")
	}
	if !cfg.PaymentMock && cfg.PaymentSecretKey == "" {
		return Config{}, fmt.Errorf("PAYMENT_SECRET_KEY is required")
	}

	return cfg, nil
}

// DB接続に要る値だけ（shopctl用）
func LoadDatabase() (Config, error) {
	cfg := Config{
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresHost:     os.Getenv("POSTGRES_HOST"),
		PostgresSSLMode:  getenv("POSTGRES_SSLMODE", "disable"),
	}

	var err error
	if cfg.PostgresPort, err = atoiDefault("POSTGRES_PORT", 5432); err != nil {
		return Config{}, err
	}

	if cfg.DatabaseURL != "" {
		return cfg, nil
	}
	if cfg.PostgresUser == "" {
		return Config{}, fmt.Errorf("POSTGRES_USER is required")
	}
	if cfg.PostgresPassword == "" {
		return Config{}, fmt.Errorf("POSTGRES_PASSWORD is required")
	}
	if cfg.PostgresDB == "" {
		return Config{}, fmt.Errorf("POSTGRES_DB is required")
	}
	if cfg.PostgresHost == "" {
		return Config{}, fmt.Errorf("POSTGRES_HOST is required")
	}
	return cfg, nil
}

// DSNはgorm / pgxpool 共通の接続文字列
func (c Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.PostgresUser, c.PostgresPassword),
		Host:     fmt.Sprintf("%s:%d", c.PostgresHost, c.PostgresPort),
		Path:     "/" + c.PostgresDB,
		RawQuery: "sslmode=" + c.PostgresSSLMode,
	}
	return u.String()
}

func (c Config) IsProd() bool {
	return c.GoEnv == "prod"
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func atoiDefault(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

func durationDefault(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be duration: %w", key, err)
	}
	return d, nil
}

func boolDefault(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s must be bool: %w", key, err)
	}
	return b, nil
}

// "a:9092, b:9092" -> ["a:9092", "b:9092"]
func splitList(v string) []string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
