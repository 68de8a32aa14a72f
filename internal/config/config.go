package config

import (
	"fmt"
	"time"

	"visrec-admin/internal/pkg/jwt"

	"github.com/caarlos0/env/v11"
)

// Allowlist backends.
const (
	AllowlistFirestore = "firestore"
	AllowlistPostgres  = "postgres"
)

type AppConfig struct {
	// Server
	HTTPAddr       string   `env:"HTTP_ADDR" envDefault:":8000"`
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
	AdminStaticDir string   `env:"ADMIN_STATIC_DIR"`
	RequireAPIAuth bool     `env:"REQUIRE_API_AUTH" envDefault:"true"`
	CookieSecure   bool     `env:"COOKIE_SECURE" envDefault:"true"`

	// Redis
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASS"`

	// Allowlist
	AllowlistBackend string `env:"ALLOWLIST_BACKEND" envDefault:"firestore"`
	DatabaseURL      string `env:"DATABASE_URL"`

	Firebase FirebaseConfig
	Google   GoogleConfig
	Gemini   GeminiConfig
	Locales  LocalesConfig
	Draft    DraftConfig

	// JWT
	JWT jwt.Config
}

// FirebaseConfig mirrors the web app settings; only the project id and
// credentials are needed server-side.
type FirebaseConfig struct {
	APIKey            string `env:"FIREBASE_API_KEY"`
	AuthDomain        string `env:"FIREBASE_AUTH_DOMAIN"`
	ProjectID         string `env:"FIREBASE_PROJECT_ID"`
	StorageBucket     string `env:"FIREBASE_STORAGE_BUCKET"`
	MessagingSenderID string `env:"FIREBASE_MESSAGING_SENDER_ID"`
	AppID             string `env:"FIREBASE_APP_ID"`
	CredentialsFile   string `env:"FIREBASE_CREDENTIALS_FILE"`
	AllowlistCol      string `env:"FIREBASE_ALLOWLIST_COLLECTION" envDefault:"allowlist"`
}

type GoogleConfig struct {
	ClientID     string   `env:"GOOGLE_CLIENT_ID"`
	ClientSecret string   `env:"GOOGLE_CLIENT_SECRET"`
	RedirectURL  string   `env:"GOOGLE_REDIRECT_URL" envDefault:"http://localhost:8000/api/auth/google/callback"`
	Scopes       []string `env:"GOOGLE_SCOPES" envSeparator:"," envDefault:"openid,email,profile"`
}

type GeminiConfig struct {
	APIKey  string        `env:"GEMINI_API_KEY"`
	Model   string        `env:"GEMINI_MODEL" envDefault:"gemini-2.0-flash-exp"`
	BaseURL string        `env:"GEMINI_BASE_URL" envDefault:"https://generativelanguage.googleapis.com/v1beta"`
	Timeout time.Duration `env:"GEMINI_TIMEOUT" envDefault:"120s"`
}

type LocalesConfig struct {
	Dir           string `env:"LOCALES_DIR" envDefault:"i18n/locales"`
	AtomicWrites  bool   `env:"LOCALE_ATOMIC_WRITES" envDefault:"true"`
	DefaultLocale string `env:"LOCALE_DEFAULT" envDefault:"en"`
}

type DraftConfig struct {
	RateLimit  int64         `env:"DRAFT_RATE_LIMIT" envDefault:"30"`
	RateWindow time.Duration `env:"DRAFT_RATE_WINDOW" envDefault:"1m"`
}

type jwtEnv struct {
	PrivPath string        `env:"JWT_PRIVATE_KEY_PATH" envDefault:"/app/secrets/jwt_private.pem"`
	PubPath  string        `env:"JWT_PUBLIC_KEY_PATH" envDefault:"/app/secrets/jwt_public.pem"`
	Issuer   string        `env:"JWT_ISSUER" envDefault:"visrec-admin"`
	Audience string        `env:"JWT_AUDIENCE" envDefault:"visrec-admin-panel"`
	TTL      time.Duration `env:"JWT_TTL" envDefault:"12h"`
	KID      string        `env:"JWT_KID" envDefault:"visrec-admin-key"`
}

// Load loads environment variables into AppConfig.
func Load() (AppConfig, error) {
	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		return AppConfig{}, fmt.Errorf("parse env: %w", err)
	}

	var raw jwtEnv
	if err := env.Parse(&raw); err != nil {
		return AppConfig{}, fmt.Errorf("parse jwt env: %w", err)
	}
	cfg.JWT = jwt.Config{
		PrivPath: raw.PrivPath,
		PubPath:  raw.PubPath,
		Issuer:   raw.Issuer,
		Audience: raw.Audience,
		TTL:      raw.TTL,
		KID:      raw.KID,
	}

	if err := cfg.validate(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

func (c AppConfig) validate() error {
	switch c.AllowlistBackend {
	case AllowlistFirestore:
		if c.Firebase.ProjectID == "" {
			return fmt.Errorf("FIREBASE_PROJECT_ID is required for the firestore allowlist")
		}
	case AllowlistPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres allowlist")
		}
	default:
		return fmt.Errorf("unknown ALLOWLIST_BACKEND %q", c.AllowlistBackend)
	}
	return nil
}
