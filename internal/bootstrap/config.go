package bootstrap

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/lpernett/godotenv"
)

type Config struct {
	ServerAddr string
	LogLevel   string

	OpenAIAPIKey     string
	OpenAIBaseURL    string
	DescriptionModel string
	ImageModel       string
	RemoteTimeout    time.Duration

	TempDir        string
	MaxUploadBytes int64

	HMACKey      []byte
	CookieSecure bool
	SessionTTL   time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	VerificationAddr string
	VerificationFile string
	VerificationPath string
}

func LoadConfig() *Config {
	// A missing .env is fine; the process environment still applies.
	_ = godotenv.Load()

	return &Config{
		ServerAddr: getEnv("SERVER_ADDR", ":8080"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),

		OpenAIAPIKey:     getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:    getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		DescriptionModel: getEnv("DESCRIPTION_MODEL", "gpt-4o"),
		ImageModel:       getEnv("IMAGE_MODEL", "dall-e-3"),
		RemoteTimeout:    getEnvDuration("REMOTE_TIMEOUT", 120*time.Second),

		TempDir:        getEnv("TEMP_DIR", filepath.Join(os.TempDir(), "aura-studio")),
		MaxUploadBytes: int64(getEnvInt("MAX_UPLOAD_BYTES", 20<<20)),

		HMACKey:      []byte(getEnv("HMAC_KEY", "change-me-in-production")),
		CookieSecure: getEnv("COOKIE_SECURE", "false") == "true",
		SessionTTL:   getEnvDuration("SESSION_TTL", 24*time.Hour),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		VerificationAddr: getEnv("VERIFICATION_ADDR", ":8081"),
		VerificationFile: getEnv("VERIFICATION_FILE", "tiktokK3jS5DxkwT6dmdBmroH3Xyp31Gvu90Me.txt"),
		VerificationPath: getEnv("VERIFICATION_PATH", ""),
	}
}

func (c *Config) Validate() error {
	if c.OpenAIAPIKey == "" {
		return errors.New("OPENAI_API_KEY is required")
	}
	if c.VerificationFile == "" {
		return errors.New("VERIFICATION_FILE is required")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
