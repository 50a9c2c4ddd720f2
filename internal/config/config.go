package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port              string
	Env               string // "development" | "production"
	MongoURI, MongoDB string

	JWTSecret    string // no default; main refuses to start without it
	TokenTTLDays int

	FrontendURL string

	GoogleClientID     string
	GoogleClientSecret string
	GoogleCallbackURL  string
	OAuthStateSecret   string

	StripeSecretKey string

	RedisAddr       string
	RateLimitPerMin int

	RabbitURL     string
	EventExchange string
}

func Load() Config {
	return Config{
		Port:     getenv("APP_PORT", "8080"),
		Env:      getenv("APP_ENV", "development"),
		MongoURI: getenv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:  getenv("MONGO_DB", "postpilot"),

		JWTSecret:    os.Getenv("JWT_SECRET"),
		TokenTTLDays: atoi(getenv("TOKEN_TTL_DAYS", "7")),

		FrontendURL: getenv("FRONTEND_URL", "http://localhost:3000"),

		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleCallbackURL:  getenv("GOOGLE_CALLBACK_URL", "http://localhost:8080/api/auth/google/callback"),
		OAuthStateSecret:   os.Getenv("OAUTH_STATE_SECRET"),

		StripeSecretKey: os.Getenv("STRIPE_SECRET_KEY"),

		RedisAddr:       getenv("REDIS_ADDR", ""),
		RateLimitPerMin: atoi(getenv("RATE_LIMIT_PER_MIN", "10")),

		RabbitURL:     getenv("RABBIT_URL", ""),
		EventExchange: getenv("EVENT_EXCHANGE", "auth.events"),
	}
}

func (c Config) Production() bool { return c.Env == "production" }

func atoi(s string) int {
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return 0
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
