package config

import (
	"log"
	"os"
	"strings"
	"time"
)

// JWTConfig defines issuer/secret pair for auth verification.
type JWTConfig struct {
	Issuer string
	Secret []byte
}

// Config holds runtime configuration shared across the application.
type Config struct {
	Addr                     string
	MongoURI                 string
	MongoDatabase            string
	SurveyCollection         string
	UserCollection           string
	WebhookFailureCollection string
	Timeout                  time.Duration
	WebhookTimeout           time.Duration
	ServerLog                *log.Logger
	JWTConfigs               []JWTConfig
	JWTAudience              string
	SendGridKey              string
	SendGridFrom             string
	RedirectDomain           string
	StripeSecretKey          string
	AllowedOrigins           []string
}

// Load reads environment variables and returns a fully populated Config.
func Load() Config {
	timeout := 10 * time.Second
	if v := os.Getenv("MONGO_CONNECT_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			timeout = parsed
		}
	}

	// Bounds one webhook batch worth of store updates once the HTTP
	// response has already been written.
	webhookTimeout := 30 * time.Second
	if raw := strings.TrimSpace(os.Getenv("WEBHOOK_APPLY_TIMEOUT")); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil {
			webhookTimeout = parsed
		}
	}

	sendGridKey := strings.TrimSpace(os.Getenv("SENDGRID_API_KEY"))
	if sendGridKey == "" {
		log.Fatal("SENDGRID_API_KEY must be configured")
	}

	stripeKey := strings.TrimSpace(os.Getenv("STRIPE_SECRET_KEY"))
	if stripeKey == "" {
		log.Fatal("STRIPE_SECRET_KEY must be configured")
	}

	redirectDomain := strings.TrimSpace(os.Getenv("REDIRECT_DOMAIN"))
	if redirectDomain == "" {
		redirectDomain = "http://localhost:5000"
	}
	redirectDomain = strings.TrimRight(redirectDomain, "/")

	var jwtConfigs []JWTConfig
	if secret := strings.TrimSpace(os.Getenv("AUTH_GOOGLE_JWT_SECRET")); secret != "" {
		jwtConfigs = append(jwtConfigs, JWTConfig{
			Issuer: envOrDefault("AUTH_GOOGLE_JWT_ISSUER", "feedforward-auth"),
			Secret: []byte(secret),
		})
	}
	if secret := strings.TrimSpace(os.Getenv("AUTH_JWT_SECRET")); secret != "" {
		jwtConfigs = append(jwtConfigs, JWTConfig{
			Issuer: envOrDefault("AUTH_JWT_ISSUER", "feedforward-auth"),
			Secret: []byte(secret),
		})
	}

	if len(jwtConfigs) == 0 {
		log.Fatal("JWT secrets not configured. Set AUTH_JWT_SECRET or AUTH_GOOGLE_JWT_SECRET.")
	}

	jwtAudience := strings.TrimSpace(os.Getenv("AUTH_JWT_AUDIENCE"))

	cfg := Config{
		Addr:                     envOrDefault("HTTP_ADDR", ":5000"),
		MongoURI:                 envOrDefault("MONGO_URI", "mongodb://mongo:27017"),
		MongoDatabase:            envOrDefault("MONGO_DB", "feedforward"),
		SurveyCollection:         envOrDefault("SURVEY_COLLECTION", "surveys"),
		UserCollection:           envOrDefault("USER_COLLECTION", "users"),
		WebhookFailureCollection: envOrDefault("WEBHOOK_FAILURE_COLLECTION", "webhook_failures"),
		Timeout:                  timeout,
		WebhookTimeout:           webhookTimeout,
		ServerLog:                log.New(os.Stdout, "[feedforward-api] ", log.LstdFlags|log.Lshortfile),
		JWTConfigs:               jwtConfigs,
		JWTAudience:              jwtAudience,
		SendGridKey:              sendGridKey,
		SendGridFrom:             envOrDefault("SENDGRID_FROM", "no-reply@feedforward.app"),
		RedirectDomain:           redirectDomain,
		StripeSecretKey:          stripeKey,
		AllowedOrigins:           parseList("API_ALLOWED_ORIGINS", []string{"*"}),
	}

	cfg.ServerLog.Printf("loaded config: addr=%q redirectDomain=%q database=%q", cfg.Addr, redirectDomain, cfg.MongoDatabase)

	return cfg
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseList(key string, fallback []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			values = append(values, part)
		}
	}

	if len(values) == 0 {
		return fallback
	}
	return values
}
