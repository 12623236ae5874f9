package app

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/studyhall-app/studyhall/pkg/jwtx"
)

var ErrMissingJWTSecret = errors.New("AUTH_JWT_SECRET is required")

type Config struct {
	JWTSecret string // Required: shared HMAC signing secret
	Issuer    string // Optional: issuer claim for tokens (default: studyhall-identity)

	AccessTokenTTL  time.Duration // Optional: access token lifetime (default: 15m)
	RefreshTokenTTL time.Duration // Optional: refresh token lifetime (default: 168h)
	OTPTTL          time.Duration // Optional: password reset code lifetime (default: 10m)

	MinPasswordLength  int           // Optional: minimum new password length (default: 8)
	MaxLoginAttempts   int           // Optional: failed attempts before lockout arms (default: 5)
	LockoutDuration    time.Duration // Optional: lockout deadline length (default: 30m)
	LockoutEnforcement bool          // Optional: refuse logins on locked-out accounts (default: false)

	DatabaseFile string // Optional: path to SQLite database file (default: ./identity.db)
	PepperFile   string // Optional: path to password pepper file (default: ./pepper)

	MailProvider string // Optional: mail provider (log, ses) (default: log)
	MailFrom     string // Optional: From address for outbound mail

	BootstrapAdminUsername string // Optional: username for the initial system admin
	BootstrapAdminEmail    string // Optional: email for the initial system admin

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

func LoadConfig() (Config, error) {
	cfg := Config{
		JWTSecret: os.Getenv("AUTH_JWT_SECRET"),
		Issuer:    getEnvOrDefault("AUTH_ISSUER", "studyhall-identity"),

		AccessTokenTTL:  getEnvDurationOrDefault("ACCESS_TOKEN_TTL", jwtx.DefaultAccessTokenTTL),
		RefreshTokenTTL: getEnvDurationOrDefault("REFRESH_TOKEN_TTL", jwtx.DefaultRefreshTokenTTL),
		OTPTTL:          getEnvDurationOrDefault("OTP_TTL", 10*time.Minute),

		MinPasswordLength:  getEnvIntOrDefault("MIN_PASSWORD_LENGTH", 8),
		MaxLoginAttempts:   getEnvIntOrDefault("MAX_LOGIN_ATTEMPTS", 5),
		LockoutDuration:    getEnvDurationOrDefault("LOCKOUT_DURATION", 30*time.Minute),
		LockoutEnforcement: getEnvBoolOrDefault("LOCKOUT_ENFORCEMENT", false),

		DatabaseFile: getEnvOrDefault("DATABASE_FILE", "identity.db"),
		PepperFile:   getEnvOrDefault("PEPPER_FILE", "pepper"),

		MailProvider: getEnvOrDefault("MAIL_PROVIDER", "log"),
		MailFrom:     os.Getenv("MAIL_FROM"),

		BootstrapAdminUsername: os.Getenv("BOOTSTRAP_ADMIN_USERNAME"),
		BootstrapAdminEmail:    os.Getenv("BOOTSTRAP_ADMIN_EMAIL"),

		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}

	if cfg.JWTSecret == "" {
		return Config{}, ErrMissingJWTSecret
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if boolValue, err := strconv.ParseBool(value); err == nil {
		return boolValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Plain integers read as minutes.
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
