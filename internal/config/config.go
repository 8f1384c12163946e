package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"dream_build_backend/pkg/utils"

	"github.com/joho/godotenv"
)

const EnvProduction = "production"

// Config is the process configuration read from the environment.
type Config struct {
	AppEnv string
	Port   string

	DB DBConfig

	JWTSecret   string
	JWTTTL      time.Duration
	AuthDevMode bool

	CORSAllowedOrigins []string

	LogLevel  string
	LogFormat string

	ImportMaxRows        int
	TokenCleanupSchedule string
}

// DBConfig holds the PostgreSQL connection settings.
type DBConfig struct {
	Host       string
	Port       string
	User       string
	Password   string
	Name       string
	SSLMode    string
	SchemaPath string
}

// DSN renders a lib/pq connection string.
func (d DBConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// Load reads .env when present, then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		utils.LogDebug("No .env file loaded", map[string]interface{}{"reason": err.Error()})
	}

	cfg := &Config{
		AppEnv: utils.Getenv("APP_ENV", "development"),
		Port:   utils.Getenv("PORT", "8080"),
		DB: DBConfig{
			Host:       utils.Getenv("DB_HOST", "localhost"),
			Port:       utils.Getenv("DB_PORT", "5432"),
			User:       utils.Getenv("DB_USER", "postgres"),
			Password:   utils.Getenv("DB_PASSWORD", ""),
			Name:       utils.Getenv("DB_NAME", "dream_build"),
			SSLMode:    utils.Getenv("DB_SSLMODE", "disable"),
			SchemaPath: utils.Getenv("DB_SCHEMA_PATH", "db/schema.sql"),
		},
		JWTSecret:            utils.Getenv("JWT_SECRET", ""),
		JWTTTL:               utils.GetenvDuration("JWT_TTL", 72*time.Hour),
		AuthDevMode:          utils.GetenvBool("AUTH_DEV_MODE", false),
		CORSAllowedOrigins:   splitList(utils.Getenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		LogLevel:             utils.Getenv("LOG_LEVEL", "info"),
		LogFormat:            utils.Getenv("LOG_FORMAT", "console"),
		ImportMaxRows:        utils.GetenvInt("IMPORT_MAX_ROWS", 5000),
		TokenCleanupSchedule: utils.Getenv("TOKEN_CLEANUP_SCHEDULE", "@hourly"),
	}
	if cfg.JWTSecret == "" && !cfg.IsProduction() {
		cfg.JWTSecret = "dev-only-jwt-secret"
		utils.LogWarn("JWT_SECRET not set, using the development secret")
	}
	return cfg, cfg.Validate()
}

// IsProduction reports APP_ENV=production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, EnvProduction)
}

// Validate rejects settings that must never reach production.
func (c *Config) Validate() error {
	var errs []error
	if c.IsProduction() && c.AuthDevMode {
		errs = append(errs, errors.New("AUTH_DEV_MODE cannot be enabled in production"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.JWTTTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL must be positive"))
	}
	if c.ImportMaxRows < 0 {
		errs = append(errs, errors.New("IMPORT_MAX_ROWS cannot be negative"))
	}
	return errors.Join(errs...)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
