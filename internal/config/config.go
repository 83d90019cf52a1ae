package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Server    ServerConfig
	Database  DatabaseConfig
	Store     StoreConfig
	JWT       JWTConfig
	Log       LogConfig
	Tracing   TracingConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
}

type AppConfig struct {
	Name        string
	Environment string
	Version     string
}

type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Host               string
	Port               int
	Name               string
	User               string
	Password           string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetime    time.Duration
	ConnMaxIdleTime    time.Duration
	SlowQueryThreshold time.Duration
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s TimeZone=UTC",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode,
	)
}

// StoreConfig bounds every call the lookup pipeline makes to the record store.
type StoreConfig struct {
	CallTimeout time.Duration

	// Circuit breaker around the store; trips after FailureThreshold
	// consecutive failures and probes again after OpenTimeout.
	BreakerEnabled   bool
	FailureThreshold uint32
	OpenTimeout      time.Duration
	HalfOpenRequests uint32
}

type JWTConfig struct {
	Secret          string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	Issuer          string
}

type LogConfig struct {
	Level      string
	Format     string
	OutputPath string
}

type TracingConfig struct {
	Enabled     bool
	ServiceName string
	Endpoint    string
	SampleRate  float64
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	MaxAge         time.Duration
}

type RateLimitConfig struct {
	// Global rate limit per IP
	RequestsPerSecond float64
	BurstSize         int
	// Login endpoint has a stricter limit
	AuthRequestsPerMinute int
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real environment variables win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	env := &envReader{}
	cfg := &Config{
		App:       loadApp(env),
		Server:    loadServer(env),
		Database:  loadDatabase(env),
		Store:     loadStore(env),
		JWT:       loadJWT(env),
		Log:       loadLog(env),
		Tracing:   loadTracing(env),
		CORS:      loadCORS(env),
		RateLimit: loadRateLimit(env),
	}

	if err := validate(cfg, env.malformed); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadApp(env *envReader) AppConfig {
	return AppConfig{
		Name:        env.str("APP_NAME", "healthportal"),
		Environment: env.str("APP_ENV", "development"),
		Version:     env.str("APP_VERSION", "0.0.0"),
	}
}

func loadServer(env *envReader) ServerConfig {
	return ServerConfig{
		Host:            env.str("SERVER_HOST", "0.0.0.0"),
		Port:            env.integer("SERVER_PORT", 8080),
		ReadTimeout:     env.duration("SERVER_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    env.duration("SERVER_WRITE_TIMEOUT", 30*time.Second),
		IdleTimeout:     env.duration("SERVER_IDLE_TIMEOUT", time.Minute),
		ShutdownTimeout: env.duration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
	}
}

func loadDatabase(env *envReader) DatabaseConfig {
	return DatabaseConfig{
		Host:               env.str("DB_HOST", "localhost"),
		Port:               env.integer("DB_PORT", 5432),
		Name:               env.str("DB_NAME", "healthportal"),
		User:               env.str("DB_USER", "healthportal"),
		Password:           env.str("DB_PASSWORD", ""),
		SSLMode:            env.str("DB_SSLMODE", "require"),
		MaxOpenConns:       env.integer("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns:       env.integer("DB_MAX_IDLE_CONNS", 10),
		ConnMaxLifetime:    env.duration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		ConnMaxIdleTime:    env.duration("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
		SlowQueryThreshold: env.duration("DB_SLOW_QUERY_THRESHOLD", 200*time.Millisecond),
	}
}

func loadStore(env *envReader) StoreConfig {
	return StoreConfig{
		CallTimeout:      env.duration("STORE_CALL_TIMEOUT", 15*time.Second),
		BreakerEnabled:   env.flag("STORE_BREAKER_ENABLED", true),
		FailureThreshold: env.count("STORE_BREAKER_FAILURES", 5),
		OpenTimeout:      env.duration("STORE_BREAKER_OPEN_TIMEOUT", 30*time.Second),
		HalfOpenRequests: env.count("STORE_BREAKER_HALF_OPEN_REQUESTS", 1),
	}
}

func loadJWT(env *envReader) JWTConfig {
	return JWTConfig{
		Secret:          env.str("JWT_SECRET", ""),
		AccessTokenTTL:  env.duration("JWT_ACCESS_TTL", 15*time.Minute),
		RefreshTokenTTL: env.duration("JWT_REFRESH_TTL", 7*24*time.Hour),
		Issuer:          env.str("JWT_ISSUER", "healthportal"),
	}
}

func loadLog(env *envReader) LogConfig {
	return LogConfig{
		Level:      env.str("LOG_LEVEL", "info"),
		Format:     env.str("LOG_FORMAT", "json"),
		OutputPath: env.str("LOG_OUTPUT", "stdout"),
	}
}

func loadTracing(env *envReader) TracingConfig {
	return TracingConfig{
		Enabled:     env.flag("TRACING_ENABLED", false),
		ServiceName: env.str("TRACING_SERVICE_NAME", "healthportal"),
		Endpoint:    env.str("OTLP_ENDPOINT", "otel-collector:4318"),
		SampleRate:  env.number("TRACING_SAMPLE_RATE", 0.1),
	}
}

func loadCORS(env *envReader) CORSConfig {
	return CORSConfig{
		AllowedOrigins: env.list("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
		AllowedMethods: env.list("CORS_ALLOWED_METHODS", []string{"GET", "POST", "OPTIONS"}),
		AllowedHeaders: env.list("CORS_ALLOWED_HEADERS", []string{"Authorization", "Content-Type", "X-Request-ID"}),
		MaxAge:         env.duration("CORS_MAX_AGE", 12*time.Hour),
	}
}

func loadRateLimit(env *envReader) RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond:     env.number("RATE_LIMIT_RPS", 50),
		BurstSize:             env.integer("RATE_LIMIT_BURST", 100),
		AuthRequestsPerMinute: env.integer("RATE_LIMIT_AUTH_RPM", 10),
	}
}

// validate collects every problem so operators see them all in one run.
func validate(cfg *Config, malformed []string) error {
	problems := append([]string(nil), malformed...)
	prod := cfg.App.Environment == "production"

	switch {
	case cfg.JWT.Secret == "":
		problems = append(problems, "JWT_SECRET is required")
	case prod && len(cfg.JWT.Secret) < 32:
		problems = append(problems, "JWT_SECRET must be at least 32 characters in production")
	}
	if cfg.App.Environment != "development" && cfg.Database.Password == "" {
		problems = append(problems, "DB_PASSWORD is required outside development")
	}
	if prod && cfg.Database.SSLMode == "disable" {
		problems = append(problems, "DB_SSLMODE=disable is not allowed in production")
	}
	if cfg.Store.CallTimeout <= 0 {
		problems = append(problems, "STORE_CALL_TIMEOUT must be positive")
	}
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		problems = append(problems, fmt.Sprintf("SERVER_PORT %d is out of range", cfg.Server.Port))
	}
	if cfg.Tracing.SampleRate < 0 || cfg.Tracing.SampleRate > 1 {
		problems = append(problems, "TRACING_SAMPLE_RATE must be between 0 and 1")
	}

	if len(problems) == 0 {
		return nil
	}
	return errors.New("invalid configuration: " + strings.Join(problems, "; "))
}
