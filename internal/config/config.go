package config

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env  string
	Port int

	StoreDriver string
	DBURL       string
	MongoURL    string
	MongoDB     string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	CORSOrigins        []string
	RateLimitPerMinute int
	StatsCacheSeconds  int

	JWTSecret           string
	JWTAccessTTLMinutes int
	AdminUsername       string
	AdminPassword       string
	AdminPasswordHash   string

	OTELEndpoint    string
	OTELServiceName string

	Event EventConfig
}

func Load() Config {
	// a missing .env file is the normal case outside local dev
	_ = godotenv.Load()

	return Config{
		Env:  getEnv("APP_ENV", "dev"),
		Port: getEnvInt("PORT", 8080),

		StoreDriver: strings.ToLower(getEnv("STORE_DRIVER", "mongo")),
		DBURL:       buildDBURL(),
		MongoURL:    getEnv("MONGO_URL", "mongodb://127.0.0.1:27017"),
		MongoDB:     getEnv("MONGO_DB", "kicon"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		CORSOrigins:        getEnvList("CORS_ORIGINS", []string{"*"}),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 20),
		StatsCacheSeconds:  getEnvInt("STATS_CACHE_SECONDS", 0),

		JWTSecret:           getEnv("JWT_SECRET", "dev-secret-change-me"),
		JWTAccessTTLMinutes: getEnvInt("JWT_ACCESS_TTL_MINUTES", 60),
		AdminUsername:       getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword:       getEnv("ADMIN_PASSWORD", ""),
		AdminPasswordHash:   getEnv("ADMIN_PASSWORD_HASH", ""),

		OTELEndpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OTELServiceName: getEnv("OTEL_SERVICE_NAME", "kicon-api"),

		Event: loadEventConfig(),
	}
}

func buildDBURL() string {
	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "kicon")
	pass := getEnv("DB_PASSWORD", "kicon")
	name := getEnv("DB_NAME", "kicon")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func loadEventConfig() EventConfig {
	ev := DefaultEventConfig()

	ev.Capacity = getEnvInt("EVENT_CAPACITY", ev.Capacity)
	ev.RegistrationDeadline = getEnvTime("REGISTRATION_DEADLINE", ev.RegistrationDeadline)

	return ev
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			slog.Warn("invalid integer env value, using fallback", "key", key, "value", v)
			return fallback
		}

		return num
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}

	out := make([]string, 0)
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}

	if len(out) == 0 {
		return fallback
	}
	return out
}

func getEnvTime(key string, fallback time.Time) time.Time {
	if v := os.Getenv(key); v != "" {
		t, err := time.Parse(time.RFC3339, v)

		if err != nil {
			slog.Warn("invalid RFC3339 env value, using fallback", "key", key, "value", v)
			return fallback
		}

		return t.UTC()
	}
	return fallback
}
