package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env  string
	Port string

	// Model provider
	Model        string
	FastModel    string
	APIKey       string
	BaseURL      string
	MaxRetries   int
	CallTimeout  time.Duration
	RateLimitRPM int

	// Content acquisition
	DownloadTimeout  time.Duration
	DownloadRetries  int
	MaxFileSizeBytes int

	// Orchestration
	MaxWorkers      int
	LargeInputBytes int
	ChunkSize       int
	ChunkOverlap    int
	ChunkCap        int

	// Cache
	CacheBackend string // "disk" or "postgres"
	CacheDir     string
	CacheTTL     time.Duration
	CacheEntries int

	// Postgres cache backend
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
}

func Load() *Config {
	return &Config{
		Env:  getEnv("ENV", "development"),
		Port: getEnv("PORT", "9020"),

		Model:        getEnv("LLM_MODEL", "gpt-4o"),
		FastModel:    getEnv("LLM_FAST_MODEL", "gpt-4o-mini"),
		APIKey:       getSecret("LLM_API_KEY", "LLM_API_KEY_FILE", ""),
		BaseURL:      getEnv("LLM_BASE_URL", ""),
		MaxRetries:   getEnvInt("LLM_MAX_RETRIES", 3),
		CallTimeout:  getEnvDuration("LLM_TIMEOUT", 30*time.Second),
		RateLimitRPM: getEnvInt("RATE_LIMIT_RPM", 60),

		DownloadTimeout:  getEnvDuration("DOWNLOAD_TIMEOUT", 10*time.Second),
		DownloadRetries:  getEnvInt("DOWNLOAD_RETRIES", 3),
		MaxFileSizeBytes: getEnvInt("MAX_FILE_SIZE_MB", 50) * 1024 * 1024,

		MaxWorkers:      getEnvInt("MAX_WORKERS", 3),
		LargeInputBytes: getEnvInt("LARGE_INPUT_BYTES", 1<<20),
		ChunkSize:       getEnvInt("CHUNK_SIZE", 4000),
		ChunkOverlap:    getEnvInt("CHUNK_OVERLAP", 200),
		ChunkCap:        getEnvInt("CHUNK_CAP", 3),

		CacheBackend: getEnv("CACHE_BACKEND", "disk"),
		CacheDir:     getEnv("CACHE_DIR", ".cache"),
		CacheTTL:     getEnvDuration("CACHE_TTL", time.Hour),
		CacheEntries: getEnvInt("CACHE_ENTRIES", 256),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "intel_user"),
		DBPassword: getSecret("DB_PASSWORD", "DB_PASSWORD_FILE", "intel_password"),
		DBName:     getEnv("DB_NAME", "intel_db"),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getSecret(envKey, fileEnvKey, fallback string) string {
	if value, ok := os.LookupEnv(envKey); ok {
		return value
	}

	// Allow the secret to come from a mounted file.
	if filePath, ok := os.LookupEnv(fileEnvKey); ok {
		content, err := os.ReadFile(filePath)
		if err == nil {
			return strings.TrimSpace(string(content))
		}
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

// getEnvDuration accepts either a Go duration string ("30s") or a bare number
// of seconds, so deployments can set plain integers.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	if parsed, err := time.ParseDuration(value); err == nil {
		return parsed
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}
	return fallback
}
