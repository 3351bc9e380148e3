package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Backend
	APIBaseURL string

	// Durable client state (token/user persistence)
	StateDir string

	// Budget for any single request; the backend defines no timeout of
	// its own, so a hung call would otherwise pin the loading flag forever
	RequestTimeoutSeconds int
}

const defaultRequestTimeoutSeconds = 15

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	timeout := getEnvAsIntOrDefault("REQUEST_TIMEOUT_SECONDS", defaultRequestTimeoutSeconds)
	if timeout <= 0 {
		// Zero would mean no timeout at all on the http.Client.
		timeout = defaultRequestTimeoutSeconds
	}

	return &Config{
		APIBaseURL: getEnvOrDefault("API_BASE_URL", "http://localhost:8080/api"),
		StateDir:   getEnvOrDefault("STATE_DIR", defaultStateDir()),

		RequestTimeoutSeconds: timeout,
	}
}

func defaultStateDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ".aulavideo"
	}
	return filepath.Join(base, "aulavideo")
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}
