package config

import (
	"os"
	"path/filepath"
)

// Config holds everything the client reads from the environment. The API
// base URL is the only required knob; redis and mysql are opt-in backends.
type Config struct {
	APIURL      string
	SessionFile string
	RedisURL    string
	MySQLDSN    string
}

func Load() Config {
	return Config{
		APIURL:      getenv("SCEPTRE_API_URL", "http://localhost:10000"),
		SessionFile: getenv("SCEPTRE_SESSION_FILE", defaultSessionFile()),
		RedisURL:    os.Getenv("SCEPTRE_REDIS_URL"),
		MySQLDSN:    os.Getenv("SCEPTRE_MYSQL_DSN"),
	}
}

func defaultSessionFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "sceptre-session.json"
	}
	return filepath.Join(home, ".config", "sceptre", "session.json")
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
