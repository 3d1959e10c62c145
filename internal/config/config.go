// Package config loads application configuration from environment
// variables. Required variables are enforced by must(); optional ones
// fall back to defaults through the getenv helpers shared by the redis,
// cache and ratelimit loaders in this package.
package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration values. Each field corresponds
// to an environment variable.
type Config struct {
	Env              string // application environment (e.g. "dev", "prod")
	Port             string // HTTP port to listen on
	DBDriver         string // "mysql" (default) or "sqlite"
	DBUser           string // database username (mysql)
	DBPass           string // database password (mysql, optional)
	DBHost           string // database host (mysql)
	DBPort           string // database port (mysql)
	DBName           string // database name (mysql)
	DBPath           string // database file path (sqlite)
	JWTSecret        string // secret used to sign operator JWTs
	AccessTTLMin     int    // access token time-to-live in minutes
	OperatorEmail    string // the single operator login identity
	OperatorPassword string // operator password, bcrypt-hashed at startup
	BcryptCost       int    // bcrypt cost for hashing the operator password
	DashboardRecent  int    // number of recent check-ins on the dashboard
}

// Load reads configuration from the environment. Missing required
// variables abort startup with a fatal log message. The MySQL
// connection variables are only required when DB_DRIVER is mysql.
func Load() Config {
	cfg := Config{
		Env:              getenv("APP_ENV", "dev"),
		Port:             must("APP_PORT"),
		DBDriver:         getenv("DB_DRIVER", "mysql"),
		DBPath:           getenv("DB_PATH", "data/checkin.db"),
		JWTSecret:        must("JWT_SECRET"),
		AccessTTLMin:     envInt("ACCESS_TOKEN_TTL_MIN", 60),
		OperatorEmail:    must("OPERATOR_EMAIL"),
		OperatorPassword: must("OPERATOR_PASSWORD"),
		BcryptCost:       envInt("BCRYPT_COST", 10),
		DashboardRecent:  envInt("DASHBOARD_RECENT", 5),
	}
	if cfg.DBDriver == "mysql" {
		cfg.DBUser = must("DB_USER")
		cfg.DBPass = os.Getenv("DB_PASS")
		cfg.DBHost = must("DB_HOST")
		cfg.DBPort = must("DB_PORT")
		cfg.DBName = must("DB_NAME")
	}
	return cfg
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and
// exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return def
}

func envBool(key string, def bool) bool {
	switch os.Getenv(key) {
	case "1", "true", "TRUE", "True", "yes", "on":
		return true
	case "0", "false", "FALSE", "False", "no", "off":
		return false
	}
	return def
}

func envDur(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	return def
}
