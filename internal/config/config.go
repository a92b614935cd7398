package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Strings for identifiers and secrets, ints for
// lifetimes and hashing costs.
type Config struct {
	Env             string // application environment (e.g. "dev", "prod")
	Port            string // HTTP port to listen on
	DBUser          string // database username
	DBPass          string // database password (optional)
	DBHost          string // database host address
	DBPort          string // database port number
	DBName          string // database name
	JWTSecret       string // secret used to sign session tokens
	BlacklistSecret string // secret used to fingerprint revoked tokens
	TokenTTLDays    int    // session token time-to-live in days
	BcryptCost      int    // bcrypt cost for user passwords
	ListBcryptCost  int    // bcrypt cost for list passwords (checked rarely, so higher)
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  The blacklist
// fingerprint secret defaults to the signing secret when unset.
func Load() Config {
	cfg := Config{
		Env:             must("APP_ENV"),                       // environment (dev/test/prod)
		Port:            must("APP_PORT"),                      // port to bind the HTTP server
		DBUser:          must("DB_USER"),                       // database user
		DBPass:          os.Getenv("DB_PASS"),                  // database password (empty allowed)
		DBHost:          must("DB_HOST"),                       // database host
		DBPort:          must("DB_PORT"),                       // database port
		DBName:          must("DB_NAME"),                       // database name
		JWTSecret:       must("AUTH_JWT_SECRET"),               // secret used for signing tokens
		BlacklistSecret: os.Getenv("TOKEN_BLACKLIST_SECRET"),   // fingerprint secret (optional)
		TokenTTLDays:    envIntDefault("TOKEN_TTL_DAYS", 7),    // session lifetime in days
		BcryptCost:      envIntDefault("BCRYPT_COST", 10),      // interactive login cost
		ListBcryptCost:  envIntDefault("LIST_BCRYPT_COST", 12), // list password cost
	}
	if cfg.BlacklistSecret == "" {
		cfg.BlacklistSecret = cfg.JWTSecret
	}
	return cfg
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// envIntDefault reads an optional integer environment variable, falling back
// to the given default when unset.  An unparseable value is fatal so that a
// typo does not silently change token lifetimes or hashing costs.
func envIntDefault(key string, def int) int {
	s, ok := os.LookupEnv(key)
	if !ok || s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
