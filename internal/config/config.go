package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Cache backends.
const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
)

// Config holds the configuration settings for the cache builder and the view server.
//
// Fields:
// - Env: The current environment (e.g., local, development, production).
// - CSVPath: Location of the dates CSV resource.
// - CachePath: Location of the JSON geocoding cache file.
// - CacheBackend: Where the cache is persisted (file, postgres).
// - ProviderType: The type of geocoding provider to use (nominatim, google).
// - APIKey: The API key for providers that need one.
// - ProviderURL: Search endpoint of a self-hosted Nominatim instance.
// - RequestDelay: The minimum interval between geocoding requests.
// - Addresses: Extra addresses to geocode besides those in the CSV.
// - Database: Configuration settings for the PostgreSQL database.
type Config struct {
	Env            string         `yaml:"env"`                 // Env is the current environment: local, development, production.
	Port           int            `yaml:"http.port"`           // Port is the view server port.
	CSVPath        string         `yaml:"csv_path"`            // CSVPath is the dates CSV resource.
	CachePath      string         `yaml:"cache.path"`          // CachePath is the geocoding cache file.
	CacheBackend   string         `yaml:"cache.backend"`       // CacheBackend selects the cache store.
	ProviderType   string         `yaml:"provider.type"`       // ProviderType specifies which geocoding provider to use
	APIKey         string         `yaml:"provider.api_key"`    // The API key for accessing external services.
	ProviderURL    string         `yaml:"provider.url"`        // Search endpoint override for a self-hosted provider.
	UserAgent      string         `yaml:"provider.user_agent"` // User-Agent sent to Nominatim.
	AcceptLanguage string         `yaml:"provider.language"`   // Preferred language of display names.
	RequestDelay   time.Duration  `yaml:"geocoder.delay"`      // Minimum interval between geocoding requests.
	PushgatewayURL string         `yaml:"pushgateway_url"`     // Pushgateway for batch metrics, empty disables pushing.
	Addresses      []string       `yaml:"addresses"`           // Addresses to geocode in addition to the CSV ones.
	Database       PostgresConfig `yaml:"postgres"`            // Database holds the postgres database configuration
}

// PostgresConfig struct holds the configuration details for connecting to a PostgreSQL database.
type PostgresConfig struct {
	Host     string `yaml:"host"`                        // Host is the database server address.
	Port     string `yaml:"port"     env-default:"5432"` // Port is the database server port.
	User     string `yaml:"user"`                        // User is the database user.
	Password string `yaml:"password"`                    // Password is the database user's password.
	Name     string `yaml:"db_name"`                     // Name is the name of the database.
}

// MustLoad loads the configuration from the environment (and a .env file when present)
// and returns a Config struct. It panics on malformed values.
func MustLoad() *Config {
	_ = godotenv.Load()

	delay, err := time.ParseDuration(setDefaultEnv("DATEMAP_REQUEST_DELAY", "1s"))
	if err != nil || delay < 0 {
		panic("failed to parse request delay from configuration")
	}

	port, err := strconv.Atoi(setDefaultEnv("DATEMAP_HTTP_PORT", "8080"))
	if err != nil {
		panic("failed to parse port for view server from configuration")
	}

	backend := setDefaultEnv("DATEMAP_CACHE_BACKEND", BackendFile)
	if backend != BackendFile && backend != BackendPostgres {
		panic("unsupported cache backend, must be one of: file, postgres")
	}

	return &Config{
		Env:            setDefaultEnv("DATEMAP_ENV", "production"),
		Port:           port,
		CSVPath:        setDefaultEnv("DATEMAP_CSV_PATH", "public/elena.csv"),
		CachePath:      setDefaultEnv("DATEMAP_CACHE_PATH", "src/data/geocodingCache.json"),
		CacheBackend:   backend,
		ProviderType:   setDefaultEnv("DATEMAP_PROVIDER_TYPE", "nominatim"),
		APIKey:         os.Getenv("DATEMAP_PROVIDER_KEY"),
		ProviderURL:    os.Getenv("DATEMAP_PROVIDER_URL"),
		UserAgent:      os.Getenv("DATEMAP_USER_AGENT"),
		AcceptLanguage: os.Getenv("DATEMAP_ACCEPT_LANGUAGE"),
		RequestDelay:   delay,
		PushgatewayURL: os.Getenv("DATEMAP_PUSHGATEWAY_URL"),
		Addresses:      splitList(os.Getenv("DATEMAP_ADDRESSES")),
		Database: PostgresConfig{
			Host:     os.Getenv("DB_HOST"),
			Port:     setDefaultEnv("DB_PORT", "5432"),
			User:     os.Getenv("DB_USERNAME"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     os.Getenv("DB_NAME"),
		},
	}
}

func setDefaultEnv(key, override string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		value = override
	}

	return value
}

// splitList splits a ';'-separated list, dropping blank items. Addresses carry commas,
// so a comma cannot be the separator.
func splitList(raw string) []string {
	items := []string{}
	for _, item := range strings.Split(raw, ";") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}

	return items
}
