package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	SourcePostgres = "postgres"
	SourceLMS      = "lms"
)

type Config struct {
	HTTPAddr          string
	LogLevel          string
	Source            string
	DatabaseURL       string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration
	LMSBaseURL        string
	LMSAPIToken       string
	LMSTimeout        time.Duration
	SlotCatalogFile   string
	CatalogTTL        time.Duration
	JWTSecret         string
	Location          *time.Location
}

// Load reads the optional dotenv file named by ENV_FILE (default ".env") and
// then resolves every key from the environment.
func Load() (Config, error) {
	path := os.Getenv("ENV_FILE")
	if path == "" {
		path = ".env"
	}
	if err := loadDotEnv(path); err != nil {
		return Config{}, err
	}
	return FromViper(New())
}

// New returns a viper instance bound to the environment with the service
// defaults.
func New() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("TIMETABLE_SOURCE", SourcePostgres)
	v.SetDefault("DB_MAX_OPEN_CONNS", "10")
	v.SetDefault("DB_MAX_IDLE_CONNS", "5")
	v.SetDefault("DB_CONN_MAX_LIFETIME", "30m")
	v.SetDefault("LMS_TIMEOUT", "5s")
	v.SetDefault("CATALOG_TTL", "5m")
	v.SetDefault("TIMEZONE", "Local")
	return v
}

func FromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	var err error

	cfg.HTTPAddr = v.GetString("HTTP_ADDR")
	cfg.LogLevel = v.GetString("LOG_LEVEL")
	cfg.Source = strings.ToLower(strings.TrimSpace(v.GetString("TIMETABLE_SOURCE")))
	cfg.SlotCatalogFile = strings.TrimSpace(v.GetString("SLOT_CATALOG_FILE"))
	cfg.LMSAPIToken = v.GetString("LMS_API_TOKEN")

	switch cfg.Source {
	case SourcePostgres:
		if cfg.DatabaseURL, err = getRequired(v, "DATABASE_URL"); err != nil {
			return cfg, err
		}
	case SourceLMS:
		if cfg.LMSBaseURL, err = getRequired(v, "LMS_BASE_URL"); err != nil {
			return cfg, err
		}
	default:
		return cfg, &configError{message: "invalid TIMETABLE_SOURCE: " + cfg.Source}
	}

	if cfg.JWTSecret, err = getRequired(v, "JWT_SECRET"); err != nil {
		return cfg, err
	}
	if cfg.DBMaxOpenConns, err = getInt(v, "DB_MAX_OPEN_CONNS"); err != nil {
		return cfg, err
	}
	if cfg.DBMaxIdleConns, err = getInt(v, "DB_MAX_IDLE_CONNS"); err != nil {
		return cfg, err
	}
	if cfg.DBConnMaxLifetime, err = getDuration(v, "DB_CONN_MAX_LIFETIME"); err != nil {
		return cfg, err
	}
	if cfg.LMSTimeout, err = getDuration(v, "LMS_TIMEOUT"); err != nil {
		return cfg, err
	}
	if cfg.CatalogTTL, err = getDuration(v, "CATALOG_TTL"); err != nil {
		return cfg, err
	}

	timezone := v.GetString("TIMEZONE")
	if cfg.Location, err = time.LoadLocation(timezone); err != nil {
		return cfg, &configError{message: "invalid TIMEZONE " + timezone + ": " + err.Error()}
	}

	return cfg, nil
}

// ClientConfig configures the terminal client.
type ClientConfig struct {
	APIURL  string
	Token   string
	Timeout time.Duration
}

func LoadClient() (ClientConfig, error) {
	path := os.Getenv("ENV_FILE")
	if path == "" {
		path = ".env"
	}
	if err := loadDotEnv(path); err != nil {
		return ClientConfig{}, err
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("TIMETABLE_API_URL", "http://localhost:8080")
	v.SetDefault("TIMETABLE_TIMEOUT", "10s")
	return ClientFromViper(v)
}

func ClientFromViper(v *viper.Viper) (ClientConfig, error) {
	var cfg ClientConfig
	var err error

	cfg.APIURL = strings.TrimSpace(v.GetString("TIMETABLE_API_URL"))
	if cfg.Token, err = getRequired(v, "TIMETABLE_TOKEN"); err != nil {
		return cfg, err
	}
	if cfg.Timeout, err = getDuration(v, "TIMETABLE_TIMEOUT"); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return &configError{message: "stat " + path + ": " + err.Error()}
	}
	if err := godotenv.Load(path); err != nil {
		return &configError{message: "load " + path + ": " + err.Error()}
	}
	return nil
}

func getRequired(v *viper.Viper, key string) (string, error) {
	value := strings.TrimSpace(v.GetString(key))
	if value == "" {
		return "", &configError{message: "missing required environment variable: " + key}
	}
	return value, nil
}

func getInt(v *viper.Viper, key string) (int, error) {
	parsed, err := strconv.Atoi(strings.TrimSpace(v.GetString(key)))
	if err != nil {
		return 0, &configError{message: "invalid int for " + key + ": " + err.Error()}
	}
	return parsed, nil
}

func getDuration(v *viper.Viper, key string) (time.Duration, error) {
	parsed, err := time.ParseDuration(strings.TrimSpace(v.GetString(key)))
	if err != nil {
		return 0, &configError{message: "invalid duration for " + key + ": " + err.Error()}
	}
	return parsed, nil
}

type configError struct {
	message string
}

func (e *configError) Error() string {
	return e.message
}

var _ error = (*configError)(nil)
