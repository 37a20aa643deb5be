package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const envPrefix = "ROOMBOOKING_"

// Store drivers accepted by ROOMBOOKING_STORE_DRIVER.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config captures environment driven configuration values for the booking service.
type Config struct {
	HTTPPort         int
	StoreDriver      string
	SQLiteDSN        string
	DatabaseURL      string
	Timezone         string
	Location         *time.Location
	GatewayTokenHash string
	KafkaBrokers     []string
	KafkaTopic       string
	RedisAddr        string
	LockTTL          time.Duration
	NotifyQueueSize  int
	SweepInterval    time.Duration
	ReminderLead     time.Duration
	LogLevel         string
	LogFormat        string
}

// Defaults returns the configuration used when no variables are set.
func Defaults() Config {
	return Config{
		HTTPPort:        8080,
		StoreDriver:     DriverSQLite,
		SQLiteDSN:       "file:roombooking.db",
		Timezone:        "UTC",
		Location:        time.UTC,
		KafkaTopic:      "room-booking.notifications.v1",
		LockTTL:         10 * time.Second,
		NotifyQueueSize: 256,
		SweepInterval:   5 * time.Minute,
		ReminderLead:    time.Hour,
		LogLevel:        "info",
		LogFormat:       "json",
	}
}

// LoadDotEnv loads variables from path into the process environment. Variables
// already present win. A missing file is not an error.
func LoadDotEnv(path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Load parses configuration values from the current process environment.
//
// Optional fields fall back to Defaults. Missing and invalid entries are
// collected and reported together.
func Load() (Config, error) {
	cfg := Defaults()

	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 2)

	if v := lookup("HTTP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			invalid = append(invalid, envPrefix+"HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if v := lookup("STORE_DRIVER"); v != "" {
		switch strings.ToLower(v) {
		case DriverSQLite, DriverPostgres:
			cfg.StoreDriver = strings.ToLower(v)
		default:
			invalid = append(invalid, envPrefix+"STORE_DRIVER")
		}
	}

	if v := lookup("SQLITE_DSN"); v != "" {
		cfg.SQLiteDSN = v
	}

	cfg.DatabaseURL = lookup("DATABASE_URL")
	if cfg.StoreDriver == DriverPostgres && cfg.DatabaseURL == "" {
		missing = append(missing, envPrefix+"DATABASE_URL")
	}

	if v := lookup("TIMEZONE"); v != "" {
		loc, err := time.LoadLocation(v)
		if err != nil {
			invalid = append(invalid, envPrefix+"TIMEZONE")
		} else {
			cfg.Timezone = v
			cfg.Location = loc
		}
	}

	cfg.GatewayTokenHash = lookup("GATEWAY_TOKEN_HASH")
	cfg.KafkaBrokers = splitList(lookup("KAFKA_BROKERS"))
	if v := lookup("KAFKA_TOPIC"); v != "" {
		cfg.KafkaTopic = v
	}
	cfg.RedisAddr = lookup("REDIS_ADDR")

	parseDuration(&cfg.LockTTL, "LOCK_TTL", false, &invalid)
	parseDuration(&cfg.SweepInterval, "SWEEP_INTERVAL", true, &invalid)
	parseDuration(&cfg.ReminderLead, "REMINDER_LEAD", true, &invalid)

	if v := lookup("NOTIFY_QUEUE_SIZE"); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil || size <= 0 {
			invalid = append(invalid, envPrefix+"NOTIFY_QUEUE_SIZE")
		} else {
			cfg.NotifyQueueSize = size
		}
	}

	if v := lookup("LOG_LEVEL"); v != "" {
		switch strings.ToLower(v) {
		case "debug", "info", "warn", "error":
			cfg.LogLevel = strings.ToLower(v)
		default:
			invalid = append(invalid, envPrefix+"LOG_LEVEL")
		}
	}

	if v := lookup("LOG_FORMAT"); v != "" {
		switch strings.ToLower(v) {
		case "json", "text":
			cfg.LogFormat = strings.ToLower(v)
		default:
			invalid = append(invalid, envPrefix+"LOG_FORMAT")
		}
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables are not set: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variable values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

func lookup(key string) string {
	return strings.TrimSpace(os.Getenv(envPrefix + key))
}

// parseDuration overwrites dst when the variable is set. Zero is accepted only
// when allowZero is true.
func parseDuration(dst *time.Duration, key string, allowZero bool, invalid *[]string) {
	v := lookup(key)
	if v == "" {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 || (d == 0 && !allowZero) {
		*invalid = append(*invalid, envPrefix+key)
		return
	}
	*dst = d
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
