package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

var allKeys = []string{
	"HTTP_PORT", "STORE_DRIVER", "SQLITE_DSN", "DATABASE_URL", "TIMEZONE",
	"GATEWAY_TOKEN_HASH", "KAFKA_BROKERS", "KAFKA_TOPIC", "REDIS_ADDR", "LOCK_TTL",
	"NOTIFY_QUEUE_SIZE", "SWEEP_INTERVAL", "REMINDER_LEAD", "LOG_LEVEL", "LOG_FORMAT",
}

// clearEnv blanks every key for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range allKeys {
		t.Setenv(envPrefix+key, "")
	}
}

func TestLoader_ParseEnvironment(t *testing.T) {

	t.Run("applies defaults when variables are missing", func(t *testing.T) {
		clearEnv(t)

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.HTTPPort != 8080 {
			t.Fatalf("expected default HTTP port 8080, got %d", cfg.HTTPPort)
		}
		if cfg.StoreDriver != DriverSQLite {
			t.Fatalf("expected sqlite driver, got %q", cfg.StoreDriver)
		}
		if cfg.KafkaTopic != "room-booking.notifications.v1" {
			t.Fatalf("unexpected default topic: %q", cfg.KafkaTopic)
		}
		if cfg.Location != time.UTC {
			t.Fatalf("expected UTC location, got %v", cfg.Location)
		}
		if cfg.SweepInterval != 5*time.Minute || cfg.ReminderLead != time.Hour || cfg.LockTTL != 10*time.Second {
			t.Fatalf("unexpected default durations: %+v", cfg)
		}
		if len(cfg.KafkaBrokers) != 0 {
			t.Fatalf("expected no brokers, got %v", cfg.KafkaBrokers)
		}
	})

	t.Run("errors when postgres is selected without a database url", func(t *testing.T) {
		clearEnv(t)
		t.Setenv(envPrefix+"STORE_DRIVER", "postgres")

		_, err := Load()
		if err == nil {
			t.Fatalf("expected error when required values are missing")
		}
		expected := "required environment variables are not set: ROOMBOOKING_DATABASE_URL"
		if err.Error() != expected {
			t.Fatalf("unexpected error message: %q", err.Error())
		}
	})

	t.Run("parses duration, list and numeric fields", func(t *testing.T) {
		clearEnv(t)
		t.Setenv(envPrefix+"HTTP_PORT", "9090")
		t.Setenv(envPrefix+"STORE_DRIVER", "POSTGRES")
		t.Setenv(envPrefix+"DATABASE_URL", "postgres://localhost/rooms")
		t.Setenv(envPrefix+"TIMEZONE", "Asia/Tokyo")
		t.Setenv(envPrefix+"KAFKA_BROKERS", " k1:9092, ,k2:9092 ")
		t.Setenv(envPrefix+"SWEEP_INTERVAL", "0")
		t.Setenv(envPrefix+"REMINDER_LEAD", "30m")
		t.Setenv(envPrefix+"NOTIFY_QUEUE_SIZE", "16")
		t.Setenv(envPrefix+"LOG_FORMAT", "text")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.HTTPPort != 9090 {
			t.Fatalf("expected port 9090, got %d", cfg.HTTPPort)
		}
		if cfg.StoreDriver != DriverPostgres {
			t.Fatalf("expected postgres driver, got %q", cfg.StoreDriver)
		}
		if cfg.Location == nil || cfg.Location.String() != "Asia/Tokyo" {
			t.Fatalf("unexpected location: %v", cfg.Location)
		}
		if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "k2:9092" {
			t.Fatalf("unexpected brokers: %v", cfg.KafkaBrokers)
		}
		if cfg.SweepInterval != 0 {
			t.Fatalf("expected sweep disabled, got %s", cfg.SweepInterval)
		}
		if cfg.ReminderLead != 30*time.Minute {
			t.Fatalf("expected reminder lead 30m, got %s", cfg.ReminderLead)
		}
		if cfg.NotifyQueueSize != 16 || cfg.LogFormat != "text" {
			t.Fatalf("unexpected values: %+v", cfg)
		}
	})

	t.Run("reports every invalid value", func(t *testing.T) {
		clearEnv(t)
		t.Setenv(envPrefix+"HTTP_PORT", "abc")
		t.Setenv(envPrefix+"LOCK_TTL", "0s")
		t.Setenv(envPrefix+"LOG_LEVEL", "verbose")

		_, err := Load()
		if err == nil {
			t.Fatalf("expected error for invalid values")
		}
		expected := "invalid environment variable values: ROOMBOOKING_HTTP_PORT, ROOMBOOKING_LOCK_TTL, ROOMBOOKING_LOG_LEVEL"
		if err.Error() != expected {
			t.Fatalf("unexpected error message: %q", err.Error())
		}
	})
}

func TestLoadDotEnv(t *testing.T) {
	t.Run("missing file is ignored", func(t *testing.T) {
		if err := LoadDotEnv(filepath.Join(t.TempDir(), "absent.env")); err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
	})

	t.Run("fills unset variables only", func(t *testing.T) {
		clearEnv(t)
		// t.Setenv restores the original value; Unsetenv lets godotenv see the key as absent.
		if err := os.Unsetenv(envPrefix + "KAFKA_TOPIC"); err != nil {
			t.Fatalf("unsetenv: %v", err)
		}
		t.Setenv(envPrefix+"HTTP_PORT", "7070")

		path := filepath.Join(t.TempDir(), ".env")
		content := "ROOMBOOKING_KAFKA_TOPIC=bookings.dev\nROOMBOOKING_HTTP_PORT=6060\n"
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("write env file: %v", err)
		}
		t.Cleanup(func() { _ = os.Unsetenv(envPrefix + "KAFKA_TOPIC") })

		if err := LoadDotEnv(path); err != nil {
			t.Fatalf("LoadDotEnv returned error: %v", err)
		}
		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if cfg.KafkaTopic != "bookings.dev" {
			t.Fatalf("expected topic from file, got %q", cfg.KafkaTopic)
		}
		if cfg.HTTPPort != 7070 {
			t.Fatalf("expected process env to win, got %d", cfg.HTTPPort)
		}
	})
}
