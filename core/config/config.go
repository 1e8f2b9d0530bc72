package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"rank-api/core/database"
	"rank-api/core/emulator"
	"rank-api/core/firestoredb"
	"rank-api/core/logger"
	"rank-api/core/metrics"
	"rank-api/core/server"
	"rank-api/core/storage"
	"rank-api/core/tracing"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Server holds configuration for the HTTP API server.
	Server server.Config `mapstructure:"server"`
	// Metrics holds configuration for the Prometheus endpoint.
	Metrics metrics.Config `mapstructure:"metrics"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Firestore holds the Firestore project and emulator settings.
	Firestore firestoredb.Config `mapstructure:"firestore"`
	// Rank selects the rank storage backend and its read cache.
	Rank RankConfig `mapstructure:"rank"`
	// Database holds configuration for the SQL backend.
	Database database.Config `mapstructure:"database"`
	// Storage holds configuration for the export object storage.
	Storage storage.Config `mapstructure:"storage"`
	// Tracing holds the OpenTelemetry exporter settings.
	Tracing tracing.Config `mapstructure:"tracing"`
	// Emulator holds the local Firestore emulator settings.
	Emulator emulator.Config `mapstructure:"emulator"`
}

// RankConfig selects where ranks are persisted.
type RankConfig struct {
	// Backend is one of firestore, memory or sql.
	Backend string `mapstructure:"backend" default:"firestore"`
	// CacheTTL is how long a read is served from memory. Zero disables caching.
	CacheTTL time.Duration `mapstructure:"cache_ttl" default:"0s"`
}

// LoadConfig loads configuration from environment variables and .env file.
func LoadConfig(path string) (*Config, error) {
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}

	// Ignore error if file doesn't exist (e.g. production)
	_ = godotenv.Overload(envPath)

	v := viper.New()

	// Recursively parse struct tags to set default values
	bindValues(v, Config{}, "")

	// Map environment variables to nested keys (e.g. SERVER_PORT -> server.port)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The Makefile exports the bare PROJECT_ID.
	if err := v.BindEnv("firestore.project_id", "FIRESTORE_PROJECT_ID", "PROJECT_ID"); err != nil {
		return nil, err
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if config.Firestore.ProjectID == "" {
		dir := path
		if abs, err := filepath.Abs(path); err == nil {
			dir = abs
		} else if wd, err := os.Getwd(); err == nil {
			dir = wd
		}
		config.Firestore.ProjectID = emulator.ProjectIDFromDir(dir)
	}

	return &config, nil
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")

		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, field.Tag.Get("default"))
	}
}
