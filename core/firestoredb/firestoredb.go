package firestoredb

import (
	"context"
	"errors"
	"fmt"
	"os"

	"cloud.google.com/go/firestore"
)

// EmulatorHostEnv is read by the Firestore client to target the emulator.
const EmulatorHostEnv = "FIRESTORE_EMULATOR_HOST"

// Config holds the Firestore connection settings.
type Config struct {
	// ProjectID is the Google Cloud project. PROJECT_ID is also accepted.
	ProjectID string `mapstructure:"project_id" default:""`
	// EmulatorHost points the client at a local emulator, e.g. [::1]:8816.
	EmulatorHost string `mapstructure:"emulator_host" default:""`
	// DatabaseID selects a named database; empty means the default one.
	DatabaseID string `mapstructure:"database_id" default:""`
	// Collection is the collection ranks are stored in.
	Collection string `mapstructure:"collection" default:"ranks"`
}

// ErrMissingProject is returned when no project id is configured.
var ErrMissingProject = errors.New("firestore project id is required")

// Connect creates a Firestore client. When an emulator host is configured it is
// exported to the environment before the client is built, which is how the
// client library discovers it.
func Connect(ctx context.Context, cfg Config) (*firestore.Client, error) {
	if cfg.ProjectID == "" {
		return nil, ErrMissingProject
	}

	if cfg.EmulatorHost != "" {
		if err := os.Setenv(EmulatorHostEnv, cfg.EmulatorHost); err != nil {
			return nil, fmt.Errorf("failed to set %s: %w", EmulatorHostEnv, err)
		}
	}

	var (
		client *firestore.Client
		err    error
	)
	if cfg.DatabaseID == "" || cfg.DatabaseID == firestore.DefaultDatabaseID {
		client, err = firestore.NewClient(ctx, cfg.ProjectID)
	} else {
		client, err = firestore.NewClientWithDatabase(ctx, cfg.ProjectID, cfg.DatabaseID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}
	return client, nil
}

// UsingEmulator reports whether clients built now would target the emulator.
func UsingEmulator() bool {
	return os.Getenv(EmulatorHostEnv) != ""
}
