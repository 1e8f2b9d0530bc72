package cmd

import (
	"context"
	"fmt"

	"rank-api/core/config"
	"rank-api/core/database"
	"rank-api/core/firestoredb"
	"rank-api/feature/rank"

	"go.uber.org/zap"
)

// openRepository builds the rank repository selected by rank.backend. The
// returned closer releases the backend connection.
func openRepository(ctx context.Context, cfg *config.Config, logg *zap.Logger) (rank.Repository, func() error, error) {
	switch cfg.Rank.Backend {
	case rank.BackendFirestore, "":
		client, err := firestoredb.Connect(ctx, cfg.Firestore)
		if err != nil {
			return nil, nil, err
		}
		logg.Info("Connected to Firestore",
			zap.String("project_id", cfg.Firestore.ProjectID),
			zap.Bool("emulator", firestoredb.UsingEmulator()),
			zap.String("collection", cfg.Firestore.Collection))
		return rank.NewFirestoreRepository(client, cfg.Firestore.Collection), client.Close, nil

	case rank.BackendSQL:
		db, err := database.Connect(cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		repo, err := rank.NewSQLRepository(db)
		if err != nil {
			_ = database.Close(db)
			return nil, nil, err
		}
		logg.Info("Connected to SQL database",
			zap.String("driver", cfg.Database.Driver),
			zap.String("name", cfg.Database.Name))
		return repo, func() error { return database.Close(db) }, nil

	case rank.BackendMemory:
		logg.Warn("Using in-memory rank storage; data is lost on exit")
		return rank.NewMemoryRepository(), func() error { return nil }, nil

	default:
		return nil, nil, fmt.Errorf("unknown rank backend: %s", cfg.Rank.Backend)
	}
}
