package cmd

import (
	"errors"

	"rank-api/core/storage"
	"rank-api/feature/export"
	"rank-api/feature/rank"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var exportProject string

// exportCmd writes one project's ranks to object storage.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the ranks of a project to object storage",
	Long: `Writes every live rank of a project as one JSON object to the storage bucket.

Example:
  export --project my-project`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if exportProject == "" {
			return errors.New("--project is required")
		}

		cfg, logg, err := loadCLI()
		if err != nil {
			return err
		}
		defer logg.Sync()

		ctx := cmd.Context()
		repo, closeRepo, err := openRepository(ctx, cfg, logg)
		if err != nil {
			return err
		}
		defer func() { _ = closeRepo() }()

		store, err := storage.NewClient(cfg.Storage)
		if err != nil {
			return err
		}

		svc := export.NewService(rank.NewService(repo, logg, nil, 0), store, cfg.Storage, logg, nil)
		res, err := svc.Export(ctx, exportProject)
		if err != nil {
			return err
		}
		logg.Info("Export complete",
			zap.String("bucket", cfg.Storage.Bucket),
			zap.String("object", res.Object),
			zap.Int("count", res.Count),
			zap.Int64("size", res.Size))
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportProject, "project", "p", "", "Project ID to export")
	RootCmd.AddCommand(exportCmd)
}
