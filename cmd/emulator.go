package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"rank-api/core/config"
	"rank-api/core/emulator"
	"rank-api/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// emulatorCmd is the parent command for the local Firestore emulator.
var emulatorCmd = &cobra.Command{
	Use:   "emulator",
	Short: "Manage the local Firestore emulator",
}

// emulatorStartCmd runs the emulator in the foreground.
var emulatorStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the Firestore emulator",
	Long: `Runs "gcloud emulators firestore start" on the configured host and port
(0.0.0.0:8816 by default) until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logg, err := loadCLI()
		if err != nil {
			return err
		}
		defer logg.Sync()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		logg.Info("Starting Firestore emulator",
			zap.String("host_port", cfg.Emulator.HostPort),
			zap.String("project_id", cfg.Firestore.ProjectID))
		return emulator.Run(ctx, cfg.Emulator, os.Stdout, os.Stderr)
	},
}

// emulatorKillCmd kills whatever holds the emulator port.
var emulatorKillCmd = &cobra.Command{
	Use:   "kill",
	Short: "Kill every process bound to the emulator port",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logg, err := loadCLI()
		if err != nil {
			return err
		}
		defer logg.Sync()

		port, err := cfg.Emulator.Port()
		if err != nil {
			return err
		}
		killed, err := emulator.KillPort(cmd.Context(), port)
		if err != nil {
			return err
		}
		if len(killed) == 0 {
			logg.Info("No process bound to emulator port", zap.Int("port", port))
			return nil
		}
		logg.Info("Killed emulator processes", zap.Int("port", port), zap.Int32s("pids", killed))
		return nil
	},
}

// loadCLI loads configuration and a console logger for one-shot commands.
func loadCLI() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logCfg := cfg.Log
	logCfg.Format = "console"
	logg, err := logger.New(&logCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, logg, nil
}

func init() {
	emulatorCmd.AddCommand(emulatorStartCmd)
	emulatorCmd.AddCommand(emulatorKillCmd)
	RootCmd.AddCommand(emulatorCmd)
}

