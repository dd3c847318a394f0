package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ontheway/internal/config"
	"ontheway/internal/logger"
	"ontheway/internal/repository"
	"ontheway/internal/service"
)

func main() {
	var envFile string

	root := &cobra.Command{
		Use:   "backup",
		Short: "Export or import On The Way readers, plans and devotionals as JSON",
		Long: `Environment Variables:
  DATABASE_TYPE      sqlite, postgres, mysql or local (default: sqlite)
  DB_PATH            SQLite database path (default: ./ontheway.db)
  DATABASE_URL       PostgreSQL or MySQL connection URL
  LOCAL_STORE_PATH   JSON file for the local store`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", "", "path to a .env file (default: ./.env when present)")

	var output string
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export the store to a JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackupService(envFile, func(backups *service.BackupService, log *zap.Logger) error {
				return handleExport(cmd.Context(), backups, log, output)
			})
		},
	}
	exportCmd.Flags().StringVarP(&output, "output", "o", "", "output file path (default: backup_YYYYMMDD_HHMMSS.json)")

	var input string
	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Import a JSON backup into the store",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackupService(envFile, func(backups *service.BackupService, log *zap.Logger) error {
				return handleImport(cmd.Context(), backups, log, input)
			})
		},
	}
	importCmd.Flags().StringVarP(&input, "input", "i", "", "input file path")
	importCmd.MarkFlagRequired("input")

	root.AddCommand(exportCmd, importCmd)
	if err := root.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func withBackupService(envFile string, fn func(*service.BackupService, *zap.Logger) error) error {
	if err := config.LoadEnvFile(envFile); err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	cfg := config.Load()

	log, err := logger.New(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	store, err := repository.OpenStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer store.Close()

	return fn(service.NewBackupService(store, log), log)
}

func handleExport(ctx context.Context, backups *service.BackupService, log *zap.Logger, outputPath string) error {
	if outputPath == "" {
		outputPath = fmt.Sprintf("backup_%s.json", time.Now().Format("20060102_150405"))
	}

	if dir := filepath.Dir(outputPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	log.Info("exporting store", zap.String("path", outputPath))
	if err := backups.Export(ctx, outputPath); err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	if info, err := os.Stat(outputPath); err == nil {
		log.Info("export complete", zap.Float64("size_mb", float64(info.Size())/1024/1024))
	}
	return nil
}

func handleImport(ctx context.Context, backups *service.BackupService, log *zap.Logger, inputPath string) error {
	if _, err := os.Stat(inputPath); err != nil {
		return fmt.Errorf("input file not readable: %w", err)
	}

	log.Info("importing backup", zap.String("path", inputPath))
	if err := backups.Import(ctx, inputPath); err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	log.Info("import complete")
	return nil
}
