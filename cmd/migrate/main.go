package main

import (
	"context"
	"log"
	"os"
	"time"

	"edugenie/internal/config"
	"edugenie/internal/database"
	"edugenie/internal/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	var (
		dir     string
		timeout time.Duration
	)

	rootCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the Oracle schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			if err := logger.Initialize(cfg.Logger); err != nil {
				return err
			}
			l := logger.Get()
			defer logger.Sync()

			db, err := database.NewSQLXOracleDB(cfg.GetDSN())
			if err != nil {
				return err
			}
			defer db.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			if err := database.RunMigrations(ctx, db.DB, dir); err != nil {
				return err
			}
			l.Info("Migrations applied", zap.String("dir", dir))
			return nil
		},
	}
	rootCmd.Flags().StringVar(&dir, "dir", database.DefaultMigrationsDir, "Directory containing *.up.sql files")
	rootCmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "Overall migration timeout")

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Printf("Failed to run migrations: %v", err)
		os.Exit(1)
	}
}
