package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"edugenie/internal/logger"

	"go.uber.org/zap"
)

// DefaultMigrationsDir is relative to the repository root.
const DefaultMigrationsDir = "database/migrations"

// errAlreadyExists is Oracle's "name is already used by an existing object".
const errAlreadyExists = "ORA-00955"

// RunMigrations executes every *.up.sql file in dir in file name order. Each
// file may hold several statements separated by ";". Objects that already
// exist are skipped, so running the migrations twice is harmless.
func RunMigrations(ctx context.Context, db *sql.DB, dir string) error {
	files, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("could not read migrations directory: %w", err)
	}

	var names []string
	for _, file := range files {
		if !file.IsDir() && strings.HasSuffix(file.Name(), ".up.sql") {
			names = append(names, file.Name())
		}
	}
	sort.Strings(names)

	l := logger.Get()
	for _, name := range names {
		content, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return fmt.Errorf("could not read migration file %s: %w", name, err)
		}

		for _, stmt := range splitStatements(string(content)) {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				if strings.Contains(err.Error(), errAlreadyExists) {
					l.Info("Skipping existing object", zap.String("migration", name))
					continue
				}
				return fmt.Errorf("could not execute migration %s: %w", name, err)
			}
		}
		l.Info("Executed migration", zap.String("migration", name))
	}

	l.Info("Migrations completed successfully", zap.Int("files", len(names)))
	return nil
}

// splitStatements drops the trailing ";" Oracle rejects over the wire.
func splitStatements(content string) []string {
	var stmts []string
	for _, part := range strings.Split(content, ";") {
		if stmt := strings.TrimSpace(part); stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}
