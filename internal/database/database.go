package database

import (
	"context"
	"fmt"
	"time"

	"edugenie/internal/logger"

	"github.com/jmoiron/sqlx"
	_ "github.com/sijms/go-ora/v2" // Oracle driver
)

const connectTimeout = 10 * time.Second

// NewSQLXOracleDB connects to Oracle through go-ora and verifies the connection.
func NewSQLXOracleDB(dsn string) (*sqlx.DB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	db, err := sqlx.ConnectContext(ctx, "oracle", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Oracle database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	logger.Get().Info("Successfully connected to Oracle database")
	return db, nil
}
