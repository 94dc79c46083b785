// Package repository implements the durable, transactional state store
// (spec §4.2) on top of Postgres. Callers never see rows or SQL; every
// operation here is a named, atomic verb.
package repository

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schemaSQL string

// Repository is a pgxpool-backed implementation of the state store.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository opens a connection pool against dbURL. Pool sizing can be
// tuned via DB_MAX_OPEN_CONNS / DB_MAX_IDLE_CONNS, matching the defaults
// pgxpool picks when unset.
func NewRepository(ctx context.Context, dbURL string) (*Repository, error) {
	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("parse db url: %w", err)
	}

	if maxConnStr := os.Getenv("DB_MAX_OPEN_CONNS"); maxConnStr != "" {
		if maxConn, err := strconv.Atoi(maxConnStr); err == nil {
			config.MaxConns = int32(maxConn)
		}
	}
	if minConnStr := os.Getenv("DB_MAX_IDLE_CONNS"); minConnStr != "" {
		if minConn, err := strconv.Atoi(minConnStr); err == nil {
			config.MinConns = int32(minConn)
		}
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	return &Repository{db: pool}, nil
}

// Migrate applies the embedded schema. Idempotent: every statement is
// CREATE ... IF NOT EXISTS.
func (r *Repository) Migrate(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Close releases all pooled connections.
func (r *Repository) Close() {
	r.db.Close()
}
