// Copyright (c) 2026 Askly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"embed"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/askly/internal/platform/dberr"
	"github.com/taibuivan/askly/internal/platform/postgres"
)

// Migrations holds the schema of the postgres driver.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory of [Migrations] containing the .sql files.
const MigrationsDir = "migrations"

// PostgresStore implements [Store] on a PostgreSQL table keyed by namespace and key.
type PostgresStore struct {
	pool      *pgxpool.Pool
	namespace string
}

// NewPostgresStore wraps an existing pool. Records are isolated by namespace so
// several clients can share one database.
func NewPostgresStore(pool *pgxpool.Pool, namespace string) *PostgresStore {
	if namespace == "" {
		namespace = "default"
	}
	return &PostgresStore{pool: pool, namespace: namespace}
}

// Get implements [Store].
func (s *PostgresStore) Get(ctx context.Context, key string) (string, bool, error) {
	query := `SELECT value FROM session_records WHERE namespace = $1 AND key = $2`

	var value string
	err := s.pool.QueryRow(ctx, query, s.namespace, key).Scan(&value)
	if dberr.IsNoRows(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, dberr.Wrap(err, "session: postgres get")
	}
	return value, true, nil
}

// Set implements [Store].
func (s *PostgresStore) Set(ctx context.Context, key, value string) error {
	query := `
	INSERT INTO session_records (namespace, key, value, updated_at)
	VALUES ($1, $2, $3, now())
	ON CONFLICT (namespace, key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`

	_, err := s.pool.Exec(ctx, query, s.namespace, key, value)
	return dberr.Wrap(err, "session: postgres set")
}

// Delete implements [Store].
func (s *PostgresStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	query := `DELETE FROM session_records WHERE namespace = $1 AND key = ANY($2)`
	_, err := s.pool.Exec(ctx, query, s.namespace, keys)
	return dberr.Wrap(err, "session: postgres delete")
}

// Ping implements [Store].
func (s *PostgresStore) Ping(ctx context.Context) error {
	return postgres.Ping(ctx, s.pool)
}

// Close implements [Store].
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
