// Package migrations applies the embedded schema files in lexical order.
package migrations

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

//go:embed *.sql
var files embed.FS

const (
	createVersionTableSQL = `CREATE TABLE IF NOT EXISTS schema_migrations (version TEXT PRIMARY KEY, applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW())`
	lockSQL               = `SELECT pg_advisory_xact_lock(7261001)`
	appliedSQL            = `SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version = $1)`
	recordSQL             = `INSERT INTO schema_migrations (version) VALUES ($1)`
)

// Names returns the embedded migration file names in apply order.
func Names() ([]string, error) {
	entries, err := fs.ReadDir(files, ".")
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Up applies every migration not yet recorded in schema_migrations. Each file
// runs in its own transaction under an advisory lock so concurrent instances
// do not race.
func Up(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger) error {
	if _, err := pool.Exec(ctx, createVersionTableSQL); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}
	names, err := Names()
	if err != nil {
		return err
	}
	for _, name := range names {
		body, err := files.ReadFile(name)
		if err != nil {
			return err
		}
		applied, err := apply(ctx, pool, name, string(body))
		if err != nil {
			return fmt.Errorf("migration %s: %w", name, err)
		}
		if applied {
			log.Info().Str("version", name).Msg("migration applied")
		}
	}
	return nil
}

func apply(ctx context.Context, pool *pgxpool.Pool, name, body string) (bool, error) {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)
	if _, err := tx.Exec(ctx, lockSQL); err != nil {
		return false, err
	}
	var done bool
	if err := tx.QueryRow(ctx, appliedSQL, name).Scan(&done); err != nil {
		return false, err
	}
	if done {
		return false, nil
	}
	// Simple protocol allows several statements in one Exec.
	if _, err := tx.Exec(ctx, body, pgx.QueryExecModeSimpleProtocol); err != nil {
		return false, err
	}
	if _, err := tx.Exec(ctx, recordSQL, name); err != nil {
		return false, err
	}
	return true, tx.Commit(ctx)
}
