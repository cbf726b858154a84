package db

import (
	"context"
	"embed"
	"io/fs"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/bwise1/groupsplit_api/util"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

type Migration struct {
	Version string
	SQL     string
}

// Migrations returns the embedded migrations ordered by version (file name).
func Migrations() ([]Migration, error) {
	entries, err := fs.ReadDir(migrationFiles, "migrations")
	if err != nil {
		return nil, err
	}

	var migrations []Migration
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		body, err := migrationFiles.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return nil, err
		}
		migrations = append(migrations, Migration{
			Version: strings.TrimSuffix(entry.Name(), ".sql"),
			SQL:     string(body),
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	return migrations, nil
}

// Migrate applies every migration not yet recorded in schema_migrations, each
// in its own transaction. It returns the versions applied.
func (db *DB) Migrate(ctx context.Context) ([]string, error) {
	_, err := db.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return nil, errors.Wrap(err, "creating schema_migrations")
	}

	migrations, err := Migrations()
	if err != nil {
		return nil, errors.Wrap(err, "reading migrations")
	}

	var applied []string
	for _, m := range migrations {
		var exists bool
		err := db.pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version = $1)`, m.Version,
		).Scan(&exists)
		if err != nil {
			return applied, errors.Wrapf(err, "checking migration %s", m.Version)
		}
		if exists {
			continue
		}

		err = db.RunInTx(ctx, func(q Querier) error {
			if _, err := q.Exec(ctx, m.SQL); err != nil {
				return err
			}
			_, err := q.Exec(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, m.Version)
			return err
		})
		if err != nil {
			return applied, errors.Wrapf(err, "applying migration %s", m.Version)
		}

		util.Logger.WithFields(logrus.Fields{"version": m.Version}).Info("applied migration")
		applied = append(applied, m.Version)
	}

	return applied, nil
}
