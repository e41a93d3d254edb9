package kv

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/rs/zerolog"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

type migrationLogger struct {
	log zerolog.Logger
}

func (l migrationLogger) Printf(format string, v ...any) {
	l.log.Info().Msgf(format, v...)
}

func (l migrationLogger) Verbose() bool {
	return l.log.GetLevel() <= zerolog.DebugLevel
}

// Migrate applies the embedded session_kv migrations. The pool itself stays open.
func Migrate(ctx context.Context, db *sql.DB, log zerolog.Logger) error {
	const op = "kv.Migrate"

	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	conn, err := db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	driver, err := postgres.WithConnection(ctx, conn, &postgres.Config{})
	if err != nil {
		conn.Close()
		return fmt.Errorf("%s: %w", op, err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		driver.Close()
		return fmt.Errorf("%s: %w", op, err)
	}
	defer m.Close()

	m.Log = migrationLogger{log: log}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			m.Log.Printf("no migrations to apply")
			return nil
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	m.Log.Printf("migration applied")
	return nil
}
