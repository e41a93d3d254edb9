package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// Postgres keeps values in the session_kv table, one row per namespace and key.
// Rows not written within ttl are removed by Purge; a zero ttl keeps them.
type Postgres struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

func NewPostgres(db *sql.DB, ttl time.Duration) *Postgres {
	return &Postgres{db: db, ttl: ttl, now: time.Now}
}

func (p *Postgres) Get(ctx context.Context, namespace, key string) (string, bool, error) {
	const op = "Postgres.Get"

	var value string
	err := p.db.QueryRowContext(ctx,
		`SELECT value FROM session_kv WHERE session_id = $1 AND key = $2`,
		namespace, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%s: %w", op, err)
	}
	return value, true, nil
}

func (p *Postgres) Set(ctx context.Context, namespace, key, value string) error {
	const op = "Postgres.Set"

	_, err := p.db.ExecContext(ctx, `
		INSERT INTO session_kv (session_id, key, value, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (session_id, key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = EXCLUDED.updated_at
	`, namespace, key, value)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (p *Postgres) Delete(ctx context.Context, namespace, key string) error {
	const op = "Postgres.Delete"

	_, err := p.db.ExecContext(ctx,
		`DELETE FROM session_kv WHERE session_id = $1 AND key = $2`,
		namespace, key,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (p *Postgres) Purge(ctx context.Context) (int64, error) {
	const op = "Postgres.Purge"

	if p.ttl <= 0 {
		return 0, nil
	}
	res, err := p.db.ExecContext(ctx,
		`DELETE FROM session_kv WHERE updated_at < $1`,
		p.now().Add(-p.ttl),
	)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}

func (p *Postgres) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// ConnectPostgres opens and pings a lib/pq connection pool.
func ConnectPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}
