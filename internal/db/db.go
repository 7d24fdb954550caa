package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

func NewPool(ctx context.Context, dbURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, err
	}

	cfg.MaxConns = 5

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return pool, nil
}

var documentTables = []string{"registrations", "contacts", "payments"}

// EnsureSchema creates the document tables and their lookup indexes.
// Email is indexed but not unique: duplicate detection happens at admission time.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := make([]string, 0, len(documentTables)+3)

	for _, t := range documentTables {
		stmts = append(stmts, `CREATE TABLE IF NOT EXISTS `+t+` (
			id TEXT PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL,
			doc JSONB NOT NULL
		)`)
	}

	stmts = append(stmts,
		`CREATE INDEX IF NOT EXISTS registrations_email_idx ON registrations ((doc->>'email'))`,
		`CREATE INDEX IF NOT EXISTS registrations_status_idx ON registrations ((doc->>'registrationStatus'))`,
		`CREATE INDEX IF NOT EXISTS payments_registration_idx ON payments ((doc->>'registration_id'))`,
	)

	for _, s := range stmts {
		if _, err := pool.Exec(ctx, s); err != nil {
			return err
		}
	}

	return nil
}
