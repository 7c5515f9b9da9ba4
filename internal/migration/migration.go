package migration

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

func Run(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS fetch_log (
		 id SERIAL PRIMARY KEY,
		 fetched_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now(),
		 ok BOOLEAN NOT NULL,
		 item_count INT NOT NULL DEFAULT 0,
		 gap_count INT NOT NULL DEFAULT 0,
		 duration_ms BIGINT NOT NULL DEFAULT 0,
		 error TEXT
		)`,

		`CREATE INDEX IF NOT EXISTS idx_fetch_log_fetched_at ON fetch_log(fetched_at)`,
	}

	for i, s := range stmts {
		if _, err := pool.Exec(ctx, s); err != nil {
			return fmt.Errorf("migrations stmt %d failed: %w", i, err)
		}
	}
	return nil
}
